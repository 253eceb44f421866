package middleware

import (
	"bitwise74/caption-api/pkg/security"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GuestCookie is the cookie guests carry their token in
const GuestCookie = "guest_token"

// BearerToken pulls the raw token out of the Authorization header,
// empty string when there is none
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// NewIdentityMiddleware resolves whatever credential a request carries
// into the userID/guestID context keys. It never rejects a request,
// missing or broken credentials just leave both keys unset.
func NewIdentityMiddleware(r *security.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(GuestCookie)

		id := r.Resolve(BearerToken(c), cookie)

		if id.IsUser() {
			c.Set("userID", id.UserID)
		}

		if id.IsGuest() {
			c.Set("guestID", id.GuestID)
		}

		c.Next()
	}
}

// NewRequireUserMiddleware guards endpoints where guest and anonymous
// access must be rejected outright
func NewRequireUserMiddleware(r *security.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		userID, err := r.RequireUser(BearerToken(c))
		if err != nil {
			msg := "token_invalid"
			if errors.Is(err, security.ErrTokenExpired) {
				msg = "token_expired"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     msg,
				"requestID": requestID,
			})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
