// Package auth contains the guest bootstrap, register and login endpoints
package auth

import (
	"bitwise74/caption-api/internal"
	"bitwise74/caption-api/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// Guest ids are hex so they stay copy-paste friendly in logs and URLs
const guestAlphabet = "0123456789abcdef"

type guestUser struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
	Name  string  `json:"name"`
}

// GuestLogin hands out an anonymous identity. A still-valid guest
// cookie is returned unchanged so repeated calls never rotate the id.
func GuestLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	if raw, err := c.Cookie(middleware.GuestCookie); err == nil && raw != "" {
		if claims, err := d.Tokens.Verify(raw); err == nil && claims.Guest {
			c.JSON(http.StatusOK, gin.H{
				"access": raw,
				"user":   guestUser{ID: claims.Subject, Name: "Guest"},
			})
			return
		}
	}

	id, err := gonanoid.Generate(guestAlphabet, d.GuestIDLength)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate guest ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	guestID := "guest-" + id

	access, err := d.Tokens.IssueGuest(guestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue guest token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.GuestCookie, access, int(d.Tokens.GuestTTL().Seconds()), "/", "", d.SecureCookies, true)

	c.JSON(http.StatusOK, gin.H{
		"access": access,
		"user":   guestUser{ID: guestID, Name: "Guest"},
	})
}
