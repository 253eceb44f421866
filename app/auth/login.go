package auth

import (
	"bitwise74/caption-api/internal"
	"bitwise74/caption-api/internal/model"
	"bitwise74/caption-api/internal/service"
	"bitwise74/caption-api/pkg/middleware"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Email field can't be empty",
			"requestID": requestID,
		})
		return
	}

	if data.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Password field can't be empty",
			"requestID": requestID,
		})
		return
	}

	email := strings.ToLower(data.Email)

	var user model.User

	if err := d.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Same response as a bad password so callers can't probe
			// which emails are registered
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid credentials",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := d.Hasher.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid credentials",
			"requestID": requestID,
		})
		return
	}

	finishLogin(c, d, &user)
}

// finishLogin is the shared tail of register and login: merge guest
// history, clear the guest cookie, issue the user token. Strictly in
// that order, with the merge being best effort because a failed merge
// must never fail the account.
func finishLogin(c *gin.Context, d *internal.Deps, user *model.User) {
	requestID := c.MustGet("requestID").(string)

	if raw, err := c.Cookie(middleware.GuestCookie); err == nil && raw != "" {
		if claims, err := d.Tokens.Verify(raw); err == nil && claims.Guest {
			claimed, err := service.ClaimGuestHistory(d.DB, user.ID, claims.Subject)
			if err != nil {
				zap.L().Warn("Failed to claim guest history",
					zap.Error(err),
					zap.Uint("userID", user.ID),
					zap.String("requestID", requestID))
			} else if claimed > 0 {
				zap.L().Info("Claimed guest history",
					zap.Int64("claimed", claimed),
					zap.Uint("userID", user.ID),
					zap.String("requestID", requestID))
			}
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.GuestCookie, "", -1, "/", "", d.SecureCookies, true)

	access, err := d.Tokens.IssueUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue user token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access": access,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}
