package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Validate only runs behind the RequireUser middleware, so reaching it
// means the token held a live, non-guest user
func Validate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userID": c.MustGet("userID"),
	})
}
