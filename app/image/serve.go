// Package image contains the raw image serving endpoint
package image

import (
	"bitwise74/caption-api/internal"
	"bitwise74/caption-api/internal/model"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Serve(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Image ID must be a number",
			"requestID": requestID,
		})
		return
	}

	var img model.Image

	if err := d.DB.First(&img, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Image not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up image", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if len(img.Data) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Image not found",
			"requestID": requestID,
		})
		return
	}

	c.Data(http.StatusOK, img.Mime, img.Data)
}
