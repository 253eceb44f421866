// Package caption contains the image upload & captioning endpoint
package caption

import (
	"bitwise74/caption-api/internal"
	"bitwise74/caption-api/internal/model"
	"bitwise74/caption-api/pkg/validators"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type captionOut struct {
	Caption      string `json:"caption"`
	ModelVersion string `json:"model_version"`
	LatencyMs    int64  `json:"latency_ms"`
	ImageID      uint   `json:"image_id"`
	CaptionID    uint   `json:"caption_id"`
}

func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open multipart file", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read multipart file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	width, height, mime, err := validators.ImageValidator(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	res, err := d.Captioner.Caption(c.Request.Context(), raw, mime)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "Captioning is currently unavailable. Please try again later",
			"requestID": requestID,
		})

		zap.L().Error("Captioner call failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	userID := c.GetUint("userID")
	guestID := c.GetString("guestID")

	// Anonymous callers still get their caption, there's just nothing
	// to attach the history to
	if userID == 0 && guestID == "" {
		c.JSON(http.StatusOK, captionOut{
			Caption:      res.Text,
			ModelVersion: res.ModelVersion,
			LatencyMs:    res.LatencyMs,
		})
		return
	}

	filename := fh.Filename
	if filename == "" {
		filename = "upload"
	}

	img := model.Image{
		Filename: filename,
		Mime:     mime,
		Width:    width,
		Height:   height,
		Data:     raw,
	}

	if userID != 0 {
		img.UserID = &userID
	} else {
		img.GuestID = &guestID
	}

	capt := model.Caption{
		Text:         res.Text,
		ModelVersion: res.ModelVersion,
		LatencyMs:    res.LatencyMs,
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&img).Error; err != nil {
			return err
		}

		capt.ImageID = img.ID
		return tx.Create(&capt).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Database transaction failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, captionOut{
		Caption:      res.Text,
		ModelVersion: res.ModelVersion,
		LatencyMs:    res.LatencyMs,
		ImageID:      img.ID,
		CaptionID:    capt.ID,
	})
}
