// Package history contains the caption history listing endpoint
package history

import (
	"bitwise74/caption-api/internal"
	"bitwise74/caption-api/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Item struct {
	ID            uint   `json:"id"`
	ImageID       uint   `json:"image_id"`
	ImageFilename string `json:"image_filename"`
	ImageURL      string `json:"image_url,omitempty"`
	Caption       string `json:"caption"`
	CreatedAt     int64  `json:"created_at"`
}

func List(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Limit must be a number",
			"requestID": requestID,
		})
		return
	}

	if limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Limit must be greater than 0",
			"requestID": requestID,
		})
		return
	}

	if limit > 250 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Limit must be smaller than 250",
			"requestID": requestID,
		})
		return
	}

	offsetStr := c.DefaultQuery("offset", "0")
	offset, err := strconv.Atoi(offsetStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Offset must be a number",
			"requestID": requestID,
		})
		return
	}

	if offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Offset can't be negative",
			"requestID": requestID,
		})
		return
	}

	userID := c.GetUint("userID")
	guestID := c.GetString("guestID")

	// No identity, no history. Never an auth error
	if userID == 0 && guestID == "" {
		c.JSON(http.StatusOK, []Item{})
		return
	}

	type row struct {
		ID        uint
		ImageID   uint
		Filename  string
		DataLen   int64
		Text      string
		CreatedAt int64
	}

	q := d.DB.Table("captions").
		Select("captions.id, captions.image_id, images.filename, length(images.data) AS data_len, captions.text, captions.created_at").
		Joins("JOIN images ON images.id = captions.image_id")

	if userID != 0 {
		q = q.Where("images.user_id = ?", userID)
	} else {
		// Guests only ever see the same slice of history that a
		// register/login would claim
		cutoff := time.Now().Add(-service.HistoryWindow).UnixMilli()
		q = q.Where("images.guest_id = ? AND images.created_at >= ?", guestID, cutoff)
	}

	var rows []row

	err = q.Order("captions.created_at desc").
		Offset(offset).
		Limit(limit).
		Scan(&rows).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up history", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	out := make([]Item, 0, len(rows))

	for _, r := range rows {
		item := Item{
			ID:            r.ID,
			ImageID:       r.ImageID,
			ImageFilename: r.Filename,
			Caption:       r.Text,
			CreatedAt:     r.CreatedAt,
		}

		if r.DataLen > 0 {
			item.ImageURL = "/api/images/" + strconv.FormatUint(uint64(r.ImageID), 10)
		}

		out = append(out, item)
	}

	c.JSON(http.StatusOK, out)
}
