// Package service contains domain logic shared between handlers
package service

import (
	"bitwise74/caption-api/internal/model"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// HistoryWindow bounds both what an unauthenticated guest can see of
// its own history and what a register/login can claim from it. Keep it
// single sourced so the two never drift apart.
const HistoryWindow = 24 * time.Hour

// ClaimGuestHistory reassigns every image the guest created within
// HistoryWindow to the given user and severs the guest association.
// The reassignment is a single UPDATE inside a transaction, so two
// racing claims for the same guest can't both move or count the same
// rows. Repeating the call is a no-op that returns 0.
func ClaimGuestHistory(db *gorm.DB, userID uint, guestID string) (int64, error) {
	var claimed int64

	err := db.Transaction(func(tx *gorm.DB) error {
		cutoff := time.Now().Add(-HistoryWindow).UnixMilli()

		r := tx.Model(&model.Image{}).
			Where("guest_id = ? AND created_at >= ?", guestID, cutoff).
			Updates(map[string]any{
				"user_id":  userID,
				"guest_id": nil,
			})
		if r.Error != nil {
			return r.Error
		}

		claimed = r.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to claim guest history, %w", err)
	}

	return claimed, nil
}
