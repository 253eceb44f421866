package model

// Image is an owned record. Once a row is persisted with an identity
// attached, exactly one of UserID and GuestID is set. Claiming moves
// guest rows to a user, never the other way around.
type Image struct {
	ID      uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  *uint   `gorm:"index" json:"-"`
	GuestID *string `gorm:"index" json:"-"`

	Filename string `gorm:"not null" json:"filename"`
	Mime     string `gorm:"not null" json:"mime"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     []byte `json:"-"`
	// Unix millisecond timestamp. Indexed because both the guest
	// history listing and the claim query filter on it
	CreatedAt int64 `gorm:"not null;index;autoCreateTime:milli" json:"created_at"`

	Captions []Caption `gorm:"foreignKey:ImageID" json:"-"`
}
