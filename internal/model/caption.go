package model

type Caption struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	ImageID uint `gorm:"not null;index" json:"image_id"`

	Text         string `gorm:"not null" json:"text"`
	ModelVersion string `json:"model_version"`
	LatencyMs    int64  `json:"latency_ms"`
	// Unix millisecond timestamp
	CreatedAt int64 `gorm:"autoCreateTime:milli" json:"created_at"`
}
