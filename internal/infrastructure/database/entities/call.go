package entities

import "time"

// Call is the persisted analytics row for one call.
type Call struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	CallID       string    `gorm:"size:64;uniqueIndex"`
	CallSID      string    `gorm:"size:64;index"`
	ToNumber     string    `gorm:"size:32"`
	FromNumber   string    `gorm:"size:32"`
	Status       string    `gorm:"size:32;index"`
	Duration     int       `gorm:"not null;default:0"`
	Direction    string    `gorm:"size:16"`
	Purpose      string    `gorm:"size:64"`
	Outcome      string    `gorm:"size:64"`
	RecordingURL string    `gorm:"type:text"`
	Transcript   string    `gorm:"type:text"`
	Summary      string    `gorm:"type:text"`
	Sentiment    string    `gorm:"size:32"`
	Sector       string    `gorm:"size:32;index;default:banking"`
	Language     string    `gorm:"size:8;default:en"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Call) TableName() string {
	return "calls"
}
