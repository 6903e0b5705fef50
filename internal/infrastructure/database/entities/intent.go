package entities

import "time"

// Intent is one classified customer intent.
type Intent struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	Intent        string    `gorm:"size:64;index"`
	Text          string    `gorm:"type:text"`
	Confidence    float64   `gorm:"not null;default:0"`
	RequiresHuman bool      `gorm:"not null;default:false"`
	Sector        string    `gorm:"size:32;index"`
	UserID        string    `gorm:"size:64"`
	RecordedAt    time.Time `gorm:"index"`
}

func (Intent) TableName() string {
	return "intents"
}
