package entities

import "time"

// Message is a redacted text message exchanged with a customer.
type Message struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	MessageSID string    `gorm:"size:64;index"`
	ToNumber   string    `gorm:"size:32"`
	FromNumber string    `gorm:"size:32"`
	Content    string    `gorm:"type:text"`
	Role       string    `gorm:"size:16"`
	Channel    string    `gorm:"size:16;index;default:whatsapp"`
	Direction  string    `gorm:"size:16"`
	Sector     string    `gorm:"size:32;index;default:banking"`
	Timestamp  time.Time `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
