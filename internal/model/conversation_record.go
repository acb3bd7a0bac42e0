package model

import "time"

// ConversationRecord is the durable audit copy of a Q&A exchange. The
// in-memory session store stays authoritative for serving; records are
// written asynchronously by the persist worker.
type ConversationRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Document  string    `gorm:"size:256" json:"document"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Sources   string    `gorm:"type:text" json:"-"` // JSON array of {text, document}
	CreatedAt time.Time `json:"created_at"`
}
