package domain

import (
	"time"
)

type MessageType string

const (
	MessageRegular MessageType = "REGULAR"
	MessageJoin    MessageType = "JOIN" // trainee asks a coach to take them on
)

// Message is immutable once created.
type Message struct {
	ID      string      `bson:"_id,omitempty" json:"_id"`
	Type    MessageType `bson:"type" json:"type"`
	From    string      `bson:"from" json:"from" binding:"required"`
	To      string      `bson:"to" json:"to" binding:"required"`
	Date    time.Time   `bson:"date" json:"date"`
	Subject string      `bson:"subject" json:"subject" binding:"required"`
	Body    string      `bson:"body,omitempty" json:"body,omitempty"`
}
