package models

import "time"

// Message is addressed either to a single user (ReceiverID set) or to a
// group (GroupID set), never both and never neither. Read only applies to
// direct messages. Rows are immutable after creation except for Read.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID *int64    `json:"receiver_id,omitempty"`
	GroupID    *int64    `json:"group_id,omitempty"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}
