package store

import (
	"database/sql"
	"time"

	"chatline/models"
)

// CreateMessage validates the addressing discriminant and inserts one
// immutable row. A message with neither or both of receiver_id and group_id
// is refused before it can reach the dispatcher.
func (s *Store) CreateMessage(msg *models.Message) error {
	if (msg.ReceiverID == nil) == (msg.GroupID == nil) {
		return ErrInvalidAddressing
	}

	now := time.Now()
	res, err := s.db.Exec(
		"INSERT INTO messages (sender_id, receiver_id, group_id, content, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		msg.SenderID, msg.ReceiverID, msg.GroupID, msg.Content, false, now,
	)
	if err != nil {
		return err
	}

	msg.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	msg.Read = false
	msg.CreatedAt = now
	return nil
}

// DirectConversation returns every message between viewer and other, oldest
// first, and marks the unread ones addressed to the viewer as read. Fetch
// and mark run in one transaction so a concurrent fetch never marks a row
// twice or misses one written before the read.
func (s *Store) DirectConversation(viewerID, otherID int64) ([]models.Message, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(`
		SELECT id, sender_id, receiver_id, group_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, id ASC
	`, viewerID, otherID, otherID, viewerID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	messages, err := scanMessages(rows)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	_, err = tx.Exec(
		"UPDATE messages SET is_read = TRUE WHERE sender_id = ? AND receiver_id = ? AND is_read = FALSE",
		otherID, viewerID,
	)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	// Reflect the marking in the returned rows.
	for i := range messages {
		if messages[i].SenderID == otherID {
			messages[i].Read = true
		}
	}
	return messages, nil
}

// GroupMessages returns a group's messages, oldest first. Group messages
// carry no read state.
func (s *Store) GroupMessages(groupID int64) ([]models.Message, error) {
	rows, err := s.db.Query(`
		SELECT id, sender_id, receiver_id, group_id, content, is_read, created_at
		FROM messages
		WHERE group_id = ?
		ORDER BY created_at ASC, id ASC
	`, groupID)
	if err != nil {
		return nil, err
	}

	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.GroupID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
