package store

import (
	"database/sql"
	"time"

	"chatline/models"
)

// FriendshipBetween returns the edge between two users regardless of who
// sent the request.
func (s *Store) FriendshipBetween(userA, userB int64) (*models.Friendship, error) {
	var f models.Friendship
	err := s.db.QueryRow(`
		SELECT id, user_id, friend_id, status, created_at, updated_at
		FROM friendships
		WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)
	`, userA, userB, userB, userA).Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt, &f.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFriendship inserts a pending request edge. The single-edge-per-pair
// invariant is enforced here by lookup before insert, not by a constraint.
func (s *Store) CreateFriendship(userID, friendID int64) (*models.Friendship, error) {
	if _, err := s.FriendshipBetween(userID, friendID); err == nil {
		return nil, ErrConflict
	} else if err != ErrNotFound {
		return nil, err
	}

	now := time.Now()
	res, err := s.db.Exec(
		"INSERT INTO friendships (user_id, friend_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		userID, friendID, models.FriendshipPending, now, now,
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Friendship{
		ID:        id,
		UserID:    userID,
		FriendID:  friendID,
		Status:    models.FriendshipPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetFriendshipStatus resolves a pending request sent by requesterID to
// recipientID. Only the recipient may call this; a missing pending edge
// surfaces as ErrNotFound.
func (s *Store) SetFriendshipStatus(requesterID, recipientID int64, status string) (*models.Friendship, error) {
	res, err := s.db.Exec(
		"UPDATE friendships SET status = ?, updated_at = ? WHERE user_id = ? AND friend_id = ? AND status = ?",
		status, time.Now(), requesterID, recipientID, models.FriendshipPending,
	)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.FriendshipBetween(requesterID, recipientID)
}

func (s *Store) AreFriends(userA, userB int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE status = ?
			  AND ((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?))
		)
	`, models.FriendshipAccepted, userA, userB, userB, userA).Scan(&exists)
	return exists, err
}

// Friends lists accepted friendships for a user, in either direction, each
// joined with the other user's profile.
func (s *Store) Friends(userID int64) ([]models.FriendshipWithUser, error) {
	rows, err := s.db.Query(`
		SELECT f.id, f.user_id, f.friend_id, f.status, f.created_at, f.updated_at,
		       u.id, u.name, u.email, u.created_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_id = ? THEN f.friend_id ELSE f.user_id END
		WHERE f.status = ? AND (f.user_id = ? OR f.friend_id = ?)
		ORDER BY u.name
	`, userID, models.FriendshipAccepted, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFriendshipsWithUser(rows)
}

// SentRequests lists pending requests the user has sent, joined with the
// recipient's profile.
func (s *Store) SentRequests(userID int64) ([]models.FriendshipWithUser, error) {
	rows, err := s.db.Query(`
		SELECT f.id, f.user_id, f.friend_id, f.status, f.created_at, f.updated_at,
		       u.id, u.name, u.email, u.created_at
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = ? AND f.status = ?
		ORDER BY f.created_at DESC
	`, userID, models.FriendshipPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFriendshipsWithUser(rows)
}

// ReceivedRequests lists pending requests addressed to the user, joined with
// the requester's profile.
func (s *Store) ReceivedRequests(userID int64) ([]models.FriendshipWithUser, error) {
	rows, err := s.db.Query(`
		SELECT f.id, f.user_id, f.friend_id, f.status, f.created_at, f.updated_at,
		       u.id, u.name, u.email, u.created_at
		FROM friendships f
		JOIN users u ON u.id = f.user_id
		WHERE f.friend_id = ? AND f.status = ?
		ORDER BY f.created_at DESC
	`, userID, models.FriendshipPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFriendshipsWithUser(rows)
}

func scanFriendshipsWithUser(rows *sql.Rows) ([]models.FriendshipWithUser, error) {
	result := []models.FriendshipWithUser{}
	for rows.Next() {
		var f models.FriendshipWithUser
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt, &f.UpdatedAt,
			&f.User.ID, &f.User.Name, &f.User.Email, &f.User.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
