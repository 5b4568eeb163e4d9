package store

import (
	"database/sql"
	"time"

	"chatline/models"
)

// CreateGroup inserts the group and attaches the creator as its first
// member in one transaction.
func (s *Store) CreateGroup(name string, creatorID int64) (*models.Group, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res, err := tx.Exec(
		"INSERT INTO chat_groups (name, creator_id, created_at, updated_at) VALUES (?, ?, ?, ?)",
		name, creatorID, now, now,
	)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	groupID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	_, err = tx.Exec(
		"INSERT INTO group_members (group_id, user_id, created_at) VALUES (?, ?, ?)",
		groupID, creatorID, now,
	)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.Group{
		ID:        groupID,
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Store) GetGroup(id int64) (*models.Group, error) {
	var g models.Group
	err := s.db.QueryRow(
		"SELECT id, name, creator_id, created_at, updated_at FROM chat_groups WHERE id = ?",
		id,
	).Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt, &g.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) GroupExists(id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM chat_groups WHERE id = ?)", id).Scan(&exists)
	return exists, err
}

// AddMember attaches a user to a group. An existing membership surfaces as
// ErrConflict.
func (s *Store) AddMember(groupID, userID int64) error {
	member, err := s.IsMember(groupID, userID)
	if err != nil {
		return err
	}
	if member {
		return ErrConflict
	}

	_, err = s.db.Exec(
		"INSERT INTO group_members (group_id, user_id, created_at) VALUES (?, ?, ?)",
		groupID, userID, time.Now(),
	)
	return err
}

func (s *Store) IsMember(groupID, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)",
		groupID, userID,
	).Scan(&exists)
	return exists, err
}

func (s *Store) GroupMembers(groupID int64) ([]models.UserResponse, error) {
	rows, err := s.db.Query(`
		SELECT u.id, u.name, u.email, u.created_at
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ?
		ORDER BY u.name
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.UserResponse{}
	for rows.Next() {
		var u models.UserResponse
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

func (s *Store) GroupsForUser(userID int64) ([]models.Group, error) {
	rows, err := s.db.Query(`
		SELECT g.id, g.name, g.creator_id, g.created_at, g.updated_at
		FROM chat_groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
