package store

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound reports an absent user, friendship, or group.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a duplicate friendship edge or group membership.
	ErrConflict = errors.New("already exists")
	// ErrInvalidAddressing reports a message with neither or both of
	// receiver_id and group_id set. Such a message must never be persisted
	// or dispatched.
	ErrInvalidAddressing = errors.New("message must address exactly one of receiver or group")
)

// Store wraps all database access. Handlers and the realtime subsystem
// receive it (or a narrower interface over it) by injection.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}
