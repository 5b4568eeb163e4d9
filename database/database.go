package database

import (
	"database/sql"
	"log"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the configured database. mysql is used in production;
// sqlite3 is supported for local development and tests. All queries in the
// store use ? placeholders, which both drivers accept.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	if driver == "mysql" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	} else {
		// sqlite serializes writers; a single pooled connection also keeps
		// :memory: databases from vanishing between connections.
		db.SetMaxOpenConns(1)
	}

	log.Println("Database connected successfully")
	return db, nil
}

func CreateTables(db *sql.DB, driver string) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        VARCHAR(120) NOT NULL,
			email       VARCHAR(190) NOT NULL,
			password    VARCHAR(255) NOT NULL,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL,
			UNIQUE (email)
		)`,
		`CREATE TABLE IF NOT EXISTS friendships (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     BIGINT NOT NULL,
			friend_id   BIGINT NOT NULL,
			status      VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chat_groups (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        VARCHAR(120) NOT NULL,
			creator_id  BIGINT NOT NULL,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS group_members (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id    BIGINT NOT NULL,
			user_id     BIGINT NOT NULL,
			created_at  DATETIME NOT NULL,
			UNIQUE (group_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_id   BIGINT NOT NULL,
			receiver_id BIGINT,
			group_id    BIGINT,
			content     TEXT NOT NULL,
			is_read     BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  DATETIME NOT NULL
		)`,
	}

	for _, table := range tables {
		if driver == "mysql" {
			table = strings.ReplaceAll(table, "INTEGER PRIMARY KEY AUTOINCREMENT", "BIGINT PRIMARY KEY AUTO_INCREMENT")
		}
		if _, err := db.Exec(table); err != nil {
			return err
		}
	}

	log.Println("Database tables created successfully")
	return nil
}
