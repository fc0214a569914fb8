package db

import (
	"database/sql"
)

// Database is a connectable SQL backend. Repositories receive DB() after Connect succeeds.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
