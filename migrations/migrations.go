package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrSchema marks provisioning failures reported by the server itself
// (insufficient privileges, invalid DDL), as opposed to transport errors.
var ErrSchema = errors.New("schema migration failed")

// EnsureDatabase creates the database if it does not exist. The connection
// must be opened without a database selected.
func EnsureDatabase(db *sql.DB, name string) error {
	_, err := db.Exec("CREATE DATABASE IF NOT EXISTS `" + name + "`")
	if err != nil {
		return classify(err)
	}
	return nil
}

// AutoMigrateUsers creates the users table if it does not exist.
func AutoMigrateUsers(retries int, dbs ...*sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash VARCHAR(64) NOT NULL,
			best_score INT DEFAULT NULL
		);
	`
	for _, db := range dbs {
		_, err := db.Exec(query)
		if err != nil {
			// Retry creating the table
			for i := 0; i < retries; i++ {
				time.Sleep(1 * time.Second)
				_, err = db.Exec(query)
				if err == nil {
					break
				}
			}
		}
		if err != nil {
			return classify(err)
		}
	}
	return nil
}

func classify(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return fmt.Errorf("database unreachable: %w", err)
}
