package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guessdb/internal/entity"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUserNotFound      = errors.New("user not found")
)

// mysqlDupEntry is the server error number for a unique key violation.
const mysqlDupEntry = 1062

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db}
}

// CreateUser inserts a new user row. Username uniqueness is arbitrated by
// the database, so concurrent inserts of the same name leave exactly one row.
func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `INSERT INTO users (username, password_hash) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.Username, user.PasswordHash)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.ID = int(id)
	return user, nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	user := &entity.User{}
	var bestScore sql.NullInt64
	query := `SELECT id, username, password_hash, best_score FROM users WHERE username = ?`
	err := r.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &bestScore)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if bestScore.Valid {
		score := int(bestScore.Int64)
		user.BestScore = &score
	}
	return user, nil
}

// UpdateBestScore sets best_score for an existing user. It does not compare
// old and new values; improvement rules live in the service layer.
func (r *UserRepository) UpdateBestScore(ctx context.Context, username string, score int) error {
	query := `UPDATE users SET best_score = ? WHERE username = ?`
	res, err := r.db.ExecContext(ctx, query, score, username)
	if err != nil {
		return fmt.Errorf("update best score: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update best score: %w", err)
	}

	if affected == 0 {
		// MySQL reports rows changed, not rows matched, so an unchanged
		// value looks the same as a missing user. Probe before deciding.
		var one int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = ?`, username).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("update best score: %w", err)
		}
	}
	return nil
}

// TopScores returns users with a recorded best score, best first
// (fewest attempts).
func (r *UserRepository) TopScores(ctx context.Context, limit int) ([]entity.ScoreEntry, error) {
	query := `SELECT username, best_score FROM users WHERE best_score IS NOT NULL ORDER BY best_score ASC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer rows.Close()

	var entries []entity.ScoreEntry
	for rows.Next() {
		var e entity.ScoreEntry
		if err := rows.Scan(&e.Username, &e.BestScore); err != nil {
			return nil, fmt.Errorf("top scores: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}

	return entries, nil
}
