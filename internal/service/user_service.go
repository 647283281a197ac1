package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"guessdb/internal/entity"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var (
	ErrInvalidUsername     = errors.New("username must be 3 to 50 characters")
	ErrInvalidPasswordHash = errors.New("password hash must be a 64 character hex digest")
)

const (
	leaderboardKey  = "guessdb:leaderboard"
	leaderboardSize = 10
	leaderboardTTL  = 30 * time.Second
)

// UserStore is the persistence contract the service depends on.
type UserStore interface {
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	UpdateBestScore(ctx context.Context, username string, score int) error
	TopScores(ctx context.Context, limit int) ([]entity.ScoreEntry, error)
}

type UserService struct {
	repo UserStore
	rdb  *redis.Client
}

// NewUserService creates a new instance of UserService. rdb may be nil, in
// which case leaderboard reads always hit the database.
func NewUserService(repo UserStore, rdb *redis.Client) *UserService {
	return &UserService{repo: repo, rdb: rdb}
}

// Register stores a new user. The password must already be hashed; see
// entity.HashPassword.
func (s *UserService) Register(ctx context.Context, username, passwordHash string) (*entity.User, error) {
	if len(username) < 3 || len(username) > 50 {
		return nil, ErrInvalidUsername
	}
	if !isHexDigest(passwordHash) {
		return nil, ErrInvalidPasswordHash
	}

	user, err := s.repo.CreateUser(ctx, &entity.User{Username: username, PasswordHash: passwordHash})
	if err != nil {
		logger.Error().Err(err).Str("username", username).Msg("Error creating user")
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by username.
func (s *UserService) GetUser(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting user %q", username)
		return nil, err
	}

	return user, nil
}

// RecordScore writes a finished game's attempt count as the user's best
// score when it beats the stored one (fewer attempts is better). It reports
// whether a new personal best was recorded.
func (s *UserService) RecordScore(ctx context.Context, username string, attempts int) (bool, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	if user.BestScore != nil && attempts >= *user.BestScore {
		return false, nil
	}

	if err := s.repo.UpdateBestScore(ctx, username, attempts); err != nil {
		logger.Error().Err(err).Str("username", username).Msg("Error updating best score")
		return false, err
	}

	s.invalidateLeaderboard(ctx)
	return true, nil
}

// TopScores returns the leaderboard, best score first. Results are served
// from Redis when a cache is configured.
func (s *UserService) TopScores(ctx context.Context, limit int) ([]entity.ScoreEntry, error) {
	if limit <= 0 || limit > leaderboardSize {
		limit = leaderboardSize
	}

	if entries, ok := s.cachedLeaderboard(ctx); ok {
		return clip(entries, limit), nil
	}

	entries, err := s.repo.TopScores(ctx, leaderboardSize)
	if err != nil {
		logger.Error().Err(err).Msg("Error reading top scores")
		return nil, err
	}

	s.cacheLeaderboard(ctx, entries)
	return clip(entries, limit), nil
}

func (s *UserService) cachedLeaderboard(ctx context.Context) ([]entity.ScoreEntry, bool) {
	if s.rdb == nil {
		return nil, false
	}

	raw, err := s.rdb.Get(ctx, leaderboardKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn().Err(err).Msg("Leaderboard cache read failed")
		}
		return nil, false
	}

	var entries []entity.ScoreEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *UserService) cacheLeaderboard(ctx context.Context, entries []entity.ScoreEntry) {
	if s.rdb == nil {
		return
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, leaderboardKey, raw, leaderboardTTL).Err(); err != nil {
		logger.Warn().Err(err).Msg("Leaderboard cache write failed")
	}
}

func (s *UserService) invalidateLeaderboard(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, leaderboardKey).Err(); err != nil {
		logger.Warn().Err(err).Msg("Leaderboard cache invalidation failed")
	}
}

func clip(entries []entity.ScoreEntry, limit int) []entity.ScoreEntry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
