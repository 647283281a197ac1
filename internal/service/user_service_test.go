package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guessdb/internal/entity"
	"guessdb/internal/repository"
)

type fakeStore struct {
	createFn func(ctx context.Context, user *entity.User) (*entity.User, error)
	getFn    func(ctx context.Context, username string) (*entity.User, error)
	updateFn func(ctx context.Context, username string, score int) error
	topFn    func(ctx context.Context, limit int) ([]entity.ScoreEntry, error)
}

func (f *fakeStore) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	return f.createFn(ctx, user)
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	return f.getFn(ctx, username)
}

func (f *fakeStore) UpdateBestScore(ctx context.Context, username string, score int) error {
	return f.updateFn(ctx, username, score)
}

func (f *fakeStore) TopScores(ctx context.Context, limit int) ([]entity.ScoreEntry, error) {
	return f.topFn(ctx, limit)
}

var validHash = strings.Repeat("a3f5", 16)

func TestRegister(t *testing.T) {
	tests := []struct {
		name         string
		username     string
		passwordHash string
		wantErr      error
	}{
		{name: "valid", username: "bob", passwordHash: validHash},
		{name: "username too short", username: "ab", passwordHash: validHash, wantErr: ErrInvalidUsername},
		{name: "username too long", username: strings.Repeat("x", 51), passwordHash: validHash, wantErr: ErrInvalidUsername},
		{name: "hash wrong length", username: "bob", passwordHash: "abc123", wantErr: ErrInvalidPasswordHash},
		{name: "hash not hex", username: "bob", passwordHash: strings.Repeat("zz", 32), wantErr: ErrInvalidPasswordHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{
				createFn: func(ctx context.Context, user *entity.User) (*entity.User, error) {
					user.ID = 1
					return user, nil
				},
			}
			svc := NewUserService(store, nil)

			user, err := svc.Register(context.Background(), tt.username, tt.passwordHash)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, user.Username)
			assert.Nil(t, user.BestScore)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	store := &fakeStore{
		createFn: func(ctx context.Context, user *entity.User) (*entity.User, error) {
			return nil, repository.ErrDuplicateUsername
		},
	}
	svc := NewUserService(store, nil)

	_, err := svc.Register(context.Background(), "bob", validHash)
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
}

func TestRecordScore(t *testing.T) {
	tests := []struct {
		name        string
		stored      *int
		attempts    int
		wantBest    bool
		wantUpdated bool
	}{
		{name: "first finished game", stored: nil, attempts: 12, wantBest: true, wantUpdated: true},
		{name: "fewer attempts improves", stored: intPtr(10), attempts: 7, wantBest: true, wantUpdated: true},
		{name: "equal attempts is not an improvement", stored: intPtr(7), attempts: 7},
		{name: "more attempts is ignored", stored: intPtr(7), attempts: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := false
			store := &fakeStore{
				getFn: func(ctx context.Context, username string) (*entity.User, error) {
					return &entity.User{ID: 1, Username: username, BestScore: tt.stored}, nil
				},
				updateFn: func(ctx context.Context, username string, score int) error {
					updated = true
					assert.Equal(t, tt.attempts, score)
					return nil
				},
			}
			svc := NewUserService(store, nil)

			newBest, err := svc.RecordScore(context.Background(), "bob", tt.attempts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBest, newBest)
			assert.Equal(t, tt.wantUpdated, updated)
		})
	}
}

func TestRecordScore_UserNotFound(t *testing.T) {
	store := &fakeStore{
		getFn: func(ctx context.Context, username string) (*entity.User, error) {
			return nil, repository.ErrUserNotFound
		},
		updateFn: func(ctx context.Context, username string, score int) error {
			t.Fatal("no score should be written for a missing user")
			return nil
		},
	}
	svc := NewUserService(store, nil)

	_, err := svc.RecordScore(context.Background(), "ghost", 5)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestTopScores(t *testing.T) {
	board := []entity.ScoreEntry{
		{Username: "alice", BestScore: 3},
		{Username: "bob", BestScore: 7},
		{Username: "carol", BestScore: 9},
	}

	tests := []struct {
		name  string
		limit int
		want  []entity.ScoreEntry
	}{
		{name: "full board", limit: 10, want: board},
		{name: "clipped", limit: 2, want: board[:2]},
		{name: "zero falls back to default size", limit: 0, want: board},
		{name: "oversized limit is clamped", limit: 500, want: board},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{
				topFn: func(ctx context.Context, limit int) ([]entity.ScoreEntry, error) {
					assert.Equal(t, leaderboardSize, limit)
					return board, nil
				},
			}
			svc := NewUserService(store, nil)

			entries, err := svc.TopScores(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entries)
		})
	}
}

func intPtr(v int) *int {
	return &v
}
