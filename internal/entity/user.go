package entity

import (
	"crypto/sha256"
	"encoding/hex"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // SHA-256 hex digest, never serialized
	BestScore    *int   `json:"best_score"`
}

// ScoreEntry is a single leaderboard row.
type ScoreEntry struct {
	Username  string `json:"username"`
	BestScore int    `json:"best_score"`
}

// HashPassword returns the SHA-256 hex digest of a plaintext password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

/*
Mysql Schema:
CREATE DATABASE IF NOT EXISTS number_guessing_game;
USE number_guessing_game;

CREATE TABLE IF NOT EXISTS users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(50) UNIQUE NOT NULL,
	password_hash VARCHAR(64) NOT NULL,
	best_score INT DEFAULT NULL
);
*/
