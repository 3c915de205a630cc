package service

import (
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"

	"github.com/Jaime-2616/ErronkaFinala/internal/game"
	"github.com/Jaime-2616/ErronkaFinala/internal/keys"
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
	ErrWrongPassword   = errors.New("wrong password")
)

// AccountRepo is the minimal repository interface required by Register and
// Login.
type AccountRepo interface {
	CreateUser(username, passwordHash string) error
	GetUserByName(username string) (*game.User, error)
}

func validUsername(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 3 || len(name) > 20 {
		return false
	}
	return !strings.ContainsAny(name, "|\n\r,")
}

// Register creates a new account. The password is stored as an argon2id
// hash, never in clear.
func Register(repo AccountRepo, username, password string) error {
	if !validUsername(username) {
		return ErrInvalidUsername
	}
	if len(password) < 4 {
		return ErrInvalidPassword
	}
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return err
	}
	return repo.CreateUser(keys.Normalize(username), hash)
}

// Login verifies the password against the stored hash and returns the
// account on success.
func Login(repo AccountRepo, username, password string) (*game.User, error) {
	u, err := repo.GetUserByName(keys.Normalize(username))
	if err != nil {
		return nil, err
	}
	match, err := argon2id.ComparePasswordAndHash(password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrWrongPassword
	}
	return u, nil
}
