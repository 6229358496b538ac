package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/silktrader/wallpapers/pkg/ntime"
	"github.com/silktrader/wallpapers/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

const hashCost = 12

type Store struct {
	Connection *sqlx.DB
}

var ErrTaken = errors.New("username or email is already taken")

func NewStore(connection *sqlx.DB) *Store {
	return &Store{connection}
}

// Register validates the data and stores a new user, hashing its password.
func (s *Store) Register(ctx context.Context, data AddUserData) (User, error) {
	if err := data.Validate(); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), hashCost)
	if err != nil {
		return User{}, fmt.Errorf("couldn't hash the password of %q: %w", data.Username, err)
	}

	var user = User{
		Username:  data.Username,
		Email:     data.Email,
		Password:  string(hash),
		CreatedAt: ntime.Now(),
	}

	err = s.Connection.QueryRowxContext(ctx, s.Connection.Rebind(`
		INSERT INTO users (username, email, password, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		user.Username, user.Email, user.Password, user.CreatedAt,
	).Scan(&user.Id)
	if storage.IsUniqueViolation(err) {
		return User{}, fmt.Errorf("couldn't add user %q: %w", data.Username, ErrTaken)
	}
	if err != nil {
		return User{}, fmt.Errorf("couldn't add user %q: %w", data.Username, err)
	}
	return user, nil
}
