package subscriptions

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/silktrader/wallpapers/pkg/ntime"
)

type Storer interface {
	Subscribe(ctx context.Context, email string) error
}

type Store struct {
	Connection *sqlx.DB
}

var ErrDuplicate = errors.New("email is already subscribed")

func NewStore(connection *sqlx.DB) *Store {
	return &Store{connection}
}

// Subscribe records the email, or fails with ErrDuplicate when it's already present, leaving the store untouched.
func (s *Store) Subscribe(ctx context.Context, email string) error {
	// the conflict clause makes concurrent subscriptions of the same address race free
	result, err := s.Connection.ExecContext(ctx, s.Connection.Rebind(`
		INSERT INTO subscriptions (email, created_at) VALUES (?, ?)
		ON CONFLICT (email) DO NOTHING`), email, ntime.Now())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *Store) CountSubscriptions(ctx context.Context) (count int, err error) {
	return count, s.Connection.GetContext(ctx, &count, `SELECT count(*) FROM subscriptions`)
}
