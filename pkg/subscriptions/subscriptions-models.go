package subscriptions

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/silktrader/wallpapers/pkg/ntime"
)

type Subscription struct {
	Id        int64       `db:"id"`
	Email     string      `db:"email"`
	CreatedAt ntime.NTime `db:"created_at"`
}

type SubscribeData struct {
	Email string `json:"email"`
}

// Validate only demands an email; its format is left unchecked.
func (data SubscribeData) Validate() error {
	return validation.Validate(data.Email, validation.Required.Error("Email is required"))
}
