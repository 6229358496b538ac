package users

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/silktrader/wallpapers/pkg/ntime"
)

var usernameRules = []validation.Rule{validation.Required, validation.Length(3, 50), is.Alphanumeric}

// User carries the password hash, never the plain password.
type User struct {
	Id        int64       `db:"id"`
	Username  string      `db:"username"`
	Email     string      `db:"email"`
	Password  string      `db:"password"`
	CreatedAt ntime.NTime `db:"created_at"`
}

type AddUserData struct {
	Username string
	Email    string
	Password string
}

func (data AddUserData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Username, usernameRules...),
		validation.Field(&data.Email, validation.Required, is.Email),
		// bcrypt ignores anything past 72 bytes
		validation.Field(&data.Password, validation.Required, validation.Length(8, 72)),
	)
}
