package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"go-writer-app/internal/auth"
	"go-writer-app/internal/data"
)

// ErrBadCredentials is returned when a login attempt fails. It does not
// say whether the username or the password was wrong.
var ErrBadCredentials = errors.New("invalid username or password")

// UserInput carries the fields of an add-user action.
type UserInput struct {
	Username        string `validate:"required"`
	Email           string `validate:"omitempty,email"`
	AboutMe         string
	Timezone        string
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// UserService manages administrator accounts.
type UserService struct {
	users    *data.UserRepository
	validate *validator.Validate
}

// NewUserService creates a UserService.
func NewUserService(users *data.UserRepository) *UserService {
	return &UserService{users: users, validate: validator.New()}
}

// CreateUser validates the input (including the password
// confirmation), enforces username and email uniqueness, and stores
// the account with a bcrypt password hash.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*data.User, error) {
	if err := s.validate.Struct(&in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = "failed '" + fe.Tag() + "' validation"
			}
			return nil, &ValidationError{Fields: fields}
		}
		return nil, err
	}

	if existing, err := s.users.FindByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &UniquenessError{Entity: "user", Field: "username", Value: in.Username}
	}
	if in.Email != "" {
		if existing, err := s.users.FindByEmail(ctx, in.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, &UniquenessError{Entity: "user", Field: "email", Value: in.Email}
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	timezone := in.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	user := &data.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		AboutMe:      in.AboutMe,
		Timezone:     timezone,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, &StorageError{Op: "create user", Err: err}
	}
	return user, nil
}

// Authenticate checks a username/password pair and returns the account
// on success.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*data.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return user, nil
}

// ListUsers returns all accounts ordered by username.
func (s *UserService) ListUsers(ctx context.Context) ([]*data.User, error) {
	return s.users.GetAll(ctx)
}

// LocalPubDate converts a page's stored UTC publish date into the named
// IANA zone for display. A page without a publish date yields nil.
func LocalPubDate(page *data.Page, tzName string) (*time.Time, error) {
	if page.PubDate == nil {
		return nil, nil
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, err
	}
	local := page.PubDate.In(loc)
	return &local, nil
}

// SetLocalPubDate interprets a wall-clock publish time in the named
// IANA zone and stores it on the page normalized to UTC.
func SetLocalPubDate(page *data.Page, local time.Time, tzName string) error {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return err
	}
	utc := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), 0, loc).UTC()
	page.PubDate = &utc
	return nil
}
