// internal/app/service/users/service.go
package usersvc

import (
	"context"
	"errors"
	"strings"

	"github.com/flocklabs/flockhub/internal/app/service/patch"
	"github.com/flocklabs/flockhub/internal/app/service/validation"
	"github.com/flocklabs/flockhub/internal/app/store/generic"
	userstore "github.com/flocklabs/flockhub/internal/app/store/users"
	"github.com/flocklabs/flockhub/internal/app/system/normalize"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/oapi-codegen/nullable"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound is returned when no user exists for the given id.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email belongs to another user.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrDuplicateUsername is returned when the username belongs to
	// another user.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	// ErrInvalidCredentials is returned on a failed login. It covers both
	// unknown accounts and wrong passwords so the two are
	// indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInactive is returned when a deactivated account authenticates
	// with a correct password.
	ErrInactive = errors.New("account is deactivated")
	// ErrWrongPassword is returned by profile updates when the current
	// password check fails.
	ErrWrongPassword = errors.New("current password is incorrect")
)

const minPasswordLen = 8

type Service struct {
	store  *userstore.Store
	logger *zap.Logger
}

func New(store *userstore.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// CreateInput is a new-account request.
type CreateInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// Create registers a new account. Email and username must be unique; the
// store's unique indexes back the pre-checks.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.User, error) {
	if err := validateCreate(in); err != nil {
		return models.User{}, err
	}

	if taken, err := s.store.EmailTaken(ctx, in.Email, ""); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, ErrDuplicateEmail
	}
	if taken, err := s.store.UsernameTaken(ctx, in.Username, ""); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, ErrDuplicateUsername
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.store.Create(ctx, models.User{
		Email:          in.Email,
		Username:       in.Username,
		HashedPassword: hash,
		IsActive:       true,
		IsAdmin:        in.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, generic.ErrDuplicate) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	s.logger.Info("user created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("username", u.Username))
	return u, nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id string) (models.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate verifies the credentials and returns the account. The
// identifier is an email when it contains "@", otherwise a username.
// Unknown accounts and wrong passwords both return ErrInvalidCredentials;
// a correct password on a deactivated account returns ErrInactive.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (models.User, error) {
	var u models.User
	var err error
	if strings.Contains(identifier, "@") {
		u, err = s.store.GetByEmail(ctx, identifier)
	} else {
		u, err = s.store.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			// Burn a comparison so the two failure modes take the same
			// time.
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
				truncateForBcrypt(password))
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), truncateForBcrypt(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return models.User{}, ErrInactive
	}
	return u, nil
}

// ListParams narrows and pages the admin user listing.
type ListParams struct {
	Skip   int64
	Limit  int64
	Search string
}

// List returns one page of accounts.
func (s *Service) List(ctx context.Context, p ListParams) ([]models.User, error) {
	return s.store.List(ctx, generic.ListQuery{
		Skip: p.Skip, Limit: p.Limit,
		Search:       p.Search,
		SearchFields: userstore.SearchFields,
		SortBy:       "username",
	})
}

// UpdateInput is a partial admin patch of an account.
type UpdateInput struct {
	Email    nullable.Nullable[string] `json:"email"`
	Username nullable.Nullable[string] `json:"username"`
	IsActive nullable.Nullable[bool]   `json:"is_active"`
	IsAdmin  nullable.Nullable[bool]   `json:"is_admin"`
}

// Update applies an admin patch, re-checking uniqueness excluding the
// account itself.
func (s *Service) Update(ctx context.Context, id string, upd UpdateInput) (models.User, error) {
	c := &validation.Collector{}
	if upd.Email.IsSpecified() && (upd.Email.IsNull() || normalize.Email(upd.Email.MustGet()) == "") {
		c.Add("email", "cannot be empty")
	}
	if upd.Username.IsSpecified() && (upd.Username.IsNull() || len(normalize.Username(upd.Username.MustGet())) < 3) {
		c.Add("username", "must be at least 3 characters")
	}
	if err := c.Err(); err != nil {
		return models.User{}, err
	}

	if upd.Email.IsSpecified() {
		if taken, err := s.store.EmailTaken(ctx, upd.Email.MustGet(), id); err != nil {
			return models.User{}, err
		} else if taken {
			return models.User{}, ErrDuplicateEmail
		}
	}
	if upd.Username.IsSpecified() {
		if taken, err := s.store.UsernameTaken(ctx, upd.Username.MustGet(), id); err != nil {
			return models.User{}, err
		} else if taken {
			return models.User{}, ErrDuplicateUsername
		}
	}

	set := bson.M{}
	patch.SetMapped(set, "email", upd.Email, normalize.Email)
	patch.SetMapped(set, "username", upd.Username, normalize.Username)
	patch.Set(set, "is_active", upd.IsActive)
	patch.Set(set, "is_admin", upd.IsAdmin)

	u, err := s.store.Update(ctx, id, set)
	if err != nil {
		switch {
		case errors.Is(err, generic.ErrNotFound):
			return models.User{}, ErrNotFound
		case errors.Is(err, generic.ErrDuplicate):
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Deactivate soft-disables an account. The next token middleware fetch
// sees the flag and drops the session.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	_, err := s.store.Update(ctx, id, bson.M{"is_active": false})
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.logger.Info("user deactivated", zap.String("user_id", id))
	return nil
}

// ProfileInput is a self-service account update. Changing the password
// requires the current one.
type ProfileInput struct {
	Email           nullable.Nullable[string] `json:"email"`
	Username        nullable.Nullable[string] `json:"username"`
	CurrentPassword string                    `json:"current_password"`
	NewPassword     string                    `json:"new_password"`
}

// UpdateProfile lets a signed-in user change their own email, username,
// and password.
func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	set := bson.M{}
	if in.NewPassword != "" {
		if len(in.NewPassword) < minPasswordLen {
			c := &validation.Collector{}
			c.Add("new_password", "must be at least 8 characters")
			return models.User{}, c.Err()
		}
		if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), truncateForBcrypt(in.CurrentPassword)) != nil {
			return models.User{}, ErrWrongPassword
		}
		hash, err := hashPassword(in.NewPassword)
		if err != nil {
			return models.User{}, err
		}
		set["hashed_password"] = hash
	}

	if in.Email.IsSpecified() && !in.Email.IsNull() {
		if taken, err := s.store.EmailTaken(ctx, in.Email.MustGet(), id); err != nil {
			return models.User{}, err
		} else if taken {
			return models.User{}, ErrDuplicateEmail
		}
		set["email"] = normalize.Email(in.Email.MustGet())
	}
	if in.Username.IsSpecified() && !in.Username.IsNull() {
		if taken, err := s.store.UsernameTaken(ctx, in.Username.MustGet(), id); err != nil {
			return models.User{}, err
		} else if taken {
			return models.User{}, ErrDuplicateUsername
		}
		set["username"] = normalize.Username(in.Username.MustGet())
	}

	updated, err := s.store.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, generic.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return updated, nil
}

// CountActive counts active accounts.
func (s *Service) CountActive(ctx context.Context) (int64, error) {
	return s.store.CountActive(ctx)
}

func validateCreate(in CreateInput) error {
	c := &validation.Collector{}
	if normalize.Email(in.Email) == "" {
		c.Add("email", "is required")
	}
	if len(normalize.Username(in.Username)) < 3 {
		c.Add("username", "must be at least 3 characters")
	}
	if len(in.Password) < minPasswordLen {
		c.Add("password", "must be at least 8 characters")
	}
	return c.Err()
}

// truncateForBcrypt caps the password at bcrypt's 72-byte input limit so
// longer passphrases hash instead of erroring.
func truncateForBcrypt(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncateForBcrypt(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
