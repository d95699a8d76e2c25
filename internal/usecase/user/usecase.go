package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"flexemi-backend/internal/domain/errs"
	domain "flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/infrastructure/auth"
	"flexemi-backend/pkg/id"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLen = 8
	maxFieldLen    = 255
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(u *domain.User) (string, error)
}

type Usecase struct {
	users    domain.Repository
	tokens   TokenIssuer
	validate *validator.Validate
	log      *slog.Logger
	hash     func(string) (string, error)
	check    func(hash, plain string) bool
}

type Option func(*Usecase)

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.log = l } }

// WithPasswordHasher swaps bcrypt for tests.
func WithPasswordHasher(hash func(string) (string, error), check func(hash, plain string) bool) Option {
	return func(u *Usecase) { u.hash, u.check = hash, check }
}

func NewUsecase(users domain.Repository, tokens TokenIssuer, opts ...Option) *Usecase {
	u := &Usecase{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		log:      slog.Default(),
		hash:     auth.HashPassword,
		check:    auth.CheckPassword,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (u *Usecase) validateAccount(email, name, password string) *errs.ValidationError {
	ve := &errs.ValidationError{}
	if err := u.validate.Var(email, "required,email,max=255"); err != nil {
		ve.Add("email", "must be a valid email address")
	}
	if len(name) > maxFieldLen {
		ve.Add("name", fmt.Sprintf("must be at most %d characters", maxFieldLen))
	}
	if len(password) < minPasswordLen {
		ve.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	return ve
}

// Register creates a lender or borrower account. Admins are only created
// through CreateAdmin.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	email := normalizeEmail(in.Email)
	ve := u.validateAccount(email, strings.TrimSpace(in.Name), in.Password)
	if in.Role != domain.RoleLender && in.Role != domain.RoleBorrower {
		ve.Add("role", "must be LENDER or BORROWER")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	usr, err := u.create(ctx, email, in.Name, in.Password, in.Role)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(usr)
	return &dto, nil
}

// CreateAdmin provisions an ADMIN account.
func (u *Usecase) CreateAdmin(ctx context.Context, email, name, password string) (*UserDTO, error) {
	email = normalizeEmail(email)
	if err := u.validateAccount(email, strings.TrimSpace(name), password).OrNil(); err != nil {
		return nil, err
	}
	usr, err := u.create(ctx, email, name, password, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(usr)
	return &dto, nil
}

func (u *Usecase) create(ctx context.Context, email, name, password string, role domain.Role) (*domain.User, error) {
	_, err := u.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	hash, err := u.hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	usr := &domain.User{
		UserID:       id.NewID32(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
	}
	if err := u.users.Create(ctx, usr); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.log.InfoContext(ctx, "user registered", "user_id", usr.UserID, "role", usr.Role)
	return usr, nil
}

// Login checks the credentials and issues a session token. Unknown emails and
// wrong passwords fail the same way.
func (u *Usecase) Login(ctx context.Context, in LoginInput) (*SessionDTO, error) {
	usr, err := u.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.check(usr.PasswordHash, in.Password) {
		u.log.WarnContext(ctx, "login failed", "user_id", usr.UserID)
		return nil, domain.ErrInvalidCredentials
	}
	token, err := u.tokens.Issue(usr)
	if err != nil {
		return nil, err
	}
	return &SessionDTO{Token: token, User: ToDTO(usr)}, nil
}
