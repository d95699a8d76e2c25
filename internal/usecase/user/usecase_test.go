package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"flexemi-backend/internal/domain/errs"
	domain "flexemi-backend/internal/domain/user"
	"flexemi-backend/internal/infrastructure/auth"
	"flexemi-backend/internal/infrastructure/logging"
	"flexemi-backend/internal/testutil/fixture"
	"flexemi-backend/internal/testutil/usermock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsecase(t *testing.T) (*Usecase, *fixture.Env, *auth.TokenService) {
	env := fixture.New(t)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	return NewUsecase(env.Users, tokens, WithLogger(logging.Discard())), env, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	uc, env, tokens := newUsecase(t)
	ctx := context.Background()

	dto, err := uc.Register(ctx, RegisterInput{Email: " Ana@X.test ", Name: "Ana", Password: "s3cret-pass", Role: domain.RoleLender})
	require.NoError(t, err)
	assert.Equal(t, "ana@x.test", dto.Email)
	assert.Equal(t, domain.RoleLender, dto.Role)

	stored, err := env.Users.GetByEmail(ctx, "ana@x.test")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "s3cret-pass"))

	session, err := uc.Login(ctx, LoginInput{Email: "ANA@x.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, dto.UserID, session.User.UserID)

	actor, err := tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{UserID: dto.UserID, Role: domain.RoleLender}, actor)
}

func TestLogin_BadCredentials(t *testing.T) {
	uc, _, _ := newUsecase(t)
	ctx := context.Background()
	_, err := uc.Register(ctx, RegisterInput{Email: "bo@x.test", Password: "password1", Role: domain.RoleBorrower})
	require.NoError(t, err)

	for _, in := range []LoginInput{
		{Email: "bo@x.test", Password: "wrong-password"},
		{Email: "nobody@x.test", Password: "password1"},
	} {
		_, err := uc.Login(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
	}
}

func TestRegister_Validation(t *testing.T) {
	uc, _, _ := newUsecase(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "password1", Role: domain.RoleLender}, "email"},
		{"short password", RegisterInput{Email: "a@x.test", Password: "short", Role: domain.RoleLender}, "password"},
		{"admin role", RegisterInput{Email: "a@x.test", Password: "password1", Role: domain.RoleAdmin}, "role"},
		{"no role", RegisterInput{Email: "a@x.test", Password: "password1"}, "role"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := uc.Register(ctx, c.in)
			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Len(t, ve.Fields, 1)
			assert.Equal(t, c.field, ve.Fields[0].Field)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	uc, _, _ := newUsecase(t)
	ctx := context.Background()
	in := RegisterInput{Email: "dup@x.test", Password: "password1", Role: domain.RoleBorrower}
	_, err := uc.Register(ctx, in)
	require.NoError(t, err)

	in.Email = "DUP@x.test"
	_, err = uc.Register(ctx, in)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCreateAdmin(t *testing.T) {
	uc, _, _ := newUsecase(t)
	ctx := context.Background()

	dto, err := uc.CreateAdmin(ctx, "root@x.test", "Root", "password1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, dto.Role)

	_, err = uc.CreateAdmin(ctx, "root@x.test", "Root", "password1")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegister_StoreErrors(t *testing.T) {
	boom := errors.New("db down")
	repo := &usermock.Repo{
		GetByEmailFn: func(context.Context, string) (*domain.User, error) { return nil, boom },
	}
	uc := NewUsecase(repo, auth.NewTokenService("s", time.Hour), WithLogger(logging.Discard()))

	_, err := uc.Register(context.Background(), RegisterInput{Email: "a@x.test", Password: "password1", Role: domain.RoleLender})
	assert.ErrorIs(t, err, boom)
	_, err = uc.Login(context.Background(), LoginInput{Email: "a@x.test", Password: "password1"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}
