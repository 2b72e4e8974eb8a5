package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luni-triage-be/internal/dto"
	"luni-triage-be/internal/entity"
)

type fakeUserRepo struct {
	byEmail map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.byEmail[email], nil
}

func (r *fakeUserRepo) FindById(_ context.Context, id uuid.UUID) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.Id == id {
			return u, nil
		}
	}
	return nil, nil
}

const testJwtSecret = "test-secret"

func TestRegister_IssuesValidToken(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nopLogger{}, testJwtSecret)

	res, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "owner@example.com",
		Password: "correct-horse",
		FullName: "Pet Owner",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", res.Email)
	require.NotEmpty(t, res.Token)

	token, err := jwt.Parse(res.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJwtSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, res.UserId.String(), claims["user_id"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nopLogger{}, testJwtSecret)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "owner@example.com",
		Password: "correct-horse",
		FullName: "Pet Owner",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "owner@example.com",
		Password: "another-pass",
		FullName: "Someone Else",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_RoundTrip(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nopLogger{}, testJwtSecret)

	registered, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "owner@example.com",
		Password: "correct-horse",
		FullName: "Pet Owner",
	})
	require.NoError(t, err)

	logged, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "owner@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.UserId, logged.UserId)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nopLogger{}, testJwtSecret)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "owner@example.com",
		Password: "correct-horse",
		FullName: "Pet Owner",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "owner@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nopLogger{}, testJwtSecret)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
