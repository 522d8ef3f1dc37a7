package services

import (
	"testing"
	"time"

	"github.com/Vistiqx/shopify-automation/internal/config"
	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	db := testutil.NewDB(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	holder := newHolder(t, db, "", "", func(cfg *config.Config) {
		cfg.OperatorPasswordHash = string(hash)
	})

	svc := NewAuthService(holder)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	resp, err := svc.Login(&dto.LoginRequest{Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(time.Hour), resp.ExpiresAt)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixed }))
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, OperatorRole, claims["role"])

	_, err = svc.Login(&dto.LoginRequest{Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginDisabled(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAuthService(newHolder(t, db, "", ""))

	_, err := svc.Login(&dto.LoginRequest{Password: "x"})
	assert.ErrorIs(t, err, ErrLoginDisabled)
}
