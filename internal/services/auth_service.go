package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/runtime"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrLoginDisabled      = errors.New("operator login is not configured")
)

const OperatorRole = "operator"

// AuthService issues operator tokens. There is a single operator identity
// whose password hash comes from OPERATOR_PASSWORD_HASH.
type AuthService struct {
	holder *runtime.Holder
	now    func() time.Time
}

func NewAuthService(holder *runtime.Holder) *AuthService {
	return &AuthService{holder: holder, now: time.Now}
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	cfg := s.holder.Current().Config
	if cfg.OperatorPasswordHash == "" {
		return nil, ErrLoginDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cfg.OperatorPasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(cfg.JWTAccessExpiry)
	claims := jwt.MapClaims{
		"sub":  OperatorRole,
		"role": OperatorRole,
		"iat":  s.now().Unix(),
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &dto.AuthResponse{AccessToken: signed, ExpiresAt: expiresAt}, nil
}
