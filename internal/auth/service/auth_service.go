package service

import (
	"context"
	"strings"

	"github.com/civictrack/civictrack-go/internal/apiclient"
	"github.com/civictrack/civictrack-go/internal/auth/domain"
	"github.com/civictrack/civictrack-go/internal/logging"
)

// AuthService calls the backend's placeholder auth endpoints.
type AuthService struct {
	client *apiclient.Client
}

func NewAuthService(client *apiclient.Client) *AuthService {
	return &AuthService{client: client}
}

// Login exchanges an identity-provider token for a session.
func (s *AuthService) Login(ctx context.Context, token string) (*domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	var out domain.Session
	if err := s.client.PostJSON(ctx, "/auth/login", domain.LoginRequest{Token: token}, &out); err != nil {
		return nil, err
	}
	logging.New(ctx).LogInfo("auth.login", "login accepted")
	return &out, nil
}

// VerifyOTP checks a one-time code sent to phone.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, otp string) (*domain.Session, error) {
	normalized, err := domain.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateOTP(otp); err != nil {
		return nil, err
	}
	var out domain.Session
	req := domain.VerifyOTPRequest{PhoneNumber: normalized, OTP: otp}
	if err := s.client.PostJSON(ctx, "/auth/verify-otp", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser returns the authenticated user's profile.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := s.client.GetJSON(ctx, "/auth/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
