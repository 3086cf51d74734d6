package api

import (
	"context"
	"net/http"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

type AuthAPI struct{ t Doer }

func (a *AuthAPI) SendVerificationCode(ctx context.Context, email string) (*Empty, error) {
	var out Empty
	err := a.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/auth/send-verification",
		Body:   map[string]string{"email": email},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) VerifyCode(ctx context.Context, email, code string) (*AuthResponse, error) {
	var out AuthResponse
	err := a.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/auth/verify",
		Body:   map[string]string{"email": email, "code": code},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) CompleteOnboarding(ctx context.Context, data domain.OnboardingData) (*OnboardingResponse, error) {
	var out OnboardingResponse
	err := a.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/auth/onboarding",
		Body:   data,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.t.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/auth/logout"}, nil)
}
