package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/imvestor-client/dto"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/jrsteele09/imvestor-client/session"
	"github.com/rs/zerolog/log"
)

// Login exchanges credentials for tokens and starts a new session holding
// the access token, refresh token, role and email. Any previous session is
// discarded first, so a rejected login never triggers a token refresh.
func (s *Service) Login(ctx context.Context, email, password string) (session.Session, error) {
	s.client.Store().Clear()

	var resp dto.LoginResponse
	if err := s.client.Do(ctx, http.MethodPost, PathLogin, dto.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			return session.Session{}, fmt.Errorf("login: %w: %w", errors.ErrInvalidCredentials, err)
		}
		return session.Session{}, errors.Wrapf(err, "login")
	}
	if resp.Token == "" {
		return session.Session{}, errors.Wrapf(errors.ErrInvalidToken, "login response has no token")
	}

	role, err := session.ParseRole(resp.UserType)
	if err != nil {
		return session.Session{}, errors.Wrapf(err, "login")
	}

	sess := session.Session{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		Role:         role,
		Email:        email,
	}
	if err := s.client.Store().Begin(sess); err != nil {
		return session.Session{}, errors.Wrapf(err, "start session")
	}
	log.Info().Str("email", email).Str("role", string(role)).Msg("Signed in")
	return sess, nil
}

// Logout is local only: the remote API has no sign-out endpoint
func (s *Service) Logout() {
	s.client.Store().Clear()
}

// RegisterEntrepreneur creates an entrepreneur account; it does not sign in
func (s *Service) RegisterEntrepreneur(ctx context.Context, req dto.RegisterEntrepreneurRequest) error {
	if err := s.client.Do(ctx, http.MethodPost, PathRegisterEntrepreneur, req, nil); err != nil {
		return errors.Wrapf(err, "register entrepreneur")
	}
	return nil
}

// RegisterInvestor creates an investor account; it does not sign in
func (s *Service) RegisterInvestor(ctx context.Context, req dto.RegisterInvestorRequest) error {
	if err := s.client.Do(ctx, http.MethodPost, PathRegisterInvestor, req, nil); err != nil {
		return errors.Wrapf(err, "register investor")
	}
	return nil
}
