package api

import (
	"context"
	"net/http"

	"github.com/jrsteele09/imvestor-client/dto"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/jrsteele09/imvestor-client/session"
)

// GetProfile fetches the profile resource owned by role. The result is an
// *dto.EntrepreneurProfile or an *dto.InvestorProfile.
func (s *Service) GetProfile(ctx context.Context, role session.Role) (dto.Profile, error) {
	var profile dto.Profile
	switch role {
	case session.RoleEntrepreneur:
		profile = &dto.EntrepreneurProfile{}
	case session.RoleInvestor:
		profile = &dto.InvestorProfile{}
	default:
		return nil, errors.Wrapf(errors.ErrInvalidRole, "profile for role %q", role)
	}

	if err := s.client.Do(ctx, http.MethodGet, role.ProfilePath(), nil, profile); err != nil {
		return nil, errors.Wrapf(err, "get %s profile", role)
	}
	return profile, nil
}

// CurrentProfile fetches the profile of the signed-in user
func (s *Service) CurrentProfile(ctx context.Context) (dto.Profile, error) {
	sess, ok := s.Session()
	if !ok {
		return nil, errors.ErrNoSession
	}
	return s.GetProfile(ctx, sess.Role)
}

func (s *Service) UpdateEntrepreneurProfile(ctx context.Context, req dto.UpdateEntrepreneurProfileRequest) (*dto.EntrepreneurProfile, error) {
	var out dto.EntrepreneurProfile
	if err := s.client.Do(ctx, http.MethodPatch, session.RoleEntrepreneur.ProfilePath(), req, &out); err != nil {
		return nil, errors.Wrapf(err, "update entrepreneur profile")
	}
	return &out, nil
}

func (s *Service) UpdateInvestorProfile(ctx context.Context, req dto.UpdateInvestorProfileRequest) (*dto.InvestorProfile, error) {
	var out dto.InvestorProfile
	if err := s.client.Do(ctx, http.MethodPatch, session.RoleInvestor.ProfilePath(), req, &out); err != nil {
		return nil, errors.Wrapf(err, "update investor profile")
	}
	return &out, nil
}

// UploadBanner replaces the profile banner of the signed-in user
func (s *Service) UploadBanner(ctx context.Context, file dto.FilePayload) error {
	if err := s.client.Do(ctx, http.MethodPost, PathUploadBanner, file, nil); err != nil {
		return errors.Wrapf(err, "upload banner")
	}
	return nil
}
