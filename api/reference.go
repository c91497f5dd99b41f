package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/imvestor-client/dto"
	"github.com/jrsteele09/imvestor-client/internal/errors"
)

// ListSkills returns the skills an entrepreneur can pick
func (s *Service) ListSkills(ctx context.Context) ([]dto.Skill, error) {
	var out []dto.Skill
	if err := s.client.Do(ctx, http.MethodGet, PathSkills, nil, &out); err != nil {
		return nil, errors.Wrapf(err, "list skills")
	}
	return out, nil
}

// ListAreas returns the investment areas
func (s *Service) ListAreas(ctx context.Context) ([]dto.Area, error) {
	var out []dto.Area
	if err := s.client.Do(ctx, http.MethodGet, PathAreas, nil, &out); err != nil {
		return nil, errors.Wrapf(err, "list areas")
	}
	return out, nil
}

// ListCountries returns the countries
func (s *Service) ListCountries(ctx context.Context) ([]dto.Country, error) {
	var out []dto.Country
	if err := s.client.Do(ctx, http.MethodGet, PathCountries, nil, &out); err != nil {
		return nil, errors.Wrapf(err, "list countries")
	}
	return out, nil
}

// ListStates returns the state names of a country
func (s *Service) ListStates(ctx context.Context, countryID int) ([]string, error) {
	var out []string
	if err := s.client.Do(ctx, http.MethodGet, PathStates+strconv.Itoa(countryID), nil, &out); err != nil {
		return nil, errors.Wrapf(err, "list states of country %d", countryID)
	}
	return out, nil
}

// GetReferrals returns the referral code of email and the people who used it
func (s *Service) GetReferrals(ctx context.Context, email string) (dto.ReferralDetails, error) {
	var out dto.ReferralDetails
	if err := s.client.Do(ctx, http.MethodGet, PathReferral+url.PathEscape(email), nil, &out); err != nil {
		return dto.ReferralDetails{}, errors.Wrapf(err, "get referrals")
	}
	return out, nil
}
