package api

import (
	"github.com/jrsteele09/imvestor-client/apiclient"
	"github.com/jrsteele09/imvestor-client/session"
)

// Remote API resource paths
const (
	PathLogin                = "/authentication/login"
	PathRegisterEntrepreneur = "/authentication/register-entrepreneur"
	PathRegisterInvestor     = "/authentication/register-investor"
	PathUploadBanner         = "/api/upload-banner"
	PathProject              = "/project"
	PathProjectUploadFile    = "/project/upload-file"
	PathSkills               = "/skill/skills-list"
	PathAreas                = "/areas/areas-list"
	PathCountries            = "/country/country-list"
	PathStates               = "/state/state-list/"
	PathReferral             = "/referral/"
)

// Service exposes the Imvestor endpoints as typed calls. Every call goes
// through the authenticated client, so expired access tokens are refreshed
// transparently.
type Service struct {
	client *apiclient.Client
}

// New creates a Service that sends every call through client
func New(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// Session returns the active session, if any
func (s *Service) Session() (session.Session, bool) {
	return s.client.Store().Get()
}
