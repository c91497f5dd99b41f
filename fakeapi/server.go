package fakeapi

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/imvestor-client/internal/config"
	"github.com/rs/zerolog/log"
)

// Route paths served by the fake backend. They mirror the remote API.
const (
	RouteLogin                = "/authentication/login"
	RouteRegisterEntrepreneur = "/authentication/register-entrepreneur"
	RouteRegisterInvestor     = "/authentication/register-investor"
	RouteRefresh              = "/auth/refresh"
	RouteEntrepreneur         = "/entrepreneur"
	RouteInvestor             = "/investor"
	RouteUploadBanner         = "/api/upload-banner"
	RouteProject              = "/project"
	RouteProjectUploadFile    = "/project/upload-file"
	RouteSkills               = "/skill/skills-list"
	RouteAreas                = "/areas/areas-list"
	RouteCountries            = "/country/country-list"
	RouteStates               = "/state/state-list/{countryId:[0-9]+}"
	RouteReferral             = "/referral/{email}"
)

// Server is an in-memory stand-in for the Imvestor REST API. State lives for
// the lifetime of the value.
type Server struct {
	env    string
	router *mux.Router
	routes []string
	store  *store
	tokens *tokenManager

	refreshCalls atomic.Int64
	failUploads  atomic.Bool
}

func New(cfg config.Config) *Server {
	s := &Server{
		env:    cfg.GetEnv(),
		router: mux.NewRouter(),
		store:  newStore(),
		tokens: newTokenManager(cfg),
	}
	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, "route not found", http.StatusNotFound)
	})

	// Public
	s.RegisterRoute(http.MethodPost, RouteLogin, s.LoginHandler())
	s.RegisterRoute(http.MethodPost, RouteRegisterEntrepreneur, s.RegisterEntrepreneurHandler())
	s.RegisterRoute(http.MethodPost, RouteRegisterInvestor, s.RegisterInvestorHandler())
	s.RegisterRoute(http.MethodGet, RouteRefresh, s.RefreshHandler())
	s.RegisterRoute(http.MethodGet, RouteSkills, s.SkillsHandler())
	s.RegisterRoute(http.MethodGet, RouteAreas, s.AreasHandler())
	s.RegisterRoute(http.MethodGet, RouteCountries, s.CountriesHandler())
	s.RegisterRoute(http.MethodGet, RouteStates, s.StatesHandler())

	// Bearer token required
	s.RegisterRoute(http.MethodGet, RouteEntrepreneur, s.RequireAuth(s.GetProfileHandler(roleEntrepreneur)))
	s.RegisterRoute(http.MethodPatch, RouteEntrepreneur, s.RequireAuth(s.UpdateEntrepreneurHandler()))
	s.RegisterRoute(http.MethodGet, RouteInvestor, s.RequireAuth(s.GetProfileHandler(roleInvestor)))
	s.RegisterRoute(http.MethodPatch, RouteInvestor, s.RequireAuth(s.UpdateInvestorHandler()))
	s.RegisterRoute(http.MethodPost, RouteUploadBanner, s.RequireAuth(s.UploadBannerHandler()))
	s.RegisterRoute(http.MethodPost, RouteProject, s.RequireAuth(s.CreateProjectHandler()))
	s.RegisterRoute(http.MethodPost, RouteProjectUploadFile, s.RequireAuth(s.UploadProjectFileHandler()))
	s.RegisterRoute(http.MethodGet, RouteReferral, s.RequireAuth(s.ReferralHandler()))
}

// RegisterRoute wires handler behind the standard middleware chain
func (s *Server) RegisterRoute(method, path string, handler http.HandlerFunc) {
	s.routes = append(s.routes, method+" "+path)
	s.router.HandleFunc(path, ChainMiddleware(handler, s.LoggingMiddleware, s.RecoverMiddleware)).Methods(method)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Info().Msg(colourRoute(route))
	}
}

// ExpireAccessTokens makes every access token issued so far fail with 401,
// as if they had all reached their expiry.
func (s *Server) ExpireAccessTokens() {
	s.tokens.expireAccessTokens()
}

// RevokeRefreshTokens forgets every refresh token, so refreshes fail with 401
func (s *Server) RevokeRefreshTokens() {
	s.tokens.revokeRefreshTokens()
}

// RefreshCalls is the number of requests served by the refresh endpoint
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// SetFailUploads makes project file uploads fail with 500
func (s *Server) SetFailUploads(fail bool) {
	s.failUploads.Store(fail)
}

// ProjectFiles lists the names of the files attached to a project
func (s *Server) ProjectFiles(projectID int) ([]string, error) {
	_, names, err := s.store.Project(projectID)
	return names, err
}
