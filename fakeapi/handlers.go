package fakeapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/imvestor-client/dto"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/jrsteele09/imvestor-client/internal/utils"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]any{
		"statusCode": statusCode,
		"message":    message,
	})
}

// writeStoreError maps store sentinels onto HTTP statuses
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		writeJSONError(w, "not found", http.StatusNotFound)
	case errors.Is(err, errors.ErrForbidden):
		writeJSONError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, errors.ErrConflict):
		writeJSONError(w, "already exists", http.StatusConflict)
	default:
		log.Err(err).Msg("Store operation failed")
		writeJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func requireFields(w http.ResponseWriter, fields map[string]string) bool {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		writeJSONError(w, "missing fields: "+strings.Join(missing, ", "), http.StatusBadRequest)
		return false
	}
	return true
}

// LoginHandler handles POST /authentication/login
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		a, err := s.store.Authenticate(req.Email, req.Password)
		if err != nil {
			writeJSONError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		access, err := s.tokens.CreateAccessToken(a.Email, a.Role)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		refresh, err := s.tokens.CreateRefreshToken(a.Email)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, dto.LoginResponse{
			Token:        access,
			RefreshToken: refresh,
			UserType:     a.Role,
		})
	}
}

// RefreshHandler handles GET /auth/refresh. The refresh token is the bearer credential.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)

		token, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, "missing refresh token", http.StatusUnauthorized)
			return
		}
		email, err := s.tokens.LookupRefreshToken(token)
		if err != nil {
			writeJSONError(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		a, err := s.store.Get(email)
		if err != nil {
			writeJSONError(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}

		access, err := s.tokens.CreateAccessToken(a.Email, a.Role)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.RefreshResponse{Token: access})
	}
}

// RegisterEntrepreneurHandler handles POST /authentication/register-entrepreneur
func (s *Server) RegisterEntrepreneurHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.RegisterEntrepreneurRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !requireFields(w, map[string]string{
			"firstName": req.FirstName,
			"lastName":  req.LastName,
			"email":     req.Email,
			"password":  req.Password,
		}) {
			return
		}

		a := &account{
			Email:      req.Email,
			Role:       roleEntrepreneur,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			FiscalCode: req.FiscalCode,
			MobileFone: req.MobileFone,
			BirthDate:  req.BirthDate,
			Skills:     req.Skills,
		}
		if err := s.store.Register(a, req.Password, utils.Value(req.ReferralToken)); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

// RegisterInvestorHandler handles POST /authentication/register-investor
func (s *Server) RegisterInvestorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.RegisterInvestorRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !requireFields(w, map[string]string{
			"firstName": req.FirstName,
			"lastName":  req.LastName,
			"email":     req.Email,
			"password":  req.Password,
		}) {
			return
		}

		a := &account{
			Email:      req.Email,
			Role:       roleInvestor,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			FiscalCode: req.FiscalCode,
			MobileFone: req.MobileFone,
			BirthDate:  req.BirthDate,
			City:       req.City,
			Country:    req.Country,
			About:      req.About,
			Areas:      req.Areas,
			NetWorth:   req.InvestmentNetWorth,
		}
		if err := s.store.Register(a, req.Password, utils.Value(req.ReferralToken)); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

// GetProfileHandler serves GET /entrepreneur and GET /investor. The role of
// the token must match the resource.
func (s *Server) GetProfileHandler(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims.Role != role {
			writeJSONError(w, "forbidden", http.StatusForbidden)
			return
		}
		a, err := s.store.Get(claims.Email)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if role == roleEntrepreneur {
			writeJSON(w, http.StatusOK, entrepreneurProfile(a))
			return
		}
		writeJSON(w, http.StatusOK, investorProfile(a))
	}
}

// UpdateEntrepreneurHandler handles PATCH /entrepreneur
func (s *Server) UpdateEntrepreneurHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims.Role != roleEntrepreneur {
			writeJSONError(w, "forbidden", http.StatusForbidden)
			return
		}
		var req dto.UpdateEntrepreneurProfileRequest
		if !decodeBody(w, r, &req) {
			return
		}
		err := s.store.Update(claims.Email, func(a *account) {
			a.FirstName, a.LastName = req.FirstName, req.LastName
			a.Country, a.City = req.Country, req.City
			a.CompanyRole, a.CompanyName = req.CompanyRole, req.CompanyName
			a.FiscalCode, a.MobileFone = req.FiscalCode, req.MobileFone
			a.About = req.About
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		a, _ := s.store.Get(claims.Email)
		writeJSON(w, http.StatusOK, entrepreneurProfile(a))
	}
}

// UpdateInvestorHandler handles PATCH /investor
func (s *Server) UpdateInvestorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims.Role != roleInvestor {
			writeJSONError(w, "forbidden", http.StatusForbidden)
			return
		}
		var req dto.UpdateInvestorProfileRequest
		if !decodeBody(w, r, &req) {
			return
		}
		err := s.store.Update(claims.Email, func(a *account) {
			a.FirstName, a.LastName = req.FirstName, req.LastName
			a.Country, a.City = req.Country, req.City
			a.FiscalCode, a.MobileFone = req.FiscalCode, req.MobileFone
			a.About = req.About
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		a, _ := s.store.Get(claims.Email)
		writeJSON(w, http.StatusOK, investorProfile(a))
	}
}

// UploadBannerHandler handles POST /api/upload-banner
func (s *Server) UploadBannerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.FilePayload
		if !decodeBody(w, r, &req) || !validFile(w, req) {
			return
		}
		claims := claimsFrom(r.Context())
		if err := s.store.Update(claims.Email, func(a *account) { a.Banner = req.Name }); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

// CreateProjectHandler handles POST /project. Only entrepreneurs create projects.
func (s *Server) CreateProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims.Role != roleEntrepreneur {
			writeJSONError(w, "only entrepreneurs can create projects", http.StatusForbidden)
			return
		}
		var req dto.ProjectRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !requireFields(w, map[string]string{
			"name":          req.Name,
			"quickSolution": req.QuickSolution,
			"about":         req.About,
		}) {
			return
		}
		if req.Banner != nil && req.Banner.Base64 != "" && !validFile(w, *req.Banner) {
			return
		}
		writeJSON(w, http.StatusCreated, s.store.CreateProject(claims.Email, req))
	}
}

// UploadProjectFileHandler handles POST /project/upload-file
func (s *Server) UploadProjectFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.failUploads.Load() {
			writeJSONError(w, "storage unavailable", http.StatusInternalServerError)
			return
		}
		var req dto.UploadFileRequest
		if !decodeBody(w, r, &req) || !validFile(w, req.FilePayload) {
			return
		}
		claims := claimsFrom(r.Context())
		if err := s.store.AttachFile(claims.Email, req.ProjectID, req.FilePayload); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

// validFile checks that the declared size matches the decoded base64 body
func validFile(w http.ResponseWriter, f dto.FilePayload) bool {
	data, err := base64.StdEncoding.DecodeString(f.Base64)
	if err != nil || f.Name == "" {
		writeJSONError(w, "invalid file payload", http.StatusBadRequest)
		return false
	}
	if size, err := strconv.Atoi(f.Size); err != nil || size != len(data) {
		writeJSONError(w, "file size does not match content", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) SkillsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, skills)
	}
}

func (s *Server) AreasHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, areas)
	}
}

func (s *Server) CountriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, countries)
	}
}

// StatesHandler handles GET /state/state-list/{countryId}
func (s *Server) StatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["countryId"])
		if err != nil {
			writeJSONError(w, "invalid country id", http.StatusBadRequest)
			return
		}
		list, ok := states[id]
		if !ok {
			writeJSONError(w, "country not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ReferralHandler handles GET /referral/{email}. Users may only read their own referrals.
func (s *Server) ReferralHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := mux.Vars(r)["email"]
		claims := claimsFrom(r.Context())
		if key(email) != key(claims.Email) {
			writeJSONError(w, "forbidden", http.StatusForbidden)
			return
		}
		details, err := s.store.Referrals(email)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

func entrepreneurProfile(a account) dto.EntrepreneurProfile {
	skillNames := make([]string, 0, len(a.Skills))
	for _, id := range a.Skills {
		for _, sk := range skills {
			if sk.ID == id {
				skillNames = append(skillNames, sk.Description)
			}
		}
	}
	return dto.EntrepreneurProfile{
		Avatar:      nil,
		Banner:      utils.NonZero(a.Banner),
		Name:        utils.NonZero(strings.TrimSpace(a.FirstName + " " + a.LastName)),
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		FiscalCode:  a.FiscalCode,
		MobileFone:  a.MobileFone,
		About:       utils.NonZero(a.About),
		City:        utils.NonZero(a.City),
		Country:     utils.NonZero(a.Country),
		CompanyRole: utils.NonZero(a.CompanyRole),
		CompanyName: utils.NonZero(a.CompanyName),
		MemberSince: a.MemberSince.Format(dto.DateLayout),
		Skills:      skillNames,
	}
}

func investorProfile(a account) dto.InvestorProfile {
	areaIDs := a.Areas
	if areaIDs == nil {
		areaIDs = []int{}
	}
	return dto.InvestorProfile{
		Name:        utils.NonZero(strings.TrimSpace(a.FirstName + " " + a.LastName)),
		Banner:      utils.NonZero(a.Banner),
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		FiscalCode:  a.FiscalCode,
		MobileFone:  a.MobileFone,
		About:       utils.NonZero(a.About),
		City:        utils.NonZero(a.City),
		Country:     utils.NonZero(a.Country),
		CompanyRole: utils.NonZero(a.CompanyRole),
		CompanyName: utils.NonZero(a.CompanyName),
		MemberSince: a.MemberSince.Format(dto.DateLayout),
		NetWorth:    a.NetWorth,
		Areas:       areaIDs,
	}
}
