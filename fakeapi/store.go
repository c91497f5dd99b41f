package fakeapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/imvestor-client/dto"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	roleEntrepreneur = "ENTREPRENEUR"
	roleInvestor     = "INVESTOR"
)

// account is everything the fake backend knows about a registered user
type account struct {
	Email        string
	PasswordHash string
	Role         string
	FirstName    string
	LastName     string
	FiscalCode   string
	MobileFone   string
	BirthDate    dto.Date
	City         string
	Country      string
	About        string
	CompanyRole  string
	CompanyName  string
	Skills       []int
	Areas        []int
	NetWorth     string
	Banner       string
	ReferralCode string
	ReferredBy   string // Email of the referrer, if any
	MemberSince  time.Time
}

// project is a created company together with its uploaded files
type project struct {
	dto.ProjectResponse
	Owner string
	Files []dto.FilePayload
}

// store is the in-memory state of the fake backend
type store struct {
	mu            sync.RWMutex
	accounts      map[string]*account // lower-cased email -> account
	projects      map[int]*project
	nextProjectID int
}

func newStore() *store {
	return &store{
		accounts:      make(map[string]*account),
		projects:      make(map[int]*project),
		nextProjectID: 1,
	}
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register stores a new account. A referral token naming an existing code
// links the new account to its referrer; unknown tokens are ignored.
func (s *store) Register(a *account, password, referralToken string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return errors.Wrapf(err, "hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[key(a.Email)]; exists {
		return errors.Wrapf(errors.ErrConflict, "account %s", a.Email)
	}

	a.PasswordHash = hash
	a.ReferralCode = uuid.NewString()
	a.MemberSince = NowTimeFunc().UTC()
	if referralToken != "" {
		for _, other := range s.accounts {
			if other.ReferralCode == referralToken {
				a.ReferredBy = other.Email
				break
			}
		}
	}
	s.accounts[key(a.Email)] = a
	return nil
}

// Authenticate checks credentials and returns a copy of the account
func (s *store) Authenticate(email, password string) (account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[key(email)]
	if !ok || !checkPasswordHash(password, a.PasswordHash) {
		return account{}, errors.ErrUnauthorized
	}
	return *a, nil
}

func (s *store) Get(email string) (account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[key(email)]
	if !ok {
		return account{}, errors.ErrNotFound
	}
	return *a, nil
}

// Update applies fn to the stored account under the write lock
func (s *store) Update(email string, fn func(a *account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[key(email)]
	if !ok {
		return errors.ErrNotFound
	}
	fn(a)
	return nil
}

// Referrals lists the accounts that signed up with email's referral code
func (s *store) Referrals(email string) (dto.ReferralDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[key(email)]
	if !ok {
		return dto.ReferralDetails{}, errors.ErrNotFound
	}

	refs := make([]dto.Reference, 0)
	for _, other := range s.accounts {
		if key(other.ReferredBy) == key(a.Email) {
			refs = append(refs, dto.Reference{Name: other.FirstName + " " + other.LastName})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })

	return dto.ReferralDetails{
		ReferralCode: a.ReferralCode,
		Total:        len(refs),
		References:   refs,
	}, nil
}

func (s *store) CreateProject(owner string, req dto.ProjectRequest) dto.ProjectResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	faq := req.CompanyFAQ
	if faq == nil {
		faq = []dto.FAQ{}
	}
	p := &project{
		ProjectResponse: dto.ProjectResponse{
			ID:              s.nextProjectID,
			Name:            req.Name,
			QuickSolution:   req.QuickSolution,
			Website:         req.Website,
			FoundationDate:  req.FoundationDate,
			CompanySector:   req.CompanySector,
			CompanyStage:    req.CompanyStage,
			Country:         req.Country,
			City:            req.City,
			About:           req.About,
			StartInvestment: req.StartInvestment,
			InvestorsSlots:  req.InvestorsSlots,
			AnnualRevenue:   req.AnnualRevenue,
			InvestmentGoal:  req.InvestmentGoal,
			Equity:          req.Equity,
			CompanyFAQ:      faq,
		},
		Owner: key(owner),
	}
	if req.Banner != nil {
		p.Files = append(p.Files, *req.Banner)
	}
	s.projects[p.ID] = p
	s.nextProjectID++
	return p.ProjectResponse
}

// AttachFile adds a file to a project owned by owner
func (s *store) AttachFile(owner string, projectID int, file dto.FilePayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return errors.ErrNotFound
	}
	if p.Owner != key(owner) {
		return errors.ErrForbidden
	}
	p.Files = append(p.Files, file)
	return nil
}

// Project returns a copy of the stored project and its file names
func (s *store) Project(id int) (dto.ProjectResponse, []string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return dto.ProjectResponse{}, nil, errors.ErrNotFound
	}
	names := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		names = append(names, f.Name)
	}
	return p.ProjectResponse, names, nil
}
