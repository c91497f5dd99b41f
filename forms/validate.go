package forms

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jrsteele09/imvestor-client/dto"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var earliestBirthDate = dto.NewDate(1900, time.January, 1)

const (
	minNameLength     = 2
	minPasswordLength = 8
	minAboutLength    = 10
	maxAboutLength    = 280
)

func minLength(fe FieldErrors, field, value string, n int, label string) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		fe.Add(field, fmt.Sprintf("%s must be at least %d characters", label, n))
	}
}

func required(fe FieldErrors, field, value, label string) {
	if strings.TrimSpace(value) == "" {
		fe.Add(field, label+" is required")
	}
}

func email(fe FieldErrors, field, value string) {
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	// ParseAddress also accepts "Name <addr>"; only a bare address is valid here
	if err != nil || addr.Address != strings.TrimSpace(value) {
		fe.Add(field, "Invalid email address")
	}
}

func birthDate(fe FieldErrors, field string, d dto.Date) {
	switch {
	case d.IsZero():
		fe.Add(field, "Date of birth is required")
	case d.After(NowTimeFunc()):
		fe.Add(field, "Date of birth cannot be in the future")
	case d.Before(earliestBirthDate.Time):
		fe.Add(field, "Date of birth cannot be before 1900-01-01")
	}
}

func ValidateLogin(req dto.LoginRequest) error {
	fe := FieldErrors{}
	email(fe, "email", req.Email)
	required(fe, "password", req.Password, "Password")
	return fe.Err()
}

// accountFields are the fields collected on the first signup step
func accountFields(fe FieldErrors, firstName, lastName, emailAddr, password, fiscalCode, mobileFone string, born dto.Date) {
	minLength(fe, "firstName", firstName, minNameLength, "First name")
	minLength(fe, "lastName", lastName, minNameLength, "Last name")
	email(fe, "email", emailAddr)
	minLength(fe, "password", password, minPasswordLength, "Password")
	required(fe, "fiscalCode", fiscalCode, "Fiscal code")
	required(fe, "mobileFone", mobileFone, "Mobile phone")
	birthDate(fe, "birthDate", born)
}

func ValidateEntrepreneurSignup(req dto.RegisterEntrepreneurRequest) error {
	fe := FieldErrors{}
	accountFields(fe, req.FirstName, req.LastName, req.Email, req.Password, req.FiscalCode, req.MobileFone, req.BirthDate)
	return fe.Err()
}

func ValidateInvestorSignup(req dto.RegisterInvestorRequest) error {
	fe := FieldErrors{}
	accountFields(fe, req.FirstName, req.LastName, req.Email, req.Password, req.FiscalCode, req.MobileFone, req.BirthDate)
	required(fe, "city", req.City, "City")
	required(fe, "country", req.Country, "Country")
	required(fe, "investmentMinValue", req.InvestmentMinValue, "Minimum investment value")
	required(fe, "investmentMaxValue", req.InvestmentMaxValue, "Maximum investment value")
	required(fe, "investmentNetWorth", req.InvestmentNetWorth, "Net worth")
	required(fe, "investmentAnnualIncome", req.InvestmentAnnualIncome, "Annual income")
	if len(req.Areas) == 0 {
		fe.Add("areas", "At least one area is required")
	}
	return fe.Err()
}

func ValidateProject(req dto.ProjectRequest) error {
	fe := FieldErrors{}
	minLength(fe, "name", req.Name, 2, "Company name")
	minLength(fe, "quickSolution", req.QuickSolution, 10, "Quick solution")
	minLength(fe, "companySector", req.CompanySector, 2, "Company sector")
	minLength(fe, "companyStage", req.CompanyStage, 2, "Company stage")
	minLength(fe, "country", req.Country, 2, "Country")
	minLength(fe, "city", req.City, 2, "City")
	minLength(fe, "about", req.About, minAboutLength, "About")
	if utf8.RuneCountInString(req.About) > maxAboutLength {
		fe.Add("about", fmt.Sprintf("About must be at most %d characters", maxAboutLength))
	}
	required(fe, "startInvestment", req.StartInvestment, "Start investment")
	if req.InvestorsSlots <= 0 {
		fe.Add("investorsSlots", "Investors slots is required")
	}
	required(fe, "annualRevenue", req.AnnualRevenue, "Annual revenue")
	required(fe, "investmentGoal", req.InvestmentGoal, "Investment goal")
	if req.FoundationDate.IsZero() {
		fe.Add("foundationDate", "Foundation date is required")
	}
	if req.Website != nil && !validURL(*req.Website) {
		fe.Add("website", "Invalid url")
	}
	return fe.Err()
}

func ValidateEntrepreneurProfileUpdate(req dto.UpdateEntrepreneurProfileRequest) error {
	fe := FieldErrors{}
	minLength(fe, "firstName", req.FirstName, minNameLength, "First name")
	minLength(fe, "lastName", req.LastName, minNameLength, "Last name")
	required(fe, "country", req.Country, "Country")
	required(fe, "city", req.City, "City")
	required(fe, "companyRole", req.CompanyRole, "Role")
	required(fe, "companyName", req.CompanyName, "Company name")
	required(fe, "fiscalCode", req.FiscalCode, "Fiscal code")
	required(fe, "mobileFone", req.MobileFone, "Mobile phone")
	return fe.Err()
}

func ValidateInvestorProfileUpdate(req dto.UpdateInvestorProfileRequest) error {
	fe := FieldErrors{}
	minLength(fe, "firstName", req.FirstName, minNameLength, "First name")
	minLength(fe, "lastName", req.LastName, minNameLength, "Last name")
	required(fe, "mobileFone", req.MobileFone, "Mobile phone")
	required(fe, "fiscalCode", req.FiscalCode, "Fiscal code")
	required(fe, "country", req.Country, "Country")
	required(fe, "city", req.City, "City")
	return fe.Err()
}

func validURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
