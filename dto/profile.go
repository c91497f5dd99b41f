package dto

// EntrepreneurProfile is returned by GET /entrepreneur
type EntrepreneurProfile struct {
	Avatar         *string  `json:"avatar"`
	Banner         *string  `json:"banner,omitempty"`
	Name           *string  `json:"name"`
	FirstName      string   `json:"firstName,omitempty"`
	LastName       string   `json:"lastName,omitempty"`
	FiscalCode     string   `json:"fiscalCode,omitempty"`
	MobileFone     string   `json:"mobileFone,omitempty"`
	About          *string  `json:"about"`
	City           *string  `json:"city"`
	Country        *string  `json:"country"`
	CompanyRole    *string  `json:"companyRole"`
	CompanyName    *string  `json:"companyName"`
	MemberSince    string   `json:"memberSince"`
	FocusSector    string   `json:"focusSector"`
	Skills         []string `json:"skills"`
	TotalInvestors int      `json:"totalInvestors"`
}

// InvestorProfile is returned by GET /investor
type InvestorProfile struct {
	Reputation          *string `json:"reputation"`
	Name                *string `json:"name"`
	FirstName           string  `json:"firstName,omitempty"`
	LastName            string  `json:"lastName,omitempty"`
	FiscalCode          string  `json:"fiscalCode,omitempty"`
	MobileFone          string  `json:"mobileFone,omitempty"`
	About               *string `json:"about"`
	City                *string `json:"city"`
	Country             *string `json:"country"`
	CompanyRole         *string `json:"companyRole"`
	CompanyName         *string `json:"companyName"`
	MemberSince         string  `json:"memberSince"`
	NetWorth            string  `json:"netWorth"`
	InvestmentObjective *string `json:"investmentObjective"`
	Avatar              *string `json:"avatar"`
	Banner              *string `json:"banner,omitempty"`
	Areas               []int   `json:"areas"`
}

// Profile is either an *EntrepreneurProfile or an *InvestorProfile,
// depending on the role of the session that fetched it.
type Profile interface {
	DisplayName() string
}

func (p *EntrepreneurProfile) DisplayName() string {
	return displayName(p.Name, p.FirstName, p.LastName)
}

func (p *InvestorProfile) DisplayName() string {
	return displayName(p.Name, p.FirstName, p.LastName)
}

func displayName(name *string, first, last string) string {
	if name != nil && *name != "" {
		return *name
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	}
	return last
}

// UpdateEntrepreneurProfileRequest is the body of PATCH /entrepreneur
type UpdateEntrepreneurProfileRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Country     string `json:"country"`
	City        string `json:"city"`
	CompanyRole string `json:"companyRole"`
	CompanyName string `json:"companyName"`
	FiscalCode  string `json:"fiscalCode"`
	MobileFone  string `json:"mobileFone"`
	About       string `json:"about,omitempty"`
}

// UpdateInvestorProfileRequest is the body of PATCH /investor
type UpdateInvestorProfileRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MobileFone string `json:"mobileFone"`
	FiscalCode string `json:"fiscalCode"`
	Country    string `json:"country"`
	City       string `json:"city"`
	About      string `json:"about,omitempty"`
}
