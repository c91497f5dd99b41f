package dto

// LoginRequest is the body of POST /authentication/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the credentials that seed a new session.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	UserType     string `json:"userType"` // ENTREPRENEUR or INVESTOR
}

// RefreshResponse is returned by GET /auth/refresh
type RefreshResponse struct {
	Token string `json:"token"`
}

// RegisterEntrepreneurRequest is the body of POST /authentication/register-entrepreneur
type RegisterEntrepreneurRequest struct {
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	FiscalCode    string  `json:"fiscalCode"`
	MobileFone    string  `json:"mobileFone"`
	BirthDate     Date    `json:"birthDate"`
	Skills        []int   `json:"skills"`
	ReferralToken *string `json:"referralToken,omitempty"`
}

// RegisterInvestorRequest is the body of POST /authentication/register-investor
type RegisterInvestorRequest struct {
	FirstName              string  `json:"firstName"`
	LastName               string  `json:"lastName"`
	Email                  string  `json:"email"`
	Password               string  `json:"password"`
	MobileFone             string  `json:"mobileFone"`
	FiscalCode             string  `json:"fiscalCode"`
	City                   string  `json:"city"`
	Country                string  `json:"country"`
	InvestmentMinValue     string  `json:"investmentMinValue"`
	InvestmentMaxValue     string  `json:"investmentMaxValue"`
	InvestmentNetWorth     string  `json:"investmentNetWorth"`
	InvestmentAnnualIncome string  `json:"investmentAnnualIncome"`
	About                  string  `json:"about,omitempty"`
	BirthDate              Date    `json:"birthDate"`
	Areas                  []int   `json:"areas"`
	ReferralToken          *string `json:"referralToken,omitempty"`
}
