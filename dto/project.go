package dto

// FAQ is a question/answer pair shown on a company page
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FilePayload is an inline, base64 encoded file. Size is the decimal byte count.
type FilePayload struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Size   string `json:"size"`
	Base64 string `json:"base64"`
}

// ProjectRequest is the body of POST /project
type ProjectRequest struct {
	Name            string       `json:"name"`
	Banner          *FilePayload `json:"banner,omitempty"`
	QuickSolution   string       `json:"quickSolution"`
	Website         *string      `json:"website,omitempty"`
	FoundationDate  Date         `json:"foundationDate"`
	CompanySector   string       `json:"companySector"`
	CompanyStage    string       `json:"companyStage"`
	Country         string       `json:"country"`
	City            string       `json:"city"`
	About           string       `json:"about"`
	StartInvestment string       `json:"startInvestment"`
	InvestorsSlots  int          `json:"investorsSlots"`
	AnnualRevenue   string       `json:"annualRevenue"`
	InvestmentGoal  string       `json:"investmentGoal"`
	Equity          *string      `json:"equity,omitempty"`
	CompanyFAQ      []FAQ        `json:"companyFaq"`
}

// ProjectResponse is the created project
type ProjectResponse struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	QuickSolution   string  `json:"quickSolution"`
	Website         *string `json:"website,omitempty"`
	FoundationDate  Date    `json:"foundationDate"`
	CompanySector   string  `json:"companySector"`
	CompanyStage    string  `json:"companyStage"`
	Country         string  `json:"country"`
	City            string  `json:"city"`
	About           string  `json:"about"`
	StartInvestment string  `json:"startInvestment"`
	InvestorsSlots  int     `json:"investorsSlots"`
	AnnualRevenue   string  `json:"annualRevenue"`
	InvestmentGoal  string  `json:"investmentGoal"`
	Equity          *string `json:"equity,omitempty"`
	CompanyFAQ      []FAQ   `json:"companyFaq"`
}

// UploadFileRequest is the body of POST /project/upload-file
type UploadFileRequest struct {
	ProjectID int `json:"idProject"`
	FilePayload
}
