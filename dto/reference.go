package dto

type Skill struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type Area struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Country struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Reference is a person who signed up with a referral code
type Reference struct {
	Name string `json:"name"`
}

// ReferralDetails is returned by GET /referral/{email}
type ReferralDetails struct {
	ReferralCode string      `json:"referralCode"`
	Total        int         `json:"total"`
	References   []Reference `json:"references"`
}
