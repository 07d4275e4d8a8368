package models

// BusinessProfile is the seller identity printed on every invoice. There is
// exactly one, replaced wholesale on save.
type BusinessProfile struct {
	Name         string `json:"name" validate:"required"`
	Address      string `json:"address"`
	Phone        string `json:"phone" validate:"omitempty,phone"`
	Email        string `json:"email" validate:"omitempty,email"`
	GSTIN        string `json:"gstin" validate:"omitempty,len=15,alphanum"`
	LogoURL      string `json:"logoUrl,omitempty"`
	SignatureURL string `json:"signatureUrl,omitempty"`
	Terms        string `json:"terms"`
}

// DefaultProfile is returned until the user saves their own profile.
func DefaultProfile() BusinessProfile {
	return BusinessProfile{
		Name:    "My Business",
		Address: "123 Business St, Tech City",
		Phone:   "9876543210",
		Email:   "contact@business.com",
		Terms:   "1. Goods once sold will not be taken back.\n2. Interest @18% pa will be charged if payment is delayed.",
	}
}
