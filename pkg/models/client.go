package models

// Client is a buyer in the client list.
type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	GSTIN   string `json:"gstin,omitempty" validate:"omitempty,len=15,alphanum"`
}
