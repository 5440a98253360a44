package models

import "time"

type KYCRequest struct {
	DocumentNumber string `validate:"required"`
	ExpiryDate     string `validate:"required"`
	Front          *Upload
	Back           *Upload
}

type KYCSubmission struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	DocumentNumber string    `json:"documentNumber"`
	ExpiryDate     string    `json:"expiryDate"`
	FrontImageURL  string    `json:"frontImageUrl,omitempty"`
	BackImageURL   string    `json:"backImageUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
