package models

import "time"

// Identity is the caller as described by their bearer token. Token is the
// raw JWT, forwarded unchanged to the payments API.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
	Token  string
}

func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}

type Submission struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Kind           string    `json:"kind"`
	IdempotencyKey string    `json:"idempotencyKey"`
	Amount         string    `json:"amount,omitempty"`
	UpstreamID     string    `json:"upstreamId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type AdminAction struct {
	ID           string    `json:"id"`
	WithdrawalID string    `json:"withdrawalId"`
	Action       string    `json:"action"`
	Reason       string    `json:"reason,omitempty"`
	AdminID      string    `json:"adminId"`
	Outcome      string    `json:"outcome"`
	CreatedAt    time.Time `json:"createdAt"`
}
