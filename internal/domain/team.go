package domain

import "time"

// Organization is a client of the MSP.
type Organization struct {
	ID         string
	Name       string
	ClientType ClientType
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Team is an operational group under an organization. ClientType is
// denormalized from the owning organization so SLA resolution needs a single
// lookup.
type Team struct {
	ID             string
	OrganizationID string
	Name           string
	ClientType     ClientType
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
