package models

import "time"

// Community represents a member-run community with a social feed
type Community struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	ProfilePhoto *string   `json:"profilePhoto,omitempty" db:"profile_photo"`
	CoverPhoto   *string   `json:"coverPhoto,omitempty" db:"cover_photo"`
	Creator      ActorRef  `json:"creator"`
	DomainID     *int64    `json:"domainId,omitempty" db:"domain_id"`
	SubdomainIDs []int64   `json:"subdomainIds,omitempty" db:"subdomain_ids"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
