package models

import "time"

// InviteCode is a short-lived numeric code permitting a user to join a
// family. Codes are removed on expiry, never on consumption, so a single
// code can admit several joiners within its TTL.
type InviteCode struct {
	BaseModel

	FamilyID string `gorm:"type:uuid;not null;index" json:"family_id"`
	Code     string `gorm:"not null;index" json:"code"`
	// TTL is the code lifetime in seconds, echoed back to the issuer.
	TTL       int       `gorm:"not null" json:"ttl"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}
