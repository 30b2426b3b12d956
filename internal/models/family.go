package models

import "gorm.io/datatypes"

// Family is the tenant boundary: every note, list, summary and invite code
// is scoped to exactly one family.
type Family struct {
	BaseModel

	CreatedBy   string `gorm:"type:uuid;not null" json:"created_by"`
	Description string `json:"description"`
	// Language is the natural language all AI output is produced in.
	Language string `gorm:"not null" json:"language"`

	// MemberIDs mirrors users.family_id for display purposes; the user row
	// remains the authoritative membership pointer.
	MemberIDs datatypes.JSONSlice[string] `json:"member_ids"`

	Members []User `gorm:"foreignKey:FamilyID" json:"members,omitempty"`
}
