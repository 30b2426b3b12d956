package models

// Summary caches the AI digest of a family's notes. At most one row exists
// per family; regeneration patches the row in place. IsStale flips to true
// whenever note state changes and back to false on the next regeneration.
type Summary struct {
	BaseModel

	FamilyID string `gorm:"type:uuid;not null;uniqueIndex" json:"family_id"`
	Summary  string `gorm:"not null" json:"summary"`
	IsStale  bool   `gorm:"default:false" json:"is_stale"`
	// Date is the generation date in YYYY-MM-DD form, set on first insert.
	Date string `json:"date"`
}
