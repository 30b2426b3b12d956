package models

// Note is a single actionable item produced by classifying a member's
// free-text input. One submission may yield several notes.
type Note struct {
	BaseModel

	Description string `gorm:"not null" json:"description"`
	FamilyID    string `gorm:"type:uuid;not null;index" json:"family_id"`
	UserID      string `gorm:"type:uuid;not null" json:"user_id"`
	ListID      string `gorm:"type:uuid;not null;index" json:"list_id"`
	IsCompleted bool   `gorm:"default:false" json:"is_completed"`
}
