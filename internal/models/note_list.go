package models

// NoteList is a named bucket of related notes, curated by the classifier:
// it creates lists when no existing one fits and renames them when a new
// note reveals a broader purpose.
type NoteList struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	FamilyID    string `gorm:"type:uuid;not null;index" json:"family_id"`

	Notes []Note `gorm:"foreignKey:ListID" json:"notes,omitempty"`
}
