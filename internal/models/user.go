package models

// User is an authenticated family member. FamilyID is nil until the user
// either creates a family or joins one with an invite code.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	DisplayName string `json:"display_name"`

	FamilyID *string `gorm:"type:uuid;index" json:"family_id"`
	Family   *Family `json:"family,omitempty"`
}
