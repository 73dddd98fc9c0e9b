package model

// Profile roles.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RolePlayer = "player"
)

// Profile maps profiles, one per identity; id is the token subject.
type Profile struct {
	ID       string  `gorm:"type:uuid;primaryKey"          json:"id"`
	Email    string  `gorm:"type:text;not null;uniqueIndex" json:"email"`
	FullName *string `gorm:"type:text"                     json:"full_name,omitempty"`
	Role     string  `gorm:"type:text;not null;default:staff" json:"role"`
	Timestamps
}

// TableName profiles
func (Profile) TableName() string { return "profiles" }
