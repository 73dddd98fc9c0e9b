package dto

import "github.com/shopspring/decimal"

// DirectoryListRequest list parameters shared by the four directories.
type DirectoryListRequest struct {
	IncludeInactive bool   `form:"include_inactive"`
	Search          string `form:"q" binding:"omitempty,max=100"`
}

// PeopleRequest GET /people
type PeopleRequest struct {
	Kind            string `form:"kind" binding:"omitempty,oneof=venue agent musician sound_tech"`
	IncludeInactive bool   `form:"include_inactive"`
}

// VenueRequest create/update of a venue.
type VenueRequest struct {
	Name         string  `json:"name"          binding:"required,max=200"`
	AddressLine1 *string `json:"address_line1" binding:"omitempty,max=200"`
	AddressLine2 *string `json:"address_line2" binding:"omitempty,max=200"`
	City         *string `json:"city"          binding:"omitempty,max=100"`
	State        *string `json:"state"         binding:"omitempty,max=50"`
	PostalCode   *string `json:"postal_code"   binding:"omitempty,max=20"`
	Country      string  `json:"country"       binding:"omitempty,max=100"`
	ContactName  *string `json:"contact_name"  binding:"omitempty,max=200"`
	ContactPhone *string `json:"contact_phone" binding:"omitempty,max=50"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	Notes        *string `json:"notes"         binding:"omitempty,max=5000"`
	Active       *bool   `json:"active"`
}

// AgentRequest create/update of an agent.
type AgentRequest struct {
	DisplayName string  `json:"display_name" binding:"required,max=200"`
	Company     *string `json:"company"      binding:"omitempty,max=200"`
	Phone       *string `json:"phone"        binding:"omitempty,max=50"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	Notes       *string `json:"notes"        binding:"omitempty,max=5000"`
	Active      *bool   `json:"active"`
}

// MusicianRequest create/update of a musician. At least one name or an
// email is needed to label the row.
type MusicianRequest struct {
	FirstName   *string `json:"first_name"   binding:"omitempty,max=100"`
	MiddleName  *string `json:"middle_name"  binding:"omitempty,max=100"`
	LastName    *string `json:"last_name"    binding:"omitempty,max=100"`
	StageName   *string `json:"stage_name"   binding:"omitempty,max=100"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=200"`
	Instrument  *string `json:"instrument"   binding:"omitempty,max=100"`
	Phone       *string `json:"phone"        binding:"omitempty,max=50"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	Address     *string `json:"address"      binding:"omitempty,max=500"`
	Notes       *string `json:"notes"        binding:"omitempty,max=5000"`
	Active      *bool   `json:"active"`
}

// SoundTechRequest create/update of a sound tech.
type SoundTechRequest struct {
	DisplayName string           `json:"display_name" binding:"required,max=200"`
	Company     *string          `json:"company"      binding:"omitempty,max=200"`
	Phone       *string          `json:"phone"        binding:"omitempty,max=50"`
	Email       *string          `json:"email"        binding:"omitempty,email"`
	DefaultFee  *decimal.Decimal `json:"default_fee"`
	Notes       *string          `json:"notes"        binding:"omitempty,max=5000"`
	Active      *bool            `json:"active"`
}
