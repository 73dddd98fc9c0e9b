package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Venue maps venues
type Venue struct {
	ID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string  `gorm:"type:text;not null"                             json:"name"`
	AddressLine1 *string `gorm:"type:text"                                      json:"address_line1,omitempty"`
	AddressLine2 *string `gorm:"type:text"                                      json:"address_line2,omitempty"`
	City         *string `gorm:"type:text"                                      json:"city,omitempty"`
	State        *string `gorm:"type:text"                                      json:"state,omitempty"`
	PostalCode   *string `gorm:"type:text"                                      json:"postal_code,omitempty"`
	Country      string  `gorm:"type:text;not null;default:USA"                 json:"country"`
	ContactName  *string `gorm:"type:text"                                      json:"contact_name,omitempty"`
	ContactPhone *string `gorm:"type:text"                                      json:"contact_phone,omitempty"`
	ContactEmail *string `gorm:"type:text"                                      json:"contact_email,omitempty"`
	Notes        *string `gorm:"type:text"                                      json:"notes,omitempty"`
	Active       bool    `gorm:"not null;default:true"                          json:"active"`
	Timestamps
}

// TableName venues
func (Venue) TableName() string { return "venues" }

// FullAddress joins the address parts as "line1, line2, City, ST 12345".
func (v *Venue) FullAddress() string {
	var parts []string
	for _, p := range []*string{v.AddressLine1, v.AddressLine2, v.City} {
		if s := strings.TrimSpace(StrVal(p)); s != "" {
			parts = append(parts, s)
		}
	}
	stateZip := strings.TrimSpace(StrVal(v.State) + " " + StrVal(v.PostalCode))
	if stateZip != "" {
		parts = append(parts, stateZip)
	}
	return strings.Join(parts, ", ")
}

// Agent maps agents
type Agent struct {
	ID          string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DisplayName string  `gorm:"type:text;not null"                             json:"display_name"`
	Company     *string `gorm:"type:text"                                      json:"company,omitempty"`
	Phone       *string `gorm:"type:text"                                      json:"phone,omitempty"`
	Email       *string `gorm:"type:text"                                      json:"email,omitempty"`
	Notes       *string `gorm:"type:text"                                      json:"notes,omitempty"`
	Active      bool    `gorm:"not null;default:true"                          json:"active"`
	Timestamps
}

// TableName agents
func (Agent) TableName() string { return "agents" }

// Musician maps musicians
type Musician struct {
	ID          string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FirstName   *string `gorm:"type:text"                                      json:"first_name,omitempty"`
	MiddleName  *string `gorm:"type:text"                                      json:"middle_name,omitempty"`
	LastName    *string `gorm:"type:text"                                      json:"last_name,omitempty"`
	StageName   *string `gorm:"type:text"                                      json:"stage_name,omitempty"`
	DisplayName *string `gorm:"type:text"                                      json:"display_name,omitempty"`
	Instrument  *string `gorm:"type:text"                                      json:"instrument,omitempty"`
	Phone       *string `gorm:"type:text"                                      json:"phone,omitempty"`
	Email       *string `gorm:"type:text"                                      json:"email,omitempty"`
	Address     *string `gorm:"type:text"                                      json:"address,omitempty"`
	Notes       *string `gorm:"type:text"                                      json:"notes,omitempty"`
	Active      bool    `gorm:"not null;default:true"                          json:"active"`
	Timestamps
}

// TableName musicians
func (Musician) TableName() string { return "musicians" }

// Label stage name, then display name, then "First Last", then email.
func (m *Musician) Label() string {
	full := strings.TrimSpace(StrVal(m.FirstName) + " " + StrVal(m.LastName))
	return FirstNonEmpty(StrVal(m.StageName), StrVal(m.DisplayName), full, StrVal(m.Email), m.ID)
}

// SoundTech maps sound_techs
type SoundTech struct {
	ID          string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DisplayName string              `gorm:"type:text;not null"                             json:"display_name"`
	Company     *string             `gorm:"type:text"                                      json:"company,omitempty"`
	Phone       *string             `gorm:"type:text"                                      json:"phone,omitempty"`
	Email       *string             `gorm:"type:text"                                      json:"email,omitempty"`
	DefaultFee  decimal.NullDecimal `gorm:"type:numeric(12,2)"                             json:"default_fee"`
	Notes       *string             `gorm:"type:text"                                      json:"notes,omitempty"`
	Active      bool                `gorm:"not null;default:true"                          json:"active"`
	Timestamps
}

// TableName sound_techs
func (SoundTech) TableName() string { return "sound_techs" }
