package model

import "time"

// BandRoles the nine chairs of a full band, in display order.
var BandRoles = []string{
	"Male Vocals", "Female Vocals", "Keyboard", "Drums", "Guitar",
	"Bass", "Trumpet", "Saxophone", "Trombone",
}

// GigMusician maps gig_musicians. A musician cannot be deleted while assigned.
type GigMusician struct {
	ID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GigID      string    `gorm:"type:uuid;not null"                             json:"gig_id"`
	MusicianID string    `gorm:"type:uuid;not null"                             json:"musician_id"`
	Role       string    `gorm:"type:text;not null"                             json:"role"`
	CreatedAt  time.Time `gorm:"not null;default:now()"                         json:"created_at"`

	Musician *Musician `gorm:"foreignKey:MusicianID" json:"musician,omitempty"`
}

// TableName gig_musicians
func (GigMusician) TableName() string { return "gig_musicians" }
