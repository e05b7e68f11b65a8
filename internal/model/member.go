package model

import (
	"strings"
	"time"
)

// Social link types accepted by the team finder
const (
	SocialFacebook = "facebook"
	SocialZalo     = "zalo"
	SocialPhone    = "phone"
)

// SocialLink is a contact handle on a team-finder profile
type SocialLink struct {
	Link string `json:"link"`
	Type string `json:"type"`
}

// Member is a team-finder registration
type Member struct {
	ID          string       `json:"_id"`
	FullName    string       `json:"full_name"`
	Email       string       `json:"email"`
	SocialLinks []SocialLink `json:"social_links"`
	School      string       `json:"school"`
	Major       string       `json:"major"`
	Skills      []string     `json:"skills"`
	Interests   string       `json:"interests,omitempty"`
	Status      Status       `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// HasSkill reports whether the member lists skill exactly
func (m *Member) HasSkill(skill string) bool {
	for _, s := range m.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// Contact formats social links as "Type: link" lines
func (m *Member) Contact() []string {
	out := make([]string, 0, len(m.SocialLinks))
	for _, l := range m.SocialLinks {
		switch l.Type {
		case SocialFacebook, SocialZalo, SocialPhone:
			out = append(out, strings.ToUpper(l.Type[:1])+l.Type[1:]+": "+l.Link)
		default:
			out = append(out, l.Link)
		}
	}
	return out
}
