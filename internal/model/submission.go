package model

import "time"

// Person is a team leader or member on a submission
type Person struct {
	FullName  string `json:"fullName"`
	StudentID string `json:"studentId"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// FileRef points at an uploaded file held by the backend
type FileRef struct {
	URL      string `json:"url"`
	FileID   string `json:"fileId"`
	FileName string `json:"fileName,omitempty"`
}

// Submission is a competition entry
type Submission struct {
	ID          string    `json:"_id"`
	TeamName    string    `json:"teamName"`
	ProjectName string    `json:"projectName"`
	Leader      Person    `json:"leader"`
	Members     []Person  `json:"members"`
	Description string    `json:"description,omitempty"`
	Report      FileRef   `json:"report"`
	Attachments []FileRef `json:"attachments"`
	VideoLink   string    `json:"videoLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamSize counts the leader plus members
func (s *Submission) TeamSize() int {
	return 1 + len(s.Members)
}
