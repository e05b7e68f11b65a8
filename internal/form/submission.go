package form

import (
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/existflow/scic/internal/model"
)

// Submission is the competition entry form. Report and Attachments are
// local file paths that are uploaded with the entry.
type Submission struct {
	TeamName    string         `json:"teamName"`
	ProjectName string         `json:"projectName"`
	Leader      model.Person   `json:"leader"`
	Members     []model.Person `json:"members"`
	Description string         `json:"description"`
	Report      string         `json:"report"`
	Attachments []string       `json:"attachments"`
	VideoLink   string         `json:"videoLink"`
}

// Validate implements validation.Validatable
func (s Submission) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.TeamName, validation.Required.Error("team name is required")),
		validation.Field(&s.ProjectName, validation.Required.Error("project name is required")),
		validation.Field(&s.Leader, validation.By(func(value interface{}) error {
			return validatePerson(value.(model.Person), true)
		})),
		validation.Field(&s.Members,
			validation.Length(0, MaxExtraMembers).Error("a team has at most 4 members besides the leader"),
			validation.By(validateMembers)),
		validation.Field(&s.Description,
			validation.Required.Error("description is required"),
			validation.RuneLength(0, MaxDescription).Error("must be at most 500 characters")),
		validation.Field(&s.Report, validation.Required.Error("report file is required")),
		validation.Field(&s.VideoLink, urlRule),
	)
}

func validateMembers(value interface{}) error {
	members, _ := value.([]model.Person)
	errs := validation.Errors{}
	for i, m := range members {
		if err := validatePerson(m, false); err != nil {
			errs[strconv.Itoa(i)] = err
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// MemberList is the editable list of extra team members
type MemberList struct {
	items []model.Person
}

// ErrTeamFull is returned when adding beyond MaxExtraMembers
var ErrTeamFull = errors.New("a team has at most 4 members besides the leader")

// Add appends an empty member and returns its index
func (l *MemberList) Add() (int, error) {
	if len(l.items) >= MaxExtraMembers {
		return -1, ErrTeamFull
	}
	l.items = append(l.items, model.Person{})
	return len(l.items) - 1, nil
}

// Update replaces the member at index i
func (l *MemberList) Update(i int, p model.Person) error {
	if i < 0 || i >= len(l.items) {
		return errIndex(i, len(l.items))
	}
	l.items[i] = p
	return nil
}

// Remove deletes the member at index i, keeping the order of the rest
func (l *MemberList) Remove(i int) error {
	if i < 0 || i >= len(l.items) {
		return errIndex(i, len(l.items))
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return nil
}

// Len returns the number of members
func (l *MemberList) Len() int {
	return len(l.items)
}

// Items returns a copy of the members
func (l *MemberList) Items() []model.Person {
	out := make([]model.Person, len(l.items))
	copy(out, l.items)
	return out
}
