// Package form validates operator input before anything is sent to the
// backend, and stages files for multipart uploads.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/existflow/scic/internal/model"
)

// Limits enforced by the forms
const (
	MaxExtraMembers   = 4
	MaxDescription    = 500
	MaxInterests      = 500
	MaxPostTitle      = 200
	MinPasswordLength = 6
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{9,11}$`)
	phoneNoise   = strings.NewReplacer(" ", "", ".", "", "-", "")
)

var emailRule = validation.Match(emailPattern).Error("must be a valid email address")

var phoneRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !phonePattern.MatchString(NormalizePhone(s)) {
		return errors.New("must be a valid phone number")
	}
	return nil
})

var urlRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.ParseRequestURI(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be a valid http(s) URL")
	}
	return nil
})

// NormalizePhone strips spaces, dots and dashes
func NormalizePhone(s string) string {
	return phoneNoise.Replace(strings.TrimSpace(s))
}

// Login is the admin login form
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements validation.Validatable
func (l Login) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Email, validation.Required.Error("email is required"), emailRule),
		validation.Field(&l.Password,
			validation.Required.Error("password is required"),
			validation.RuneLength(MinPasswordLength, 0).Error(fmt.Sprintf("must be at least %d characters", MinPasswordLength))),
	)
}

// Post is the news post authoring form
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate implements validation.Validatable
func (p Post) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.RuneLength(0, MaxPostTitle)),
		validation.Field(&p.Content, validation.Required),
	)
}

// FieldErrors flattens a validation error into dotted field keys, for
// example "leader.email" or "members.0.phone". Errors that are not field
// errors are reported under "form".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	out := make(map[string]string)
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		out["form"] = err.Error()
		return out
	}
	flatten(out, "", verrs)
	return out
}

func flatten(out map[string]string, prefix string, errs validation.Errors) {
	for k, e := range errs {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		var nested validation.Errors
		if errors.As(e, &nested) {
			flatten(out, key, nested)
			continue
		}
		out[key] = e.Error()
	}
}

// SortedKeys returns the keys of a FieldErrors map in stable order
func SortedKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// validatePerson checks a team leader or member. Only the leader must give a phone.
func validatePerson(p model.Person, requirePhone bool) error {
	phone := []validation.Rule{phoneRule}
	if requirePhone {
		phone = append([]validation.Rule{validation.Required.Error("phone is required")}, phone...)
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.Required.Error("full name is required")),
		validation.Field(&p.StudentID, validation.Required.Error("student id is required")),
		validation.Field(&p.Email, validation.Required.Error("email is required"), emailRule),
		validation.Field(&p.Phone, phone...),
	)
}
