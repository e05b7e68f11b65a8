package form

import (
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/existflow/scic/internal/model"
)

// SkillOptions are the skills offered by the team finder
var SkillOptions = []string{
	"Lập trình", "AI/ML", "Thiết kế UI/UX", "Marketing", "Phân tích dữ liệu",
	"Thuyết trình", "IoT", "Embedded Systems", "Python", "Nghiên cứu y khoa",
	"Thiết kế", "Quản lý dự án", "Kinh doanh", "Tài chính", "Blockchain",
}

// Registration is the team-finder sign up form
type Registration struct {
	FullName    string             `json:"full_name"`
	Email       string             `json:"email"`
	School      string             `json:"school"`
	Major       string             `json:"major"`
	Skills      []string           `json:"skills"`
	Interests   string             `json:"interests,omitempty"`
	SocialLinks []model.SocialLink `json:"social_links"`
}

// Validate implements validation.Validatable
func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required.Error("full name is required")),
		validation.Field(&r.Email, validation.Required.Error("email is required"), emailRule),
		validation.Field(&r.School, validation.Required.Error("school is required")),
		validation.Field(&r.Major, validation.Required.Error("major is required")),
		validation.Field(&r.Skills, validation.Required.Error("choose at least one skill")),
		validation.Field(&r.Interests, validation.RuneLength(0, MaxInterests).Error("must be at most 500 characters")),
		validation.Field(&r.SocialLinks, validation.By(validateSocialLinks)),
	)
}

func validateSocialLinks(value interface{}) error {
	links, _ := value.([]model.SocialLink)
	errs := validation.Errors{}
	for i, l := range links {
		err := validation.ValidateStruct(&l,
			validation.Field(&l.Link, validation.Required.Error("link is required"),
				validation.When(l.Type == model.SocialPhone, phoneRule)),
			validation.Field(&l.Type, validation.Required,
				validation.In(model.SocialFacebook, model.SocialZalo, model.SocialPhone).
					Error("must be facebook, zalo or phone")),
		)
		if err != nil {
			errs[strconv.Itoa(i)] = err
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func errIndex(i, n int) error {
	if n == 0 {
		return errors.New("list is empty")
	}
	return errors.New("index " + strconv.Itoa(i) + " out of range [0, " + strconv.Itoa(n-1) + "]")
}
