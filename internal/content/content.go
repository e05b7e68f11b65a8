// Package content holds the static competition information shown on the
// public site: about, rules, timeline, awards, judges, FAQ and sponsors.
package content

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var raw []byte

// Heading is the title block of a section
type Heading struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Feature is a titled blurb
type Feature struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type About struct {
	Heading  `yaml:",inline"`
	Extended string    `yaml:"extended" json:"extended"`
	Features []Feature `yaml:"features" json:"features"`
}

type Guidelines struct {
	Title string   `yaml:"title" json:"title"`
	Items []string `yaml:"items" json:"items"`
}

type Criterion struct {
	Name   string `yaml:"name" json:"name"`
	Weight string `yaml:"weight" json:"weight"`
}

type Judging struct {
	Title    string      `yaml:"title" json:"title"`
	Criteria []Criterion `yaml:"criteria" json:"criteria"`
}

type Rules struct {
	Heading     `yaml:",inline"`
	Eligibility Guidelines `yaml:"eligibility" json:"eligibility"`
	Submission  Guidelines `yaml:"submission" json:"submission"`
	Judging     Judging    `yaml:"judging" json:"judging"`
}

type Phase struct {
	Phase       string `yaml:"phase" json:"phase"`
	Date        string `yaml:"date" json:"date"`
	Description string `yaml:"description" json:"description"`
}

type Timeline struct {
	Heading `yaml:",inline"`
	Phases  []Phase `yaml:"phases" json:"phases"`
}

type Award struct {
	Rank     string   `yaml:"rank" json:"rank"`
	Title    string   `yaml:"title" json:"title"`
	Prize    string   `yaml:"prize" json:"prize"`
	Benefits []string `yaml:"benefits" json:"benefits"`
}

type Awards struct {
	Heading              `yaml:",inline"`
	Prizes               []Award   `yaml:"prizes" json:"prizes"`
	AllParticipantsTitle string    `yaml:"all_participants_title" json:"all_participants_title"`
	AllParticipants      []Feature `yaml:"all_participants" json:"all_participants"`
}

type Judge struct {
	Name         string   `yaml:"name" json:"name"`
	Title        string   `yaml:"title" json:"title"`
	Organization string   `yaml:"organization" json:"organization"`
	Avatar       string   `yaml:"avatar" json:"avatar"`
	Tags         []string `yaml:"tags" json:"tags"`
	Bio          string   `yaml:"bio" json:"bio"`
}

type Judges struct {
	Heading `yaml:",inline"`
	People  []Judge `yaml:"people" json:"people"`
}

type QA struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

type FAQ struct {
	Heading `yaml:",inline"`
	Items   []QA `yaml:"items" json:"items"`
}

type Sponsor struct {
	Name    string `yaml:"name" json:"name"`
	Logo    string `yaml:"logo" json:"logo"`
	Website string `yaml:"website,omitempty" json:"website,omitempty"`
}

type Sponsors struct {
	Heading `yaml:",inline"`
	Items   []Sponsor `yaml:"items" json:"items"`
}

// Site is every static section
type Site struct {
	About    About    `yaml:"about" json:"about"`
	Rules    Rules    `yaml:"rules" json:"rules"`
	Timeline Timeline `yaml:"timeline" json:"timeline"`
	Awards   Awards   `yaml:"awards" json:"awards"`
	Judges   Judges   `yaml:"judges" json:"judges"`
	News     Heading  `yaml:"news" json:"news"`
	FAQ      FAQ      `yaml:"faq" json:"faq"`
	Sponsors Sponsors `yaml:"sponsors" json:"sponsors"`
}

var (
	loadOnce sync.Once
	site     *Site
	loadErr  error
)

// Load decodes the embedded content once
func Load() (*Site, error) {
	loadOnce.Do(func() {
		site, loadErr = Parse(raw)
	})
	return site, loadErr
}

// Parse decodes site content from YAML
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	return &s, nil
}

func (s *Site) sections() map[string]interface{} {
	return map[string]interface{}{
		"about":    s.About,
		"rules":    s.Rules,
		"timeline": s.Timeline,
		"awards":   s.Awards,
		"judges":   s.Judges,
		"news":     s.News,
		"faq":      s.FAQ,
		"sponsors": s.Sponsors,
	}
}

// Section returns one section by name
func (s *Site) Section(name string) (interface{}, bool) {
	v, ok := s.sections()[name]
	return v, ok
}

// SectionNames lists the available sections
func (s *Site) SectionNames() []string {
	names := make([]string, 0, 8)
	for k := range s.sections() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
