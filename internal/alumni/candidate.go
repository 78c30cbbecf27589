package alumni

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// SourceSimilarity labels candidates produced by the similarity stream.
	SourceSimilarity = "similarity"
	// SourceDatabase labels candidates produced by a direct profile store query.
	SourceDatabase = "database"
)

var validate = validator.New()

// Candidate is an alumni profile ranked against a query profile.
type Candidate struct {
	ID                  string   `json:"id" mapstructure:"id" validate:"required"`
	Name                string   `json:"name" mapstructure:"name" validate:"required"`
	Organization        string   `json:"current_company,omitempty" mapstructure:"current_company"`
	Title               string   `json:"current_role,omitempty" mapstructure:"current_role"`
	Domain              string   `json:"domain,omitempty" mapstructure:"domain"`
	Department          string   `json:"department,omitempty" mapstructure:"department"`
	Degree              string   `json:"degree,omitempty" mapstructure:"degree"`
	GraduationYear      int      `json:"graduation_year,omitempty" mapstructure:"graduation_year" validate:"omitempty,gte=1900,lte=2100"`
	ExperienceYears     int      `json:"experience_years,omitempty" mapstructure:"experience_years" validate:"gte=0,lte=80"`
	Skills              []string `json:"skills,omitempty" mapstructure:"skills"`
	Location            string   `json:"location,omitempty" mapstructure:"location"`
	Industry            string   `json:"industry,omitempty" mapstructure:"industry"`
	Seniority           string   `json:"seniority_level,omitempty" mapstructure:"seniority_level"`
	HiringAuthority     bool     `json:"hiring_authority,omitempty" mapstructure:"hiring_authority"`
	ResponseRate        float64  `json:"response_rate,omitempty" mapstructure:"response_rate" validate:"gte=0,lte=1"`
	ReferralSuccessRate float64  `json:"referral_success_rate,omitempty" mapstructure:"referral_success_rate" validate:"gte=0,lte=1"`
	Email               string   `json:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`
	LinkedInURL         string   `json:"linkedin_url,omitempty" mapstructure:"linkedin_url" validate:"omitempty,url"`
	PreviousCompanies   []string `json:"previous_companies,omitempty" mapstructure:"previous_companies"`
	Bio                 string   `json:"bio,omitempty" mapstructure:"bio"`

	// Search-time fields. They never outlive a single search.
	Similarity    float64            `json:"similarity" mapstructure:"-"`
	HasSimilarity bool               `json:"-" mapstructure:"-"`
	Source        string             `json:"source,omitempty" mapstructure:"-"`
	Score         float64            `json:"match_score" mapstructure:"-"`
	Components    map[string]float64 `json:"components,omitempty" mapstructure:"-"`
}

// Validate reports whether the candidate carries the fields required for scoring.
func (c *Candidate) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil record", ErrMalformedCandidate)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedCandidate, err)
	}
	return nil
}

// Normalize trims text fields and drops blank and duplicate skills, keeping their order.
func (c *Candidate) Normalize() {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.Organization = strings.TrimSpace(c.Organization)
	c.Title = strings.TrimSpace(c.Title)
	c.Domain = strings.TrimSpace(c.Domain)
	c.Department = strings.TrimSpace(c.Department)
	c.Seniority = strings.ToLower(strings.TrimSpace(c.Seniority))
	c.Skills = CleanList(c.Skills)
	c.PreviousCompanies = CleanList(c.PreviousCompanies)
	if c.ExperienceYears < 0 {
		c.ExperienceYears = 0
	}
}

// Clone returns a copy that can be scored without touching the original.
func (c *Candidate) Clone() *Candidate {
	if c == nil {
		return nil
	}
	out := *c
	out.Skills = append([]string(nil), c.Skills...)
	out.PreviousCompanies = append([]string(nil), c.PreviousCompanies...)
	if c.Components != nil {
		out.Components = make(map[string]float64, len(c.Components))
		for k, v := range c.Components {
			out.Components[k] = v
		}
	}
	return &out
}

// Document renders the descriptive text used by similarity sources.
func (c *Candidate) Document() string {
	parts := make([]string, 0, 8)

	if c.Name != "" {
		parts = append(parts, "Alumni Name: "+c.Name)
	}

	switch {
	case c.Organization != "" && c.Title != "":
		parts = append(parts, fmt.Sprintf("Currently working as %s at %s", c.Title, c.Organization))
	case c.Organization != "":
		parts = append(parts, "Currently working at "+c.Organization)
	case c.Title != "":
		parts = append(parts, "Current role: "+c.Title)
	}

	if c.Domain != "" {
		parts = append(parts, "Specialization domain: "+c.Domain)
	}
	if len(c.Skills) > 0 {
		parts = append(parts, "Technical skills: "+strings.Join(c.Skills, ", "))
	}
	if c.ExperienceYears > 0 {
		parts = append(parts, fmt.Sprintf("Professional experience: %d years", c.ExperienceYears))
	}

	switch {
	case c.Degree != "" && c.GraduationYear > 0:
		parts = append(parts, fmt.Sprintf("Educational background: %s graduate from %d", c.Degree, c.GraduationYear))
	case c.Degree != "":
		parts = append(parts, "Educational background: "+c.Degree)
	case c.GraduationYear > 0:
		parts = append(parts, "Graduation year: "+strconv.Itoa(c.GraduationYear))
	}

	if c.Department != "" {
		parts = append(parts, "Department: "+c.Department)
	}
	if c.Industry != "" {
		parts = append(parts, "Industry: "+c.Industry)
	}
	if len(c.PreviousCompanies) > 0 {
		parts = append(parts, "Previous companies: "+strings.Join(c.PreviousCompanies, ", "))
	}
	if c.Location != "" {
		parts = append(parts, "Location: "+c.Location)
	}
	if c.Bio != "" {
		parts = append(parts, "Bio: "+c.Bio)
	}

	return strings.Join(parts, ". ")
}

// SharedSkills returns the candidate skills also present in skills, compared case-insensitively.
func (c *Candidate) SharedSkills(skills []string) []string {
	if c == nil || len(c.Skills) == 0 || len(skills) == 0 {
		return nil
	}

	wanted := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if key := foldKey(s); key != "" {
			wanted[key] = struct{}{}
		}
	}

	var shared []string
	seen := make(map[string]struct{})
	for _, s := range c.Skills {
		key := foldKey(s)
		if _, ok := wanted[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		shared = append(shared, s)
	}
	return shared
}

// CleanList trims entries and drops blanks and case-insensitive duplicates.
func CleanList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := foldKey(item)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// ContainsFold reports whether needle is a case-insensitive substring of haystack.
// Blank values never match.
func ContainsFold(haystack, needle string) bool {
	haystack = foldKey(haystack)
	needle = foldKey(needle)
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(haystack, needle)
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
