package alumni

import (
	"fmt"
	"strings"
)

// FallbackQuery is used when a profile carries nothing to search for.
const FallbackQuery = "experienced alumni professionals with relevant experience and skills for referral opportunities"

const (
	maxQuerySkills        = 5
	maxQueryInterests     = 3
	maxQueryOrganizations = 3
	maxQueryRoles         = 2
)

// QueryProfile describes the student (or search form) candidates are ranked against.
type QueryProfile struct {
	Name                string   `json:"name,omitempty" mapstructure:"name"`
	CurrentYear         int      `json:"current_year,omitempty" mapstructure:"current-year"`
	Degree              string   `json:"degree,omitempty" mapstructure:"degree"`
	Department          string   `json:"department,omitempty" mapstructure:"department"`
	Interests           []string `json:"interests,omitempty" mapstructure:"interests"`
	Skills              []string `json:"skills,omitempty" mapstructure:"skills"`
	TargetOrganizations []string `json:"target_companies,omitempty" mapstructure:"target-companies"`
	TargetRoles         []string `json:"target_roles,omitempty" mapstructure:"target-roles"`
	Domains             []string `json:"domains,omitempty" mapstructure:"domains"`
	// GraduationYear anchors graduation proximity scoring. Zero disables it.
	GraduationYear int `json:"graduation_year,omitempty" mapstructure:"graduation-year"`
}

// Normalize trims every list and drops blanks.
func (p *QueryProfile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Degree = strings.TrimSpace(p.Degree)
	p.Department = strings.TrimSpace(p.Department)
	p.Interests = CleanList(p.Interests)
	p.Skills = CleanList(p.Skills)
	p.TargetOrganizations = CleanList(p.TargetOrganizations)
	p.TargetRoles = CleanList(p.TargetRoles)
	p.Domains = CleanList(p.Domains)
	if p.GraduationYear < 0 {
		p.GraduationYear = 0
	}
}

// IsEmpty reports whether the profile has no query-building input.
func (p *QueryProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(CleanList(p.Skills)) == 0 &&
		len(CleanList(p.Interests)) == 0 &&
		len(CleanList(p.TargetOrganizations)) == 0 &&
		len(CleanList(p.TargetRoles)) == 0 &&
		len(CleanList(p.Domains)) == 0 &&
		strings.TrimSpace(p.Department) == "" &&
		p.GraduationYear == 0
}

// DomainTargets returns the domains and interests matched against a candidate domain.
func (p *QueryProfile) DomainTargets() []string {
	if p == nil {
		return nil
	}
	return CleanList(append(append([]string(nil), p.Domains...), p.Interests...))
}

// QueryText renders the similarity query for the profile, falling back to FallbackQuery.
func (p *QueryProfile) QueryText() string {
	if p.IsEmpty() {
		return FallbackQuery
	}

	var parts []string
	if orgs := head(CleanList(p.TargetOrganizations), maxQueryOrganizations); len(orgs) > 0 {
		parts = append(parts, "alumni working at "+strings.Join(orgs, ", "))
	}
	if roles := head(CleanList(p.TargetRoles), maxQueryRoles); len(roles) > 0 {
		parts = append(parts, "professionals in "+strings.Join(roles, ", ")+" positions")
	}
	if domains := CleanList(p.Domains); len(domains) > 0 {
		parts = append(parts, "specialists in "+strings.Join(domains, ", "))
	}
	if skills := head(CleanList(p.Skills), maxQuerySkills); len(skills) > 0 {
		parts = append(parts, "skills: "+strings.Join(skills, " "))
	}
	if interests := head(CleanList(p.Interests), maxQueryInterests); len(interests) > 0 {
		parts = append(parts, "interests: "+strings.Join(interests, " "))
	}
	if dept := strings.TrimSpace(p.Department); dept != "" {
		parts = append(parts, "department: "+dept)
	}
	if p.GraduationYear > 0 {
		parts = append(parts, fmt.Sprintf("graduates from around %d", p.GraduationYear))
	}

	return strings.Join(parts, "; ")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
