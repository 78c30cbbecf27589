package filtering

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/alumni-referrer/internal/alumni"
)

// Criteria holds the optional structured filter dimensions of a search.
// A nil pointer or empty value means the dimension is not requested.
type Criteria struct {
	Organizations     []string `json:"companies,omitempty"`
	Department        string   `json:"department,omitempty"`
	Domain            string   `json:"domain,omitempty"`
	Role              string   `json:"role,omitempty"`
	MinGraduationYear *int     `json:"min_graduation_year,omitempty"`
	MaxGraduationYear *int     `json:"max_graduation_year,omitempty"`
	MinResponseRate   *float64 `json:"min_response_rate,omitempty"`
	HiringAuthority   *bool    `json:"hiring_authority,omitempty"`
	// Skills only steer the database stream; they never drop candidates.
	Skills []string `json:"skills,omitempty"`
}

// IsEmpty reports whether no hard filter dimension is requested.
func (c *Criteria) IsEmpty() bool {
	if c == nil {
		return true
	}
	return len(c.Organizations) == 0 &&
		c.Department == "" &&
		c.Domain == "" &&
		c.Role == "" &&
		c.MinGraduationYear == nil &&
		c.MaxGraduationYear == nil &&
		c.MinResponseRate == nil &&
		c.HiringAuthority == nil
}

// Match reports whether the candidate satisfies every requested dimension.
func (c *Criteria) Match(candidate *alumni.Candidate) bool {
	if candidate == nil {
		return false
	}
	if c == nil {
		return true
	}
	return matchOrganizations(c, candidate) &&
		matchDepartment(c, candidate) &&
		matchDomain(c, candidate) &&
		matchRole(c, candidate) &&
		matchGraduationYears(c, candidate) &&
		matchResponseRate(c, candidate) &&
		matchHiringAuthority(c, candidate)
}

func matchOrganizations(c *Criteria, candidate *alumni.Candidate) bool {
	if len(c.Organizations) == 0 {
		return true
	}
	for _, org := range c.Organizations {
		if alumni.ContainsFold(candidate.Organization, org) {
			return true
		}
	}
	return false
}

func matchDepartment(c *Criteria, candidate *alumni.Candidate) bool {
	if c.Department == "" {
		return true
	}
	want := strings.ToLower(strings.TrimSpace(c.Department))
	have := strings.ToLower(strings.TrimSpace(candidate.Department))
	return have != "" && strings.HasPrefix(have, want)
}

func matchDomain(c *Criteria, candidate *alumni.Candidate) bool {
	return c.Domain == "" || alumni.ContainsFold(candidate.Domain, c.Domain)
}

func matchRole(c *Criteria, candidate *alumni.Candidate) bool {
	return c.Role == "" || alumni.ContainsFold(candidate.Title, c.Role)
}

func matchGraduationYears(c *Criteria, candidate *alumni.Candidate) bool {
	if c.MinGraduationYear == nil && c.MaxGraduationYear == nil {
		return true
	}
	if candidate.GraduationYear == 0 {
		return false
	}
	if c.MinGraduationYear != nil && candidate.GraduationYear < *c.MinGraduationYear {
		return false
	}
	if c.MaxGraduationYear != nil && candidate.GraduationYear > *c.MaxGraduationYear {
		return false
	}
	return true
}

func matchResponseRate(c *Criteria, candidate *alumni.Candidate) bool {
	return c.MinResponseRate == nil || candidate.ResponseRate >= *c.MinResponseRate
}

func matchHiringAuthority(c *Criteria, candidate *alumni.Candidate) bool {
	return c.HiringAuthority == nil || candidate.HiringAuthority == *c.HiringAuthority
}

// ParseCriteria interprets loosely typed filter input, for example decoded JSON.
// Every value that cannot be interpreted produces an ErrInvalidFilter entry and its
// dimension is ignored while the remaining dimensions still apply.
func ParseCriteria(raw map[string]any) (Criteria, []error) {
	var (
		criteria Criteria
		errs     []error
	)

	invalid := func(key string, value any, reason string) {
		errs = append(errs, fmt.Errorf("%w: %s=%v: %s", ErrInvalidFilter, key, value, reason))
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var rangeMin, rangeMax, explicitMin, explicitMax *int
	for _, key := range keys {
		value := raw[key]
		if value == nil {
			continue
		}

		switch key {
		case "companies", "company":
			orgs, ok := coerceStrings(value)
			if !ok {
				invalid(key, value, "expected a string or a list of strings")
				continue
			}
			criteria.Organizations = alumni.CleanList(append(criteria.Organizations, orgs...))
		case "department", "domain", "role":
			s, ok := coerceString(value)
			if !ok {
				invalid(key, value, "expected a string")
				continue
			}
			switch key {
			case "department":
				criteria.Department = s
			case "domain":
				criteria.Domain = s
			default:
				criteria.Role = s
			}
		case "min_graduation_year", "max_graduation_year":
			year, ok := coerceYear(value)
			if !ok {
				invalid(key, value, "expected a year")
				continue
			}
			if key == "min_graduation_year" {
				explicitMin = &year
			} else {
				explicitMax = &year
			}
		case "graduation_year_range":
			bounds, ok := coerceList(value)
			if !ok || len(bounds) != 2 {
				invalid(key, value, "expected [min, max]")
				continue
			}
			minYear, okMin := coerceYear(bounds[0])
			maxYear, okMax := coerceYear(bounds[1])
			if !okMin || !okMax {
				invalid(key, value, "expected [min, max] years")
				continue
			}
			rangeMin, rangeMax = &minYear, &maxYear
		case "min_response_rate":
			rate := coerceFloat(value)
			if math.IsNaN(rate) || rate < 0 || rate > 1 {
				invalid(key, value, "expected a number between 0 and 1")
				continue
			}
			criteria.MinResponseRate = &rate
		case "hiring_authority":
			authority, ok := coerceBool(value)
			if !ok {
				invalid(key, value, "expected a boolean")
				continue
			}
			criteria.HiringAuthority = &authority
		case "skills":
			skills, ok := coerceStrings(value)
			if !ok {
				invalid(key, value, "expected a string or a list of strings")
				continue
			}
			criteria.Skills = alumni.CleanList(skills)
		default:
			invalid(key, value, "unknown filter")
		}
	}

	criteria.MinGraduationYear = firstInt(explicitMin, rangeMin)
	criteria.MaxGraduationYear = firstInt(explicitMax, rangeMax)
	if criteria.MinGraduationYear != nil && criteria.MaxGraduationYear != nil &&
		*criteria.MinGraduationYear > *criteria.MaxGraduationYear {
		invalid("graduation_years",
			fmt.Sprintf("%d..%d", *criteria.MinGraduationYear, *criteria.MaxGraduationYear),
			"minimum is greater than maximum")
		criteria.MinGraduationYear = nil
		criteria.MaxGraduationYear = nil
	}

	return criteria, errs
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func coerceBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	case float64:
		if val == 0 || val == 1 {
			return val == 1, true
		}
	case int:
		if val == 0 || val == 1 {
			return val == 1, true
		}
	}
	return false, false
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceYear(v any) (int, bool) {
	f := coerceFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 1900 || f > 2100 {
		return 0, false
	}
	return int(f), true
}

// coerceList accepts decoded JSON arrays as well as typed Go slices.
func coerceList(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []int:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, true
	case []float64:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func coerceString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case fmt.Stringer:
		return strings.TrimSpace(val.String()), true
	default:
		return "", false
	}
}

func coerceStrings(v any) ([]string, bool) {
	switch val := v.(type) {
	case string:
		return strings.Split(val, ","), true
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := coerceString(item)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
