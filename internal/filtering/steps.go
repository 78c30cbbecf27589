package filtering

import (
	"context"
	"strconv"
	"strings"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"go.uber.org/zap"
)

const (
	OrganizationsFilterName   = "organizations"
	DepartmentFilterName      = "department"
	DomainFilterName          = "domain"
	RoleFilterName            = "role"
	GraduationYearsFilterName = "graduation_years"
	ResponseRateFilterName    = "response_rate"
	HiringAuthorityFilterName = "hiring_authority"
)

// dimensionFilter drops candidates that do not satisfy one criteria dimension.
type dimensionFilter struct {
	name      string
	requested func(*Criteria) bool
	match     func(*Criteria, *alumni.Candidate) bool
	details   func(*Criteria) map[string]string

	disabled bool
	reason   string
	criteria *Criteria
	last     *Step
}

// Default returns a fresh chain holding every criteria dimension in evaluation order.
func Default() []Filter {
	return []Filter{
		NewOrganizations(),
		NewDepartment(),
		NewDomain(),
		NewRole(),
		NewGraduationYears(),
		NewResponseRate(),
		NewHiringAuthority(),
	}
}

// NewOrganizations keeps candidates whose organization contains any requested organization.
func NewOrganizations() Filter {
	return &dimensionFilter{
		name:      OrganizationsFilterName,
		requested: func(c *Criteria) bool { return len(c.Organizations) > 0 },
		match:     matchOrganizations,
		details: func(c *Criteria) map[string]string {
			return map[string]string{"companies": strings.Join(c.Organizations, ",")}
		},
	}
}

// NewDepartment keeps candidates whose department equals or starts with the requested one.
func NewDepartment() Filter {
	return &dimensionFilter{
		name:      DepartmentFilterName,
		requested: func(c *Criteria) bool { return c.Department != "" },
		match:     matchDepartment,
		details: func(c *Criteria) map[string]string {
			return map[string]string{"department": c.Department}
		},
	}
}

func NewDomain() Filter {
	return &dimensionFilter{
		name:      DomainFilterName,
		requested: func(c *Criteria) bool { return c.Domain != "" },
		match:     matchDomain,
		details: func(c *Criteria) map[string]string {
			return map[string]string{"domain": c.Domain}
		},
	}
}

func NewRole() Filter {
	return &dimensionFilter{
		name:      RoleFilterName,
		requested: func(c *Criteria) bool { return c.Role != "" },
		match:     matchRole,
		details: func(c *Criteria) map[string]string {
			return map[string]string{"role": c.Role}
		},
	}
}

// NewGraduationYears keeps candidates graduating inside the inclusive requested range.
func NewGraduationYears() Filter {
	return &dimensionFilter{
		name:      GraduationYearsFilterName,
		requested: func(c *Criteria) bool { return c.MinGraduationYear != nil || c.MaxGraduationYear != nil },
		match:     matchGraduationYears,
		details: func(c *Criteria) map[string]string {
			details := map[string]string{}
			if c.MinGraduationYear != nil {
				details["min"] = strconv.Itoa(*c.MinGraduationYear)
			}
			if c.MaxGraduationYear != nil {
				details["max"] = strconv.Itoa(*c.MaxGraduationYear)
			}
			return details
		},
	}
}

func NewResponseRate() Filter {
	return &dimensionFilter{
		name:      ResponseRateFilterName,
		requested: func(c *Criteria) bool { return c.MinResponseRate != nil },
		match:     matchResponseRate,
		details: func(c *Criteria) map[string]string {
			return map[string]string{"min_response_rate": strconv.FormatFloat(*c.MinResponseRate, 'f', 2, 64)}
		},
	}
}

func NewHiringAuthority() Filter {
	return &dimensionFilter{
		name:      HiringAuthorityFilterName,
		requested: func(c *Criteria) bool { return c.HiringAuthority != nil },
		match:     matchHiringAuthority,
		details: func(c *Criteria) map[string]string {
			return map[string]string{"hiring_authority": strconv.FormatBool(*c.HiringAuthority)}
		},
	}
}

func (f *dimensionFilter) Name() string { return f.name }

func (f *dimensionFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *dimensionFilter) IsEnabled() bool { return !f.disabled }

func (f *dimensionFilter) Validate(criteria *Criteria) error {
	f.criteria = criteria
	if criteria == nil || !f.requested(criteria) {
		f.Disable(notRequestedReason)
	}
	return nil
}

func (f *dimensionFilter) Apply(_ context.Context, deps Deps, c *alumni.Candidates) (*alumni.Candidates, Step, error) {
	initial := c.Len()
	if f.criteria == nil || !f.requested(f.criteria) {
		step := Step{Initial: initial, Dropped: 0, Left: initial}
		f.last = &step
		return c, step, nil
	}

	criteria := f.criteria
	excluded := c.Filter(func(candidate *alumni.Candidate) bool {
		return f.match(criteria, candidate)
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding candidates",
			zap.String("filter", f.name),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	step := Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}
	f.last = &step
	return c, step, nil
}

func (f *dimensionFilter) Status() Status {
	status := Status{Name: f.name, Enabled: f.IsEnabled(), Reason: f.reason, Step: f.last}
	if f.criteria != nil && f.requested(f.criteria) {
		status.Details = f.details(f.criteria)
	}
	return status
}
