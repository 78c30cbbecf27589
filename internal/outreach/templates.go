package outreach

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/alumni-referrer/internal/alumni"
)

//go:embed templates/*.txt
var templateFS embed.FS

//go:embed prompt.md
var promptTemplate string

const (
	defaultStudentName = "Student"
	defaultAlumniName  = "Alumni"
	defaultCompany     = "your company"
	defaultRole        = "your role"
	defaultTargetRole  = "Software Engineer"
	defaultDegree      = "Computer Science"
	defaultInterest    = "technology"
	defaultStudentYear = 3
)

// briefMarkers are the substrings that keep a line in the brief variant.
var briefMarkers = []string{"Hi", "hope", "interested", "referral", "Best"}

func loadTemplate(messageType string) (string, error) {
	data, err := templateFS.ReadFile("templates/" + messageType + ".txt")
	if err != nil {
		return "", fmt.Errorf("load %s template: %w", messageType, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func templateVariables(req Request, sender string) map[string]string {
	profile := req.Profile
	if profile == nil {
		profile = &alumni.QueryProfile{}
	}
	candidate := req.Candidate

	student := firstNonBlank(profile.Name, sender, defaultStudentName)

	interests := alumni.CleanList(profile.Interests)
	if len(interests) > 2 {
		interests = interests[:2]
	}
	interest := strings.Join(interests, ", ")
	if interest == "" {
		interest = defaultInterest
	}

	year := profile.CurrentYear
	if year <= 0 {
		year = defaultStudentYear
	}

	graduation := "recent"
	if candidate.GraduationYear > 0 {
		graduation = strconv.Itoa(candidate.GraduationYear)
	}

	return map[string]string{
		"student_name":    student,
		"alumni_name":     firstNonBlank(candidate.Name, defaultAlumniName),
		"alumni_company":  firstNonBlank(req.TargetOrganization, candidate.Organization, defaultCompany),
		"alumni_role":     firstNonBlank(candidate.Title, defaultRole),
		"target_role":     targetRole(req),
		"student_degree":  firstNonBlank(profile.Degree, defaultDegree),
		"graduation_year": graduation,
		"common_interest": interest,
		"student_year":    ordinal(year),
	}
}

func render(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func applyVariant(message, variant string) string {
	switch variant {
	case VariantBrief:
		lines := strings.Split(message, "\n")
		kept := make([]string, 0, len(lines))
		keepNext := false
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if keepNext {
				kept = append(kept, line)
				keepNext = false
				continue
			}
			if containsAny(line, briefMarkers) {
				kept = append(kept, line)
				// the signature follows the closing line
				keepNext = strings.Contains(line, "Best")
			}
		}
		return strings.Join(kept, "\n")
	case VariantFriendly:
		message = strings.ReplaceAll(message, "I hope this message finds you well.", "I hope you're doing well and enjoying your role!")
		message = strings.ReplaceAll(message, "Best regards,", "Looking forward to hearing from you!\n\nBest,")
		return message
	default:
		return message
	}
}

func targetRole(req Request) string {
	if role := strings.TrimSpace(req.TargetRole); role != "" {
		return role
	}
	if req.Profile != nil {
		if roles := alumni.CleanList(req.Profile.TargetRoles); len(roles) > 0 {
			return roles[0]
		}
	}
	return defaultTargetRole
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
