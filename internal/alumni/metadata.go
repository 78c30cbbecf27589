package alumni

import (
	"sort"

	"github.com/mitchellh/mapstructure"
)

// metadataAliases maps alternative metadata keys to the canonical candidate keys.
var metadataAliases = map[string]string{
	"_id":              "id",
	"alumni_id":        "id",
	"company":          "current_company",
	"organization":     "current_company",
	"role":             "current_role",
	"title":            "current_role",
	"position":         "current_role",
	"current_position": "current_role",
	"linkedin":         "linkedin_url",
	"seniority":        "seniority_level",
}

// FromMetadata decodes store metadata into a candidate.
// Values of the wrong type are dropped and their keys returned; missing fields keep zero values.
func FromMetadata(md map[string]any) (*Candidate, []string) {
	candidate := &Candidate{}
	if len(md) == 0 {
		return candidate, nil
	}

	canonical := canonicalizeMetadata(md)
	if err := decodeMetadata(canonical, candidate); err == nil {
		candidate.Normalize()
		return candidate, nil
	}

	// Retry key by key so that one bad value does not discard the whole record.
	candidate = &Candidate{}
	keys := make([]string, 0, len(canonical))
	for key := range canonical {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var dropped []string
	for _, key := range keys {
		var scratch Candidate
		single := map[string]any{key: canonical[key]}
		if err := decodeMetadata(single, &scratch); err != nil {
			dropped = append(dropped, key)
			continue
		}
		if err := decodeMetadata(single, candidate); err != nil {
			dropped = append(dropped, key)
		}
	}

	candidate.Normalize()
	return candidate, dropped
}

// ToMetadata renders the stored attributes of a candidate under canonical keys.
func ToMetadata(c *Candidate) map[string]any {
	if c == nil {
		return map[string]any{}
	}
	md := map[string]any{
		"id":                    c.ID,
		"name":                  c.Name,
		"current_company":       c.Organization,
		"current_role":          c.Title,
		"domain":                c.Domain,
		"department":            c.Department,
		"degree":                c.Degree,
		"graduation_year":       c.GraduationYear,
		"experience_years":      c.ExperienceYears,
		"skills":                append([]string(nil), c.Skills...),
		"location":              c.Location,
		"industry":              c.Industry,
		"seniority_level":       c.Seniority,
		"hiring_authority":      c.HiringAuthority,
		"response_rate":         c.ResponseRate,
		"referral_success_rate": c.ReferralSuccessRate,
		"email":                 c.Email,
		"linkedin_url":          c.LinkedInURL,
		"previous_companies":    append([]string(nil), c.PreviousCompanies...),
		"bio":                   c.Bio,
	}
	return md
}

func canonicalizeMetadata(md map[string]any) map[string]any {
	out := make(map[string]any, len(md))
	for key, value := range md {
		if _, isAlias := metadataAliases[key]; isAlias {
			continue
		}
		out[key] = value
	}
	for alias, key := range metadataAliases {
		value, ok := md[alias]
		if !ok || value == nil {
			continue
		}
		if existing, present := out[key]; present && existing != nil && existing != "" {
			continue
		}
		out[key] = value
	}
	for key, value := range out {
		if value == nil {
			delete(out, key)
		}
	}
	return out
}

func decodeMetadata(md map[string]any, target *Candidate) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           target,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(md)
}
