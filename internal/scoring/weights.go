package scoring

import (
	"fmt"
	"math"
)

// Weights are the named components of the composite score.
type Weights struct {
	SimilarityWeight         float64 `mapstructure:"similarity-weight" json:"similarity_weight"`
	OrganizationBonus        float64 `mapstructure:"organization-bonus" json:"organization_bonus"`
	RoleBonus                float64 `mapstructure:"role-bonus" json:"role_bonus"`
	DomainBonus              float64 `mapstructure:"domain-bonus" json:"domain_bonus"`
	SkillIncrement           float64 `mapstructure:"skill-increment" json:"skill_increment"`
	SkillCap                 float64 `mapstructure:"skill-cap" json:"skill_cap"`
	GraduationNearBonus      float64 `mapstructure:"graduation-near-bonus" json:"graduation_near_bonus"`
	GraduationMidBonus       float64 `mapstructure:"graduation-mid-bonus" json:"graduation_mid_bonus"`
	GraduationDistantPenalty float64 `mapstructure:"graduation-distant-penalty" json:"graduation_distant_penalty"`
	ExperienceBonus          float64 `mapstructure:"experience-bonus" json:"experience_bonus"`
	Threshold                float64 `mapstructure:"threshold" json:"threshold"`
	Clamp                    bool    `mapstructure:"clamp" json:"clamp"`
}

const (
	graduationNearYears    = 2
	graduationMidYears     = 5
	graduationDistantYears = 10
	experienceMinYears     = 3
	experienceMaxYears     = 15
)

// DefaultWeights returns the default scoring weights.
func DefaultWeights() Weights {
	return Weights{
		SimilarityWeight:    0.4,
		OrganizationBonus:   0.2,
		RoleBonus:           0.15,
		DomainBonus:         0.15,
		SkillIncrement:      0.1,
		SkillCap:            0.3,
		GraduationNearBonus: 0.1,
		GraduationMidBonus:  0.05,
		ExperienceBonus:     0.05,
		Threshold:           0.3,
		Clamp:               true,
	}
}

// Validate rejects weights that would break score monotonicity.
func (w Weights) Validate() error {
	bonuses := map[string]float64{
		"similarity-weight":     w.SimilarityWeight,
		"organization-bonus":    w.OrganizationBonus,
		"role-bonus":            w.RoleBonus,
		"domain-bonus":          w.DomainBonus,
		"skill-increment":       w.SkillIncrement,
		"skill-cap":             w.SkillCap,
		"graduation-near-bonus": w.GraduationNearBonus,
		"graduation-mid-bonus":  w.GraduationMidBonus,
		"experience-bonus":      w.ExperienceBonus,
	}
	for name, value := range bonuses {
		if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("scoring weight %s must be a non-negative number, got %v", name, value)
		}
	}
	if w.GraduationDistantPenalty > 0 || math.IsNaN(w.GraduationDistantPenalty) {
		return fmt.Errorf("scoring weight graduation-distant-penalty must be zero or negative, got %v", w.GraduationDistantPenalty)
	}
	if math.IsNaN(w.Threshold) {
		return fmt.Errorf("scoring threshold must be a number")
	}
	return nil
}
