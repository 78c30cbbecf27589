// Package scoring combines retrieval similarity with rule-based bonuses into a match score.
package scoring

import (
	"math"

	"github.com/spigell/alumni-referrer/internal/alumni"
)

// Component names used in Breakdown.Map and candidate components.
const (
	ComponentSimilarity   = "similarity"
	ComponentOrganization = "organization"
	ComponentRole         = "role"
	ComponentDomain       = "domain"
	ComponentSkills       = "skills"
	ComponentGraduation   = "graduation"
	ComponentExperience   = "experience"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights replaces every weight, threshold and clamp setting.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithThreshold sets the minimum score a candidate needs to be kept.
func WithThreshold(threshold float64) Option {
	return func(s *Scorer) {
		s.weights.Threshold = threshold
	}
}

// WithClamp toggles clamping of the total to [0,1].
func WithClamp(clamp bool) Option {
	return func(s *Scorer) {
		s.weights.Clamp = clamp
	}
}

// Breakdown is the per-component contribution to one candidate score.
type Breakdown struct {
	Similarity   float64
	Organization float64
	Role         float64
	Domain       float64
	Skills       float64
	Graduation   float64
	Experience   float64
	// Total is the sum of the components, clamped to [0,1] when clamping is on.
	Total float64
}

// Map returns the non-zero components keyed by component name.
func (b Breakdown) Map() map[string]float64 {
	components := map[string]float64{
		ComponentSimilarity:   b.Similarity,
		ComponentOrganization: b.Organization,
		ComponentRole:         b.Role,
		ComponentDomain:       b.Domain,
		ComponentSkills:       b.Skills,
		ComponentGraduation:   b.Graduation,
		ComponentExperience:   b.Experience,
	}
	for name, value := range components {
		if value == 0 {
			delete(components, name)
		}
	}
	return components
}

// Scorer computes composite match scores. It holds no per-search state.
type Scorer struct {
	weights Weights
}

// NewScorer returns a Scorer with DefaultWeights and the given options applied.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the weights the scorer uses.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score is pure: it reads the profile and candidate and returns the breakdown.
func (s *Scorer) Score(profile *alumni.QueryProfile, candidate *alumni.Candidate) Breakdown {
	var b Breakdown
	if candidate == nil {
		return b
	}
	if profile == nil {
		profile = &alumni.QueryProfile{}
	}
	w := s.weights

	b.Similarity = w.SimilarityWeight * candidate.Similarity

	if matchesAny(candidate.Organization, profile.TargetOrganizations) {
		b.Organization = w.OrganizationBonus
	}
	if matchesAny(candidate.Title, profile.TargetRoles) {
		b.Role = w.RoleBonus
	}
	if matchesAny(candidate.Domain, profile.DomainTargets()) {
		b.Domain = w.DomainBonus
	}

	if shared := len(candidate.SharedSkills(profile.Skills)); shared > 0 {
		b.Skills = math.Min(float64(shared)*w.SkillIncrement, w.SkillCap)
	}

	if profile.GraduationYear > 0 && candidate.GraduationYear > 0 {
		diff := candidate.GraduationYear - profile.GraduationYear
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff <= graduationNearYears:
			b.Graduation = w.GraduationNearBonus
		case diff <= graduationMidYears:
			b.Graduation = w.GraduationMidBonus
		case diff > graduationDistantYears:
			b.Graduation = w.GraduationDistantPenalty
		}
	}

	if candidate.ExperienceYears >= experienceMinYears && candidate.ExperienceYears <= experienceMaxYears {
		b.Experience = w.ExperienceBonus
	}

	total := b.Similarity + b.Organization + b.Role + b.Domain + b.Skills + b.Graduation + b.Experience
	if w.Clamp {
		total = math.Max(0, math.Min(1, total))
	}
	b.Total = total

	return b
}

// Apply scores every candidate in place and drops those strictly below the threshold.
// It returns the number of kept and dropped candidates.
func (s *Scorer) Apply(profile *alumni.QueryProfile, candidates *alumni.Candidates) (int, int) {
	if candidates == nil {
		return 0, 0
	}
	for _, candidate := range candidates.Items {
		b := s.Score(profile, candidate)
		candidate.Score = b.Total
		candidate.Components = b.Map()
	}

	threshold := s.weights.Threshold
	dropped := candidates.Filter(func(candidate *alumni.Candidate) bool {
		return candidate.Score >= threshold
	})
	return candidates.Len(), len(dropped)
}

// matchesAny reports whether value contains any target, ignoring case.
func matchesAny(value string, targets []string) bool {
	for _, target := range targets {
		if alumni.ContainsFold(value, target) {
			return true
		}
	}
	return false
}
