// Package referral estimates how promising an alumnus is as a referral path for a student.
package referral

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spigell/alumni-referrer/internal/alumni"
)

const (
	StrengthStrong   = "Strong"
	StrengthModerate = "Moderate"
	StrengthWeak     = "Weak"

	PlatformEmail    = "Email"
	PlatformLinkedIn = "LinkedIn"
)

const (
	departmentStrength = 0.3
	nearYearsStrength  = 0.2
	farYearsStrength   = 0.1
	nearYears          = 5
	farYears           = 10
	skillStrength      = 0.1
	skillStrengthCap   = 0.3
	targetOrgStrength  = 0.4

	strongThreshold   = 0.6
	moderateThreshold = 0.3

	responseWeight        = 0.3
	referralSuccessWeight = 0.2
	hiringAuthorityBonus  = 0.2
	targetOrgBonus        = 0.2
	seniorityBonus        = 0.1

	highResponseRate = 0.7
	lowResponseRate  = 0.3

	personalizationStep = 0.2
)

// seniorLevels raise the success probability.
var seniorLevels = map[string]struct{}{
	"senior":    {},
	"executive": {},
	"director":  {},
	"manager":   {},
}

// careerLevels add the career growth talking point.
var careerLevels = map[string]struct{}{
	"senior":    {},
	"executive": {},
	"director":  {},
}

// Timeline is the suggested pacing of an outreach.
type Timeline struct {
	InitialContact       string `json:"initial_contact"`
	FollowUp             string `json:"follow_up"`
	RelationshipBuilding string `json:"relationship_building"`
	ReferralRequest      string `json:"referral_request"`
}

// Approach describes how to reach out.
type Approach struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Timing    string `json:"timing"`
	FollowUp  string `json:"follow_up"`
	Tone      string `json:"tone"`
}

// SendRecommendations says when and where to send the first message.
type SendRecommendations struct {
	BestTime         string   `json:"best_time"`
	Platform         string   `json:"platform"`
	FollowUpStrategy string   `json:"follow_up_strategy"`
	Tips             []string `json:"tips"`
}

// Path is the referral analysis of one student and alumnus pair.
type Path struct {
	CandidateID          string              `json:"alumni_id"`
	CandidateName        string              `json:"alumni_name"`
	Description          string              `json:"path_description"`
	ConnectionStrength   float64             `json:"connection_strength"`
	StrengthLabel        string              `json:"connection_label"`
	SuccessProbability   float64             `json:"success_probability"`
	PersonalizationScore float64             `json:"personalization_score"`
	Timeline             Timeline            `json:"recommended_timeline"`
	TalkingPoints        []string            `json:"key_talking_points"`
	Approach             Approach            `json:"recommended_approach"`
	Send                 SendRecommendations `json:"send_recommendations"`
	PreparationSteps     []string            `json:"preparation_steps"`
	RecommendationScore  int                 `json:"recommendation_score"`
}

type Option func(*Analyzer)

// WithClock replaces the clock used to infer the student graduation year.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// Analyzer computes referral paths. It holds no per-request state.
type Analyzer struct {
	now func() time.Time
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the referral path for profile and candidate.
func (a *Analyzer) Analyze(profile *alumni.QueryProfile, candidate *alumni.Candidate) (*Path, error) {
	if candidate == nil {
		return nil, fmt.Errorf("%w: alumni is required", ErrInvalidInput)
	}
	if profile == nil {
		profile = &alumni.QueryProfile{}
	}

	strength := a.ConnectionStrength(profile, candidate)
	probability := SuccessProbability(profile, candidate)
	path := &Path{
		CandidateID:          candidate.ID,
		CandidateName:        candidate.Name,
		Description:          describe(candidate),
		ConnectionStrength:   strength,
		StrengthLabel:        StrengthLabel(strength),
		SuccessProbability:   probability,
		PersonalizationScore: PersonalizationScore(profile, candidate),
		Timeline:             SuggestTimeline(candidate),
		TalkingPoints:        TalkingPoints(profile, candidate),
		Approach:             recommendedApproach(candidate),
		Send:                 Recommendations(candidate),
		PreparationSteps:     preparationSteps(candidate),
	}
	path.RecommendationScore = recommendationScore(path.StrengthLabel, probability)
	return path, nil
}

// AnalyzeAll returns the paths for every candidate ordered by recommendation score.
// Ties keep the input order.
func (a *Analyzer) AnalyzeAll(profile *alumni.QueryProfile, candidates []*alumni.Candidate) []*Path {
	paths := make([]*Path, 0, len(candidates))
	for _, c := range candidates {
		path, err := a.Analyze(profile, c)
		if err != nil {
			continue
		}
		paths = append(paths, path)
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].RecommendationScore > paths[j].RecommendationScore
	})
	return paths
}

// ConnectionStrength sums department, graduation proximity, shared skills and target organization factors.
func (a *Analyzer) ConnectionStrength(profile *alumni.QueryProfile, candidate *alumni.Candidate) float64 {
	var score float64

	if sameFold(profile.Department, candidate.Department) {
		score += departmentStrength
	}

	if candidate.GraduationYear > 0 {
		studentYear := profile.GraduationYear
		if studentYear <= 0 {
			studentYear = a.now().Year()
		}
		diff := studentYear - candidate.GraduationYear
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff <= nearYears:
			score += nearYearsStrength
		case diff <= farYears:
			score += farYearsStrength
		}
	}

	if shared := len(candidate.SharedSkills(profile.Skills)); shared > 0 {
		score += math.Min(float64(shared)*skillStrength, skillStrengthCap)
	}

	if targetsOrganization(profile, candidate) {
		score += targetOrgStrength
	}

	return round(score)
}

// StrengthLabel maps a connection strength to Strong, Moderate or Weak.
func StrengthLabel(strength float64) string {
	switch {
	case strength >= strongThreshold:
		return StrengthStrong
	case strength >= moderateThreshold:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// SuccessProbability estimates the chance of a referral, capped at 1.
func SuccessProbability(profile *alumni.QueryProfile, candidate *alumni.Candidate) float64 {
	score := candidate.ResponseRate*responseWeight + candidate.ReferralSuccessRate*referralSuccessWeight
	if candidate.HiringAuthority {
		score += hiringAuthorityBonus
	}
	if targetsOrganization(profile, candidate) {
		score += targetOrgBonus
	}
	if _, ok := seniorLevels[strings.ToLower(strings.TrimSpace(candidate.Seniority))]; ok {
		score += seniorityBonus
	}
	return round(math.Min(score, 1))
}

// SuggestTimeline returns the outreach pacing adjusted by the alumnus response rate.
func SuggestTimeline(candidate *alumni.Candidate) Timeline {
	timeline := Timeline{
		InitialContact:       "Send within 1-2 days",
		FollowUp:             "Follow up after 1 week if no response",
		RelationshipBuilding: "2-3 weeks of light engagement",
		ReferralRequest:      "3-4 weeks after initial contact",
	}
	switch {
	case candidate.ResponseRate > highResponseRate:
		timeline.ReferralRequest = "2-3 weeks after initial contact"
	case candidate.ResponseRate < lowResponseRate:
		timeline.RelationshipBuilding = "4-6 weeks of consistent engagement"
		timeline.ReferralRequest = "6-8 weeks after initial contact"
	}
	return timeline
}

// TalkingPoints lists what the student and alumnus have in common.
func TalkingPoints(profile *alumni.QueryProfile, candidate *alumni.Candidate) []string {
	var points []string
	if sameFold(profile.Department, candidate.Department) {
		points = append(points, fmt.Sprintf("Fellow %s graduate", strings.TrimSpace(profile.Department)))
	}
	if shared := candidate.SharedSkills(profile.Skills); len(shared) > 0 {
		if len(shared) > 3 {
			shared = shared[:3]
		}
		points = append(points, "Shared expertise in "+strings.Join(shared, ", "))
	}
	if targetsOrganization(profile, candidate) {
		points = append(points, "Interest in working at "+candidate.Organization)
	}
	if _, ok := careerLevels[strings.ToLower(strings.TrimSpace(candidate.Seniority))]; ok {
		points = append(points, "Learning about career growth in the industry")
	}
	return points
}

// PersonalizationScore rates how much a message can be tailored, in steps of 0.2.
func PersonalizationScore(profile *alumni.QueryProfile, candidate *alumni.Candidate) float64 {
	var score float64
	if strings.TrimSpace(candidate.Email) != "" {
		score += personalizationStep
	}
	if strings.TrimSpace(candidate.LinkedInURL) != "" {
		score += personalizationStep
	}
	if sameFold(profile.Department, candidate.Department) {
		score += personalizationStep
	}
	if len(candidate.SharedSkills(profile.Skills)) > 0 {
		score += personalizationStep
	}
	if targetsOrganization(profile, candidate) {
		score += personalizationStep
	}
	return round(math.Min(score, 1))
}

// Recommendations picks the platform and adds response rate tips.
func Recommendations(candidate *alumni.Candidate) SendRecommendations {
	rec := SendRecommendations{
		BestTime:         "Tuesday-Thursday, 9 AM - 11 AM",
		Platform:         PlatformLinkedIn,
		FollowUpStrategy: "Wait 1 week, then send polite follow-up",
	}
	if strings.TrimSpace(candidate.Email) != "" {
		rec.Platform = PlatformEmail
		rec.Tips = append(rec.Tips, "Use professional email with clear subject line")
	} else {
		rec.Tips = append(rec.Tips, "Send LinkedIn connection request with personalized message")
	}
	switch {
	case candidate.ResponseRate > highResponseRate:
		rec.Tips = append(rec.Tips, "High response rate - likely to get quick reply")
	case candidate.ResponseRate < lowResponseRate:
		rec.Tips = append(rec.Tips, "Lower response rate - consider multiple touchpoints")
	}
	return rec
}

func recommendedApproach(candidate *alumni.Candidate) Approach {
	approach := Approach{
		Primary:   "LinkedIn Message",
		Secondary: "Email",
		Timing:    "Weekday mornings (9-11 AM)",
		FollowUp:  "After 1 week if no response",
		Tone:      "Professional but friendly",
	}
	if strings.TrimSpace(candidate.Email) != "" {
		approach.Primary, approach.Secondary = "Email", "LinkedIn Message"
	}
	switch {
	case candidate.ExperienceYears >= 10:
		approach.Tone = "Respectful and formal"
		approach.Timing = "Tuesday-Thursday mornings"
	case candidate.ExperienceYears <= 3:
		approach.Tone = "Casual and enthusiastic"
	}
	return approach
}

func preparationSteps(candidate *alumni.Candidate) []string {
	steps := []string{
		"Research the alumni's current company and recent news",
		"Review the job requirements for target roles",
		"Prepare a concise elevator pitch about yourself",
		"Update your resume and LinkedIn profile",
		"Prepare specific questions about the company culture",
	}
	domain := strings.ToLower(candidate.Domain)
	switch {
	case strings.Contains(domain, "engineering") || strings.Contains(domain, "technical"):
		steps = append(steps,
			"Prepare to discuss your technical projects and skills",
			"Review the company's tech stack and recent developments",
		)
	case strings.Contains(domain, "business") || strings.Contains(domain, "management"):
		steps = append(steps,
			"Prepare business-focused questions and examples",
			"Research the company's market position and strategy",
		)
	}
	return steps
}

func describe(candidate *alumni.Candidate) string {
	year := "Unknown"
	if candidate.GraduationYear > 0 {
		year = fmt.Sprint(candidate.GraduationYear)
	}
	return strings.Join([]string{
		orUnknown(candidate.Name, "Alumni"),
		year + " Graduate",
		orUnknown(candidate.Organization, "Unknown Company"),
		orUnknown(candidate.Title, "Unknown Role"),
		orUnknown(candidate.Domain, "Unknown Domain"),
	}, " - ")
}

func recommendationScore(label string, probability float64) int {
	score := 1
	switch label {
	case StrengthStrong:
		score = 3
	case StrengthModerate:
		score = 2
	}
	switch {
	case probability >= highResponseRate:
		score += 3
	case probability >= 0.5:
		score += 2
	default:
		score++
	}
	return score
}

func targetsOrganization(profile *alumni.QueryProfile, candidate *alumni.Candidate) bool {
	for _, org := range profile.TargetOrganizations {
		if sameFold(org, candidate.Organization) {
			return true
		}
	}
	return false
}

func sameFold(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

func orUnknown(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}

// round trims float noise from summed factors.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
