// Package outreach composes referral outreach messages for a student and an alumnus.
package outreach

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/logger"
	"github.com/spigell/alumni-referrer/internal/utils"
	"go.uber.org/zap"
)

const (
	TypeLinkedIn = "linkedin"
	TypeEmail    = "email"
	TypeFollowUp = "follow_up"

	VariantProfessional = "professional"
	VariantFriendly     = "friendly"
	VariantBrief        = "brief"

	MethodAI       = "ai"
	MethodTemplate = "template"
	MethodMixed    = "mixed"

	defaultMaxLogLength = 200

	systemInstruction = "You are an expert at writing professional outreach messages for job referrals."
)

// Variants lists the message variants in the order they are produced.
var Variants = []string{VariantProfessional, VariantFriendly, VariantBrief}

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Recorder receives outreach counters.
type Recorder interface {
	RecordOutreach(messageType, method string)
}

// Request describes one outreach to compose.
type Request struct {
	Profile            *alumni.QueryProfile `json:"student_profile"`
	Candidate          *alumni.Candidate    `json:"alumni"`
	MessageType        string               `json:"message_type"`
	TargetRole         string               `json:"target_role,omitempty"`
	TargetOrganization string               `json:"target_company,omitempty"`
	CommonConnections  []string             `json:"common_connections,omitempty"`
	AlignmentReasons   []string             `json:"alignment_reasons,omitempty"`
}

// Message is one generated variant.
type Message struct {
	Variant        string `json:"variant"`
	Number         int    `json:"variant_number"`
	Content        string `json:"content"`
	Length         int    `json:"estimated_length"`
	Tone           string `json:"tone"`
	RecommendedUse string `json:"recommended_use"`
	Method         string `json:"method"`
}

// Result holds all variants for a request together with sending guidance.
type Result struct {
	MessageType  string    `json:"message_type"`
	Messages     []Message `json:"generated_messages"`
	Tips         []string  `json:"message_tips"`
	SubjectLines []string  `json:"subject_lines,omitempty"`
	Method       string    `json:"method"`
}

type Option func(*Composer)

// WithSenderName sets the student name used when the profile has none.
func WithSenderName(name string) Option {
	return func(c *Composer) {
		c.sender = strings.TrimSpace(name)
	}
}

func WithMaxLogLength(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.maxLogLen = n
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Composer) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Composer generates messages with the configured model and falls back to templates.
type Composer struct {
	generator contentGenerator
	logger    *zap.Logger
	sender    string
	maxLogLen int
	recorder  Recorder
}

// NewComposer returns a Composer. A nil generator means templates only.
func NewComposer(generator contentGenerator, log *zap.Logger, opts ...Option) *Composer {
	c := &Composer{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: defaultMaxLogLength,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if generator != nil {
		c.logger = logger.WithAIFields(c.logger, "", generator.Model())
	}
	return c
}

// ParseType normalizes a message type. A blank type means linkedin.
func ParseType(messageType string) (string, error) {
	switch t := strings.ToLower(strings.TrimSpace(messageType)); t {
	case "":
		return TypeLinkedIn, nil
	case TypeLinkedIn, TypeEmail, TypeFollowUp:
		return t, nil
	case "follow-up", "followup":
		return TypeFollowUp, nil
	default:
		return "", fmt.Errorf("%w: unknown message type %q", ErrInvalidRequest, messageType)
	}
}

// Compose produces the professional, friendly and brief variants for req.
func (c *Composer) Compose(ctx context.Context, req Request) (*Result, error) {
	if req.Candidate == nil {
		return nil, fmt.Errorf("%w: alumni is required", ErrInvalidRequest)
	}
	messageType, err := ParseType(req.MessageType)
	if err != nil {
		return nil, err
	}
	req.MessageType = messageType

	base, err := loadTemplate(messageType)
	if err != nil {
		return nil, err
	}
	vars := templateVariables(req, c.sender)

	log := c.logger.With(
		zap.String(logger.FieldCandidateID, req.Candidate.ID),
		zap.String("message_type", messageType),
	)

	result := &Result{MessageType: messageType, Tips: Tips(messageType)}
	generatorUp := c.generator != nil
	for i, variant := range Variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, method := "", MethodTemplate
		if generatorUp {
			generated, err := c.generate(ctx, req, base, variant)
			switch {
			case err == nil:
				content, method = generated, MethodAI
			case ctx.Err() != nil:
				return nil, ctx.Err()
			default:
				log.Warn("falling back to template message",
					zap.String("variant", variant),
					zap.Error(err),
				)
				generatorUp = false
			}
		}
		if method == MethodTemplate {
			content = applyVariant(render(base, vars), variant)
		}

		result.Messages = append(result.Messages, Message{
			Variant:        variant,
			Number:         i + 1,
			Content:        content,
			Length:         utf8.RuneCountInString(content),
			Tone:           variant,
			RecommendedUse: VariantRecommendation(variant),
			Method:         method,
		})
		c.recorder.RecordOutreach(messageType, method)
	}

	result.Method = aggregateMethod(result.Messages)
	if messageType == TypeEmail {
		result.SubjectLines = SubjectLines(vars["student_name"], vars["alumni_company"], vars["graduation_year"])
	}

	log.Debug("outreach composed",
		zap.String("method", result.Method),
		zap.Int("variants", len(result.Messages)),
	)
	return result, nil
}

func (c *Composer) generate(ctx context.Context, req Request, base, variant string) (string, error) {
	prompt := buildPrompt(messageContext(req), base, variant)

	c.logger.Debug("outreach generate request",
		zap.String("variant", variant),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(utils.OneLine(prompt), c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
	}

	content := stripFences(raw)
	if content == "" {
		return "", fmt.Errorf("%w: empty message", ErrGenerationUnavailable)
	}

	c.logger.Debug("outreach generate response",
		zap.String("variant", variant),
		zap.Int("response_length", utf8.RuneCountInString(content)),
		zap.String("response_preview", utils.TruncateForLog(utils.OneLine(content), c.maxLogLen)),
	)
	return content, nil
}

func buildPrompt(details, base, variant string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Context:\n{{CONTEXT}}\n\nTemplate:\n{{TEMPLATE}}\n\nVariant: {{VARIANT}}"
	}
	return strings.NewReplacer(
		"{{CONTEXT}}", details,
		"{{TEMPLATE}}", base,
		"{{VARIANT}}", variant,
	).Replace(template)
}

func messageContext(req Request) string {
	profile := req.Profile
	if profile == nil {
		profile = &alumni.QueryProfile{}
	}
	vars := templateVariables(req, "")
	candidate := req.Candidate

	parts := []string{
		fmt.Sprintf("Student: %s, %s year %s student", vars["student_name"], vars["student_year"], vars["student_degree"]),
		"Student Skills: " + strings.Join(profile.Skills, ", "),
		"Student Interests: " + strings.Join(profile.Interests, ", "),
		fmt.Sprintf("Alumni: %s, %s graduate", vars["alumni_name"], vars["graduation_year"]),
		fmt.Sprintf("Alumni Current Position: %s at %s", vars["alumni_role"], firstNonBlank(candidate.Organization, defaultCompany)),
		"Alumni Domain: " + firstNonBlank(candidate.Domain, "Technology"),
		fmt.Sprintf("Target Role: %s at %s", vars["target_role"], vars["alumni_company"]),
	}
	if shared := candidate.SharedSkills(profile.Skills); len(shared) > 0 {
		parts = append(parts, "Shared Skills: "+strings.Join(shared, ", "))
	}
	if connections := alumni.CleanList(req.CommonConnections); len(connections) > 0 {
		parts = append(parts, "Common Connections: "+strings.Join(connections, ", "))
	}
	if reasons := alumni.CleanList(req.AlignmentReasons); len(reasons) > 0 {
		parts = append(parts, "Connection Points: "+strings.Join(reasons, "; "))
	}
	return strings.Join(parts, "\n")
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```markdown")
		raw = strings.TrimPrefix(raw, "```text")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}

func aggregateMethod(messages []Message) string {
	method := ""
	for _, m := range messages {
		switch {
		case method == "":
			method = m.Method
		case method != m.Method:
			return MethodMixed
		}
	}
	return method
}

type nopRecorder struct{}

func (nopRecorder) RecordOutreach(string, string) {}
