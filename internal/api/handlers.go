package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/outreach"
	"github.com/spigell/alumni-referrer/internal/search"
)

type searchBody struct {
	Profile *alumni.QueryProfile `json:"student_profile"`
	Filters map[string]any       `json:"filters"`
	TopK    int                  `json:"top_k" binding:"gte=0,lte=100"`
}

// target names an alumnus either by id or inline.
type target struct {
	CandidateID string            `json:"alumni_id"`
	Candidate   *alumni.Candidate `json:"alumni"`
}

type outreachBody struct {
	target
	Profile            *alumni.QueryProfile `json:"student_profile" binding:"required"`
	MessageType        string               `json:"message_type" binding:"omitempty,oneof=linkedin email follow_up"`
	TargetRole         string               `json:"target_role"`
	TargetOrganization string               `json:"target_company"`
	CommonConnections  []string             `json:"common_connections"`
	AlignmentReasons   []string             `json:"alignment_reasons"`
}

type referralBody struct {
	target
	Profile *alumni.QueryProfile `json:"student_profile" binding:"required"`
}

func (h *handler) search(c *gin.Context) {
	var body searchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(badRequest("invalid search request", err))
		return
	}

	result, err := h.deps.Search.Search(c.Request.Context(), search.Request{
		Profile: body.Profile,
		Filters: body.Filters,
		TopK:    body.TopK,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	code := http.StatusOK
	if result.Status == search.StatusError {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, Response{
		Success:   result.Status != search.StatusError,
		Message:   result.Status,
		Data:      result,
		RequestID: requestID(c),
	})
}

func (h *handler) getAlumni(c *gin.Context) {
	candidate, err := h.deps.Profiles.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	success(c, http.StatusOK, "alumni found", candidate)
}

func (h *handler) stats(c *gin.Context) {
	stats, err := h.deps.Stats.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	success(c, http.StatusOK, "store statistics", stats)
}

func (h *handler) outreach(c *gin.Context) {
	var body outreachBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(badRequest("invalid outreach request", err))
		return
	}

	candidate, err := h.resolve(c, body.target)
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.deps.Composer.Compose(c.Request.Context(), outreach.Request{
		Profile:            body.Profile,
		Candidate:          candidate,
		MessageType:        body.MessageType,
		TargetRole:         body.TargetRole,
		TargetOrganization: body.TargetOrganization,
		CommonConnections:  body.CommonConnections,
		AlignmentReasons:   body.AlignmentReasons,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	success(c, http.StatusOK, "outreach generated", result)
}

func (h *handler) referralPath(c *gin.Context) {
	var body referralBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(badRequest("invalid referral path request", err))
		return
	}

	candidate, err := h.resolve(c, body.target)
	if err != nil {
		_ = c.Error(err)
		return
	}

	path, err := h.deps.Analyzer.Analyze(body.Profile, candidate)
	if err != nil {
		_ = c.Error(err)
		return
	}
	success(c, http.StatusOK, "referral path analyzed", path)
}

// resolve loads the alumnus by id, or validates the inline record.
func (h *handler) resolve(c *gin.Context, t target) (*alumni.Candidate, error) {
	if id := strings.TrimSpace(t.CandidateID); id != "" {
		return h.deps.Profiles.GetByID(c.Request.Context(), id)
	}
	if t.Candidate == nil {
		return nil, badRequest("alumni_id or alumni is required", nil)
	}
	candidate := t.Candidate.Clone()
	candidate.Normalize()
	if err := candidate.Validate(); err != nil {
		return nil, badRequest("invalid alumni record", err)
	}
	return candidate, nil
}
