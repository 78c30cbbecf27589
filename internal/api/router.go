// Package api exposes search, outreach and referral analysis over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/logger"
	"github.com/spigell/alumni-referrer/internal/outreach"
	"github.com/spigell/alumni-referrer/internal/referral"
	"github.com/spigell/alumni-referrer/internal/search"
	"github.com/spigell/alumni-referrer/internal/store"
)

type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Result, error)
}

type Composer interface {
	Compose(ctx context.Context, req outreach.Request) (*outreach.Result, error)
}

type Analyzer interface {
	Analyze(profile *alumni.QueryProfile, candidate *alumni.Candidate) (*referral.Path, error)
}

type StatsReader interface {
	Stats(ctx context.Context) (store.Stats, error)
}

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (*alumni.Candidate, error)
}

// HTTPRecorder receives one observation per served request.
type HTTPRecorder interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
}

// Deps are the services behind the routes. Search, Profiles and Stats are required.
type Deps struct {
	Search   Searcher
	Profiles ProfileReader
	Stats    StatsReader
	Composer Composer
	Analyzer Analyzer
	Recorder HTTPRecorder
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *zap.Logger
}

type handler struct {
	deps   Deps
	logger *zap.Logger
}

func NewRouter(deps Deps) *gin.Engine {
	log := logger.WithFields(deps.Logger, zap.String("component", "api"))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware(log))
	if deps.Recorder != nil {
		r.Use(metricsMiddleware(deps.Recorder))
	}
	r.Use(errorMiddleware(log))

	h := &handler{deps: deps, logger: log}

	r.GET("/healthz", func(c *gin.Context) {
		success(c, http.StatusOK, "ok", nil)
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	v1 := r.Group("/api/v1")
	v1.POST("/search", h.search)
	v1.GET("/alumni/:id", h.getAlumni)
	v1.GET("/stats", h.stats)
	if deps.Composer != nil {
		v1.POST("/outreach", h.outreach)
	}
	if deps.Analyzer != nil {
		v1.POST("/referral-path", h.referralPath)
	}

	return r
}
