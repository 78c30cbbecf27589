package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/filtering"
	"github.com/spigell/alumni-referrer/internal/similarity"
)

const schema = `
CREATE TABLE IF NOT EXISTS alumni (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	organization TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	domain TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	degree TEXT NOT NULL DEFAULT '',
	graduation_year INTEGER NOT NULL DEFAULT 0,
	experience_years INTEGER NOT NULL DEFAULT 0,
	skills TEXT[] NOT NULL DEFAULT '{}',
	location TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	seniority_level TEXT NOT NULL DEFAULT '',
	hiring_authority BOOLEAN NOT NULL DEFAULT FALSE,
	response_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	referral_success_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	email TEXT NOT NULL DEFAULT '',
	linkedin_url TEXT NOT NULL DEFAULT '',
	previous_companies TEXT[] NOT NULL DEFAULT '{}',
	bio TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const selectColumns = `id, name, organization, title, domain, department, degree,
	graduation_year, experience_years, skills, location, industry, seniority_level,
	hiring_authority, response_rate, referral_success_rate, email, linkedin_url,
	previous_companies, bio`

const upsertQuery = `
INSERT INTO alumni (` + selectColumns + `, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW())
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	organization = EXCLUDED.organization,
	title = EXCLUDED.title,
	domain = EXCLUDED.domain,
	department = EXCLUDED.department,
	degree = EXCLUDED.degree,
	graduation_year = EXCLUDED.graduation_year,
	experience_years = EXCLUDED.experience_years,
	skills = EXCLUDED.skills,
	location = EXCLUDED.location,
	industry = EXCLUDED.industry,
	seniority_level = EXCLUDED.seniority_level,
	hiring_authority = EXCLUDED.hiring_authority,
	response_rate = EXCLUDED.response_rate,
	referral_success_rate = EXCLUDED.referral_success_rate,
	email = EXCLUDED.email,
	linkedin_url = EXCLUDED.linkedin_url,
	previous_companies = EXCLUDED.previous_companies,
	bio = EXCLUDED.bio,
	updated_at = NOW()`

// NewPostgresPool opens and pings a connection pool.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", ErrUnavailable, err)
	}

	return pool, nil
}

// Postgres stores alumni in PostgreSQL. Criteria are evaluated in SQL; similarity is
// computed over the matching rows with the configured source.
type Postgres struct {
	pool   *pgxpool.Pool
	source similarity.Source
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, source similarity.Source, logger *zap.Logger) *Postgres {
	if source == nil {
		source = similarity.NewTFIDF()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{pool: pool, source: source, logger: logger}
}

// EnsureSchema creates the alumni table when it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return unavailable("create schema", err)
	}
	return nil
}

func (p *Postgres) Add(ctx context.Context, candidates []*alumni.Candidate) error {
	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			return err
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, candidate := range candidates {
		c := candidate.Clone()
		c.Normalize()
		batch.Queue(upsertQuery,
			c.ID, c.Name, c.Organization, c.Title, c.Domain, c.Department, c.Degree,
			c.GraduationYear, c.ExperienceYears, nonNil(c.Skills), c.Location, c.Industry, c.Seniority,
			c.HiringAuthority, c.ResponseRate, c.ReferralSuccessRate, c.Email, c.LinkedInURL,
			nonNil(c.PreviousCompanies), c.Bio,
		)
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()
	for _, candidate := range candidates {
		if _, err := results.Exec(); err != nil {
			return unavailable("upsert "+candidate.ID, err)
		}
	}

	p.logger.Debug("stored alumni", zap.Int("count", len(candidates)))
	return nil
}

func (p *Postgres) Query(ctx context.Context, text string, criteria *filtering.Criteria, topK int) ([]Hit, error) {
	query, args := buildSearchQuery(criteria, 0)
	candidates, err := p.collect(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Hit{}, nil
	}

	docs := make([]similarity.Document, 0, len(candidates))
	byID := make(map[string]*alumni.Candidate, len(candidates))
	for _, candidate := range candidates {
		docs = append(docs, similarity.Document{ID: candidate.ID, Text: candidate.Document()})
		byID[candidate.ID] = candidate
	}

	scores, err := p.source.Similarities(ctx, text, docs)
	if err != nil {
		return nil, fmt.Errorf("query %s similarity: %w", p.source.Method(), err)
	}

	hits := make([]Hit, 0, len(scores))
	for _, score := range scores {
		hits = append(hits, Hit{
			ID:         score.ID,
			Similarity: score.Similarity,
			Metadata:   alumni.ToMetadata(byID[score.ID]),
		})
	}
	sortHits(hits)
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (p *Postgres) Stats(ctx context.Context) (Stats, error) {
	var count int
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM alumni`).Scan(&count); err != nil {
		return Stats{}, unavailable("count alumni", err)
	}
	return Stats{Count: count, Method: p.source.Method(), Driver: DriverPostgres}, nil
}

func (p *Postgres) GetByID(ctx context.Context, id string) (*alumni.Candidate, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM alumni WHERE id = $1`, id)
	candidate, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, unavailable("get "+id, err)
	}
	return candidate, nil
}

func (p *Postgres) Search(ctx context.Context, criteria *filtering.Criteria, limit int) ([]*alumni.Candidate, error) {
	query, args := buildSearchQuery(criteria, limit)
	return p.collect(ctx, query, args)
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM alumni WHERE id = $1`, id)
	if err != nil {
		return unavailable("delete "+id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) collect(ctx context.Context, query string, args []any) ([]*alumni.Candidate, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, unavailable("search alumni", err)
	}
	defer rows.Close()

	var candidates []*alumni.Candidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, unavailable("scan alumni", err)
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate alumni", err)
	}
	return candidates, nil
}

func scanCandidate(row pgx.Row) (*alumni.Candidate, error) {
	var c alumni.Candidate
	err := row.Scan(
		&c.ID, &c.Name, &c.Organization, &c.Title, &c.Domain, &c.Department, &c.Degree,
		&c.GraduationYear, &c.ExperienceYears, &c.Skills, &c.Location, &c.Industry, &c.Seniority,
		&c.HiringAuthority, &c.ResponseRate, &c.ReferralSuccessRate, &c.Email, &c.LinkedInURL,
		&c.PreviousCompanies, &c.Bio,
	)
	if err != nil {
		return nil, err
	}
	c.Normalize()
	return &c, nil
}

// buildSearchQuery renders criteria as a parameterized SELECT. A positive limit adds LIMIT.
// Rows sharing more criteria skills come first, then rows are ordered by id.
func buildSearchQuery(criteria *filtering.Criteria, limit int) (string, []any) {
	var (
		where []string
		args  []any
	)
	param := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	order := "id ASC"
	if criteria != nil {
		if len(criteria.Organizations) > 0 {
			patterns := make([]string, 0, len(criteria.Organizations))
			for _, org := range criteria.Organizations {
				patterns = append(patterns, "%"+escapeLike(org)+"%")
			}
			where = append(where, "organization ILIKE ANY("+param(patterns)+")")
		}
		if criteria.Department != "" {
			where = append(where, "department ILIKE "+param(escapeLike(criteria.Department)+"%"))
		}
		if criteria.Domain != "" {
			where = append(where, "domain ILIKE "+param("%"+escapeLike(criteria.Domain)+"%"))
		}
		if criteria.Role != "" {
			where = append(where, "title ILIKE "+param("%"+escapeLike(criteria.Role)+"%"))
		}
		if criteria.MinGraduationYear != nil || criteria.MaxGraduationYear != nil {
			where = append(where, "graduation_year > 0")
		}
		if criteria.MinGraduationYear != nil {
			where = append(where, "graduation_year >= "+param(*criteria.MinGraduationYear))
		}
		if criteria.MaxGraduationYear != nil {
			where = append(where, "graduation_year <= "+param(*criteria.MaxGraduationYear))
		}
		if criteria.MinResponseRate != nil {
			where = append(where, "response_rate >= "+param(*criteria.MinResponseRate))
		}
		if criteria.HiringAuthority != nil {
			where = append(where, "hiring_authority = "+param(*criteria.HiringAuthority))
		}
		if len(criteria.Skills) > 0 {
			lowered := make([]string, 0, len(criteria.Skills))
			for _, skill := range criteria.Skills {
				lowered = append(lowered, strings.ToLower(skill))
			}
			order = "(SELECT count(*) FROM unnest(skills) AS s WHERE lower(s) = ANY(" + param(lowered) + ")) DESC, id ASC"
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectColumns)
	b.WriteString(" FROM alumni")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(order)
	if limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(param(limit))
	}
	return b.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.TrimSpace(s))
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func unavailable(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
