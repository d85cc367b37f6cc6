// Package domain holds the core entities, error taxonomy, and ports of the
// talent-match service.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/fairyhunter13/talent-match/pkg/textx"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrNotFound             = errors.New("not found")
	ErrNoCorpusData         = errors.New("no corpus data")
	ErrIndexCorrupt         = errors.New("index corrupt")
	ErrModelUnavailable     = errors.New("embedding model unavailable")
	ErrServiceUnavailable   = errors.New("service unavailable")
	ErrPartialSourceFailure = errors.New("partial source failure")
	ErrInternal             = errors.New("internal error")
)

// OccupationRecord is an immutable row of the reference occupation corpus.
// RequiredKeywordsRaw may contain parenthesized sub-phrases; RequiredTokens
// parses it lazily on first use.
type OccupationRecord struct {
	ID                  string
	Name                string
	FunctionalArea      string
	CompetencyUnit      string
	RequiredKeywordsRaw string

	requiredTokens []string
}

// RequiredTokens returns the parsed, deduplicated required-skill tokens.
// Parsing respects parenthesized sub-phrases in the raw keywords field.
func (o *OccupationRecord) RequiredTokens() []string {
	if o.requiredTokens == nil {
		o.requiredTokens = textx.ParseKeywordList(o.RequiredKeywordsRaw)
	}
	return o.requiredTokens
}

// OccupationMatch is a single nearest-neighbor hit against the corpus.
type OccupationMatch struct {
	OccupationID   string  `json:"occupation_id"`
	OccupationName string  `json:"occupation_name"`
	FunctionalArea string  `json:"functional_area"`
	CompetencyUnit string  `json:"competency_unit"`
	Score          float32 `json:"score"`
}

// GapReport compares owned skills against an occupation's requirements.
// GapPercentage is in [0,100]; PrioritySkills is MissingSkills reordered so
// that in-demand skills come first, both groups keeping their relative order.
type GapReport struct {
	OwnedSkills    []string `json:"owned_skills"`
	MissingSkills  []string `json:"missing_skills"`
	PrioritySkills []string `json:"priority_skills"`
	GapPercentage  float64  `json:"gap_percentage"`
}

// LearningPhase is one ordered stage of a learning path. Phases are never
// emitted with zero skills.
type LearningPhase struct {
	Index             int      `json:"phase"`
	Title             string   `json:"title"`
	Skills            []string `json:"skills"`
	EstimatedDuration string   `json:"estimated_duration"`
	Focus             string   `json:"focus"`
}

// CandidateItem is a course or job posting scored for relevance. The same
// shape serves both corpora.
type CandidateItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Source      string `json:"source"`
	URL         string `json:"url"`
}

// RankedResult is a candidate plus its relevance score and the distinct
// keywords that matched it.
type RankedResult struct {
	Item          CandidateItem `json:"item"`
	MatchedTokens []string      `json:"matched_tokens"`
	Score         int           `json:"score"`
}

// Source status values for feed aggregation.
const (
	SourceStatusSuccess = "success"
	SourceStatusEmpty   = "empty"
	SourceStatusError   = "error"
)

// SourceStatus reports the outcome of a single feed source. A failing
// source never blocks results from its siblings.
type SourceStatus struct {
	Source  string `json:"source"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count"`
}

// ProfileInfo carries contact fields heuristically extracted from free-form
// profile text.
type ProfileInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// Ports

// CorpusReader provides read access to the occupation reference corpus.
type CorpusReader interface {
	ListOccupations(ctx Context) ([]OccupationRecord, error)
	GetOccupation(ctx Context, id string) (OccupationRecord, error)
}

// CourseCatalog lists course candidates for relevance ranking.
type CourseCatalog interface {
	ListCourses(ctx Context) ([]CandidateItem, error)
}

// EmbeddingClient embeds texts into fixed-dimension vectors; batchable.
type EmbeddingClient interface {
	Embed(ctx Context, texts []string) ([][]float32, error)
	// ModelID identifies the embedding model; index blobs built with a
	// different model must not be loaded.
	ModelID() string
}

// IndexStore persists opaque index blobs keyed by corpus version + model
// identity. Load returns ErrNotFound when the key is absent.
type IndexStore interface {
	Load(ctx Context, key string) ([]byte, error)
	Save(ctx Context, key string, blob []byte, ttl time.Duration) error
}

// FeedFetcher aggregates candidate items from external sources with
// per-source partial-failure reporting.
type FeedFetcher interface {
	FetchAll(ctx Context) ([]CandidateItem, []SourceStatus)
}

// Context is an alias so the domain package stays decoupled from call sites;
// adapters and usecases pass context.Context through.
type Context = context.Context
