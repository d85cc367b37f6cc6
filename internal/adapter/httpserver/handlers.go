package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/talent-match/internal/config"
	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/internal/usecase"
	"github.com/fairyhunter13/talent-match/pkg/textx"
)

var validate = validator.New()

// Server bundles the application services behind HTTP handlers.
type Server struct {
	Cfg       config.Config
	Match     usecase.MatchService
	Recommend usecase.RecommendService
}

// NewServer constructs a Server.
func NewServer(cfg config.Config, match usecase.MatchService, recommend usecase.RecommendService) *Server {
	return &Server{Cfg: cfg, Match: match, Recommend: recommend}
}

type matchRequest struct {
	ProfileText string `json:"profile_text" validate:"required"`
	TopK        int    `json:"top_k" validate:"gte=0,lte=10"`
}

type matchResponse struct {
	Matches []domain.OccupationMatch `json:"matches"`
	Profile domain.ProfileInfo       `json:"profile"`
	Skills  []string                 `json:"skills"`
}

// MatchProfile handles POST /v1/profile/match. The profile arrives either
// as JSON or as a multipart text file upload.
func (s *Server) MatchProfile(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		text, err := s.readProfileUpload(r)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		req.ProfileText = text
		req.TopK = 0
	} else {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
		return
	}

	matches, err := s.Match.MatchOccupations(r.Context(), req.ProfileText, req.TopK)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, matchResponse{
		Matches: matches,
		Profile: usecase.ParseProfile(req.ProfileText),
		Skills:  usecase.ExtractSkills(req.ProfileText),
	})
}

// readProfileUpload extracts the plain-text profile from a multipart form.
// Only text payloads are accepted; binary formats are rejected up front.
func (s *Server) readProfileUpload(r *http.Request) (string, error) {
	maxBytes := s.Cfg.MaxUploadMB << 20
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return "", fmt.Errorf("%w: multipart parse: %v", domain.ErrInvalidArgument, err)
	}
	file, _, err := r.FormFile("profile")
	if err != nil {
		return "", fmt.Errorf("%w: missing profile file", domain.ErrInvalidArgument)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read upload: %v", domain.ErrInvalidArgument, err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: profile exceeds %dMB limit", domain.ErrInvalidArgument, s.Cfg.MaxUploadMB)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "text/") {
		return "", fmt.Errorf("%w: unsupported media type %s", domain.ErrInvalidArgument, mt.String())
	}
	return string(data), nil
}

type gapRequest struct {
	OccupationID string   `json:"occupation_id" validate:"required"`
	Skills       []string `json:"skills"`
	ProfileText  string   `json:"profile_text"`
}

// ownedSkills resolves the owned-skill set: an explicit list wins, a
// profile text is tokenized otherwise.
func (g gapRequest) ownedSkills() []string {
	if len(g.Skills) > 0 {
		return g.Skills
	}
	return usecase.ExtractSkills(g.ProfileText)
}

// AnalyzeGap handles POST /v1/profile/gap.
func (s *Server) AnalyzeGap(w http.ResponseWriter, r *http.Request) {
	var req gapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
		return
	}
	report, err := s.Match.AnalyzeGap(r.Context(), req.ownedSkills(), req.OccupationID)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type learningPathResponse struct {
	Gap  domain.GapReport       `json:"gap"`
	Path []domain.LearningPhase `json:"path"`
}

// LearningPath handles POST /v1/profile/learning-path.
func (s *Server) LearningPath(w http.ResponseWriter, r *http.Request) {
	var req gapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
		return
	}
	path, report, err := s.Match.LearningPath(r.Context(), req.ownedSkills(), req.OccupationID)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, learningPathResponse{Gap: report, Path: path})
}

type coursesRequest struct {
	Skills []string `json:"skills" validate:"required,min=1"`
	Limit  int      `json:"limit" validate:"gte=0"`
}

// capResults applies an optional per-request limit on top of the
// configured maximum, which stays the hard cap.
func capResults(results []domain.RankedResult, limit int) []domain.RankedResult {
	if limit > 0 && limit < len(results) {
		return results[:limit]
	}
	return results
}

// RecommendCourses handles POST /v1/recommend/courses.
func (s *Server) RecommendCourses(w http.ResponseWriter, r *http.Request) {
	var req coursesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
		return
	}
	results, err := s.Recommend.RecommendCourses(r.Context(), req.Skills)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": capResults(results, req.Limit)})
}

type jobsRequest struct {
	Skills          []string `json:"skills"`
	OccupationNames []string `json:"occupation_names"`
	OccupationID    string   `json:"occupation_id"`
	Limit           int      `json:"limit"`
}

type jobsResponse struct {
	Results []domain.RankedResult `json:"results"`
	Sources []domain.SourceStatus `json:"sources"`
	Partial bool                  `json:"partial"`
}

// RecommendJobs handles POST /v1/recommend/jobs. A partial source failure
// still returns 200 with the surviving results and per-source statuses.
func (s *Server) RecommendJobs(w http.ResponseWriter, r *http.Request) {
	var req jobsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, nil)
		return
	}
	names := req.OccupationNames
	var unitPhrases []string
	if req.OccupationID != "" {
		details, err := s.Match.GetOccupationDetails(r.Context(), req.OccupationID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		names = append(names, details.Name)
		unitPhrases = textx.ParseKeywordList(details.CompetencyUnit)
	}
	results, statuses, err := s.Recommend.MatchJobs(r.Context(), req.Skills, names, unitPhrases)
	if err != nil && !errors.Is(err, domain.ErrPartialSourceFailure) {
		writeError(w, r, err, statuses)
		return
	}
	writeJSON(w, http.StatusOK, jobsResponse{
		Results: capResults(results, req.Limit),
		Sources: statuses,
		Partial: errors.Is(err, domain.ErrPartialSourceFailure),
	})
}

// GetOccupation handles GET /v1/occupations/{id}.
func (s *Server) GetOccupation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	details, err := s.Match.GetOccupationDetails(r.Context(), id)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}
