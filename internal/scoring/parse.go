package scoring

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go-recruiter-backend/internal/domain"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/scoring_result.json
var resultSchemaJSON string

var resultSchema = mustSchema(resultSchemaJSON)

// ErrScoringParse is returned when the oracle's reply is not a valid
// scoring result. The application is left for manual screening.
var ErrScoringParse = errors.New("scoring: unparseable oracle response")

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation in a response.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

func (ve *ValidationError) Unwrap() error {
	return ErrScoringParse
}

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("scoring: invalid embedded schema: %v", err))
	}
	return s
}

type rawResult struct {
	MatchScore         float64  `json:"match_score"`
	Strengths          []string `json:"strengths"`
	Weaknesses         []string `json:"weaknesses"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

// ParseResult decodes the oracle's text into a ScoringResult. Markdown code
// fences and surrounding prose are tolerated; anything else that fails the
// schema is ErrScoringParse. A reply without match_score scores 0.
func ParseResult(raw string) (*domain.ScoringResult, error) {
	doc := extractJSON(raw)
	if doc == "" {
		return nil, fmt.Errorf("%w: empty response", ErrScoringParse)
	}

	result, err := resultSchema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringParse, err)
	}
	if !result.Valid() {
		verr := &ValidationError{}
		for _, e := range result.Errors() {
			verr.Errors = append(verr.Errors, FieldError{Field: e.Field(), Message: e.Description()})
		}
		return nil, verr
	}

	var r rawResult
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringParse, err)
	}

	return &domain.ScoringResult{
		MatchScore:         int(math.Round(r.MatchScore)),
		Strengths:          nonNil(r.Strengths),
		Weaknesses:         nonNil(r.Weaknesses),
		SuggestedQuestions: nonNil(r.SuggestedQuestions),
	}, nil
}

// extractJSON strips code fences and any prose around the outermost object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
