package service

import (
	"context"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/garyjia/trip-expenses/internal/application/port"
	"github.com/garyjia/trip-expenses/internal/application/wizard"
	"github.com/garyjia/trip-expenses/internal/domain/classify"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/domain/extract"
	"github.com/garyjia/trip-expenses/internal/domain/field"
)

// DefaultCompletionTimeout bounds one AI extraction call
const DefaultCompletionTimeout = 8 * time.Second

// ExtractionConfig tunes the AI-first extraction chain
type ExtractionConfig struct {
	// PromptTemplate overrides DefaultExtractionTemplate
	PromptTemplate string
	Timeout        time.Duration
	HomeCountry    string
}

// ExtractionService reads trip fields from free text, trying the AI completion first
// and falling back to the deterministic extractor on any failure.
type ExtractionService interface {
	port.TripExtractor
}

type extractionServiceImpl struct {
	completer   port.Completer
	rules       *extract.Extractor
	tmpl        *template.Template
	timeout     time.Duration
	homeCountry string
	now         func() time.Time
	logger      Logger
}

// NewExtractionService creates an ExtractionService. A nil completer means rules only.
func NewExtractionService(completer port.Completer, rules *extract.Extractor, cfg ExtractionConfig, logger Logger) (ExtractionService, error) {
	if rules == nil {
		return nil, fmt.Errorf("deterministic extractor is required")
	}
	tmpl, err := parsePromptTemplate(cfg.PromptTemplate)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCompletionTimeout
	}
	if cfg.HomeCountry == "" {
		cfg.HomeCountry = classify.DefaultHomeCountry
	}

	return &extractionServiceImpl{
		completer:   completer,
		rules:       rules,
		tmpl:        tmpl,
		timeout:     cfg.Timeout,
		homeCountry: cfg.HomeCountry,
		now:         time.Now,
		logger:      logger,
	}, nil
}

// Extract never fails: AI problems are logged and the rule-based result is returned
func (s *extractionServiceImpl) Extract(ctx context.Context, text string) port.Extraction {
	trip, err := s.extractWithAI(ctx, text)
	if err == nil {
		s.logger.Info("Trip extracted with AI")
		return port.Extraction{Trip: trip, Source: port.SourceAI}
	}

	if s.completer != nil {
		s.logger.Warn("AI extraction failed, using rules", "error", err)
	}
	return port.Extraction{Trip: s.rules.Extract(text), Source: port.SourceRules}
}

func (s *extractionServiceImpl) extractWithAI(ctx context.Context, text string) (entity.ExtractedTrip, error) {
	if s.completer == nil {
		return entity.ExtractedTrip{}, fmt.Errorf("%w: no completer configured", wizard.ErrCompletionUnavailable)
	}

	prompt, err := renderPrompt(s.tmpl, promptData{
		Message:     text,
		Today:       s.now().Format(entity.DateLayout),
		HomeCountry: s.homeCountry,
		CostCenters: field.CostCenterOptions(),
	})
	if err != nil {
		return entity.ExtractedTrip{}, fmt.Errorf("%w: %v", wizard.ErrCompletionUnavailable, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.completer.Complete(callCtx, prompt)
	if err != nil {
		return entity.ExtractedTrip{}, fmt.Errorf("%w: %v", wizard.ErrCompletionUnavailable, err)
	}

	trip, err := parseCompletion(raw)
	if err != nil {
		return entity.ExtractedTrip{}, fmt.Errorf("%w: %v", wizard.ErrCompletionUnavailable, err)
	}
	return trip, nil
}

// parseCompletion decodes the JSON object in a model answer, tolerating markdown fences and prose
func parseCompletion(raw string) (entity.ExtractedTrip, error) {
	var trip entity.ExtractedTrip

	content := extractJSON(raw)
	if content == "" {
		return trip, fmt.Errorf("no JSON object in completion")
	}
	if err := json.Unmarshal([]byte(content), &trip); err != nil {
		return trip, fmt.Errorf("malformed completion: %w", err)
	}
	if trip.IsEmpty() {
		return trip, fmt.Errorf("completion has no trip fields")
	}
	return trip, nil
}

// extractJSON returns the first balanced JSON object in content
func extractJSON(content string) string {
	start := findJSONStart(content)
	if start < 0 {
		return ""
	}
	end := findJSONEnd(content, start)
	if end <= start {
		return ""
	}
	return content[start:end]
}

func findJSONStart(content string) int {
	for i := 0; i < len(content); i++ {
		if content[i] == '{' {
			return i
		}
	}
	return -1
}

// findJSONEnd returns the index just past the brace closing the object at start
func findJSONEnd(content string, start int) int {
	if start < 0 || start >= len(content) || content[start] != '{' {
		return -1
	}

	depth := 0
	inString := false
	escapeNext := false

	for i := start; i < len(content); i++ {
		c := content[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if c == '\\' {
			escapeNext = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return -1
}
