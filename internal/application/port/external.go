package port

import (
	"context"
	"io"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

// Completer sends one prompt to a text-completion model and returns its raw answer
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ExtractionSource records which path produced an extraction
type ExtractionSource string

const (
	SourceAI    ExtractionSource = "ai"
	SourceRules ExtractionSource = "rules"
)

// Extraction is the result of reading one free-text trip description
type Extraction struct {
	Trip   entity.ExtractedTrip
	Source ExtractionSource
}

// TripExtractor reads trip fields from free text. It never fails; an empty
// Trip means nothing usable was found.
type TripExtractor interface {
	Extract(ctx context.Context, text string) Extraction
}

// ReportExporter writes a trip listing as a downloadable report
type ReportExporter interface {
	ExportTrips(ctx context.Context, trips []*entity.Trip, w io.Writer) error
	ContentType() string
	FileExtension() string
}
