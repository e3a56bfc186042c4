package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/garyjia/trip-expenses/internal/application/port"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/domain/report"
)

var (
	// ErrForbidden is returned when a regular user calls an admin-only operation
	ErrForbidden = errors.New("operation requires admin role")

	// ErrInvalidFilter is returned for contradictory listing filters
	ErrInvalidFilter = errors.New("invalid trip filter")
)

// DefaultTripListLimit caps trip listings when the caller sets no limit
const DefaultTripListLimit = 500

// DashboardService serves trip listings, admin summaries and exports
type DashboardService interface {
	ListTrips(ctx context.Context, caller entity.Principal, filter entity.TripFilter) ([]*entity.Trip, error)
	AdminSummary(ctx context.Context, caller entity.Principal, filter entity.TripFilter, budgetYear int) (*report.Summary, error)
	ExportTrips(ctx context.Context, caller entity.Principal, filter entity.TripFilter, w io.Writer) error
	ExportFormat() (contentType, extension string)
}

type dashboardServiceImpl struct {
	trips    port.TripReader
	budgets  port.BudgetReader
	exporter port.ReportExporter
	logger   Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(trips port.TripReader, budgets port.BudgetReader, exporter port.ReportExporter, logger Logger) DashboardService {
	return &dashboardServiceImpl{
		trips:    trips,
		budgets:  budgets,
		exporter: exporter,
		logger:   logger,
	}
}

// ListTrips returns the caller's own trips; admins may list every user's trips
func (s *dashboardServiceImpl) ListTrips(ctx context.Context, caller entity.Principal, filter entity.TripFilter) ([]*entity.Trip, error) {
	if !caller.IsAdmin() {
		filter.UserID = caller.UserID
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultTripListLimit
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidFilter, filter.From, filter.To)
	}

	trips, err := s.trips.ListTrips(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list trips", "user_id", caller.UserID, "error", err)
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return trips, nil
}

// AdminSummary aggregates the filtered trips and compares them with planned budgets
func (s *dashboardServiceImpl) AdminSummary(ctx context.Context, caller entity.Principal, filter entity.TripFilter, budgetYear int) (*report.Summary, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	trips, err := s.ListTrips(ctx, caller, filter)
	if err != nil {
		return nil, err
	}

	budgets, err := s.budgets.ListBudgets(ctx, budgetYear)
	if err != nil {
		s.logger.Error("Failed to list budgets", "year", budgetYear, "error", err)
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	summary := report.Summarize(trips, budgets)
	s.logger.Info("Admin summary built", "user_id", caller.UserID, "trips", summary.TripCount)
	return &summary, nil
}

// ExportTrips writes the filtered trip list as a report. Admin only.
func (s *dashboardServiceImpl) ExportTrips(ctx context.Context, caller entity.Principal, filter entity.TripFilter, w io.Writer) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	if s.exporter == nil {
		return fmt.Errorf("no report exporter configured")
	}

	trips, err := s.ListTrips(ctx, caller, filter)
	if err != nil {
		return err
	}

	if err := s.exporter.ExportTrips(ctx, trips, w); err != nil {
		s.logger.Error("Failed to export trips", "user_id", caller.UserID, "error", err)
		return fmt.Errorf("export trips: %w", err)
	}

	s.logger.Info("Trips exported", "user_id", caller.UserID, "count", len(trips))
	return nil
}

// ExportFormat describes the exporter output for download headers
func (s *dashboardServiceImpl) ExportFormat() (string, string) {
	if s.exporter == nil {
		return "", ""
	}
	return s.exporter.ContentType(), s.exporter.FileExtension()
}
