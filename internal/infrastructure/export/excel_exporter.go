package export

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

const (
	sheetName = "Viagens"

	// excelize built-in number format "#,##0.00"
	numFmtMoney = 4
)

var headers = []interface{}{
	"ID", "Usuário", "Data da viagem", "País", "Cidade",
	"Passagem", "Hospedagem", "Diárias", "Total", "Centro de custo", "Tipo",
}

// ExcelExporter writes trip listings as XLSX workbooks
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new ExcelExporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// ContentType returns the XLSX MIME type
func (e *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileExtension returns ".xlsx"
func (e *ExcelExporter) FileExtension() string {
	return ".xlsx"
}

// ExportTrips writes one row per trip followed by a totals row
func (e *ExcelExporter) ExportTrips(ctx context.Context, trips []*entity.Trip, w io.Writer) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := file.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}
	totalStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: numFmtMoney})
	if err != nil {
		return fmt.Errorf("failed to create total style: %w", err)
	}

	if err := file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := file.SetCellStyle(sheetName, "A1", "K1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	var ticket, lodging, allowance decimal.Decimal
	for i, trip := range trips {
		if err := ctx.Err(); err != nil {
			return err
		}

		row := i + 2
		values := []interface{}{
			trip.ID,
			trip.UserID,
			text(trip.TravelDate),
			text(trip.DestinationCountry),
			text(trip.DestinationCity),
			amount(trip.CostTickets),
			amount(trip.CostLodging),
			amount(trip.CostDailyAllowances),
			trip.Total().InexactFloat64(),
			text(trip.CostCenter),
			text(trip.TripType),
		}
		if err := file.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}

		ticket = ticket.Add(orZero(trip.CostTickets))
		lodging = lodging.Add(orZero(trip.CostLodging))
		allowance = allowance.Add(orZero(trip.CostDailyAllowances))
	}

	totalRow := len(trips) + 2
	totals := []interface{}{
		"Total", "", "", "", "",
		ticket.InexactFloat64(),
		lodging.InexactFloat64(),
		allowance.InexactFloat64(),
		ticket.Add(lodging).Add(allowance).InexactFloat64(),
	}
	if err := file.SetSheetRow(sheetName, fmt.Sprintf("A%d", totalRow), &totals); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}
	if err := file.SetCellStyle(sheetName, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("I%d", totalRow), totalStyle); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}
	if len(trips) > 0 {
		if err := file.SetCellStyle(sheetName, "F2", fmt.Sprintf("I%d", totalRow-1), moneyStyle); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}
	if err := file.SetColWidth(sheetName, "A", "K", 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Trip report exported", zap.Int("trips", len(trips)))
	return nil
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// amount leaves missing costs as empty cells
func amount(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
