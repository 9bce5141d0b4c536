// Package export renders host booking lists as spreadsheets.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"homestay/internal/app/dto"
	"homestay/internal/app/policies"
)

const (
	sheetName       = "Bookings"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{
	"Booking ID", "Property", "Traveler", "Traveler email", "Check-in", "Check-out",
	"Nights", "Total", "Currency", "Status", "Created at",
}

// XLSXExporter writes one row per booking under a styled header row.
type XLSXExporter struct {
	Now func() time.Time
}

func (e XLSXExporter) ExportBookings(ctx context.Context, bookings []dto.HostBookingSummary) (dto.File, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return dto.File{}, fmt.Errorf("export: rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return dto.File{}, fmt.Errorf("export: header style: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return dto.File{}, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return dto.File{}, err
	}

	for i, b := range bookings {
		if err := ctx.Err(); err != nil {
			return dto.File{}, err
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			b.ID, b.Property.Name, b.Traveler.Name, b.Traveler.Email, b.StartDate, b.EndDate,
			b.Nights, b.TotalPrice.Amount, b.TotalPrice.Currency, b.Status, b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return dto.File{}, fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(sheetName, "A", "K", 18)
	_ = f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return dto.File{}, fmt.Errorf("export: write workbook: %w", err)
	}
	return dto.File{
		Name:        "bookings-" + e.now().Format("20060102") + ".xlsx",
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}

func (e XLSXExporter) now() time.Time {
	if e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now().UTC()
}

var _ policies.BookingExporter = XLSXExporter{}
