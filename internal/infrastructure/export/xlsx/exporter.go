package xlsx

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

const (
	sheetName   = "Outlets"
	contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{"ID", "Name", "Address", "Operating Hours", "Latitude", "Longitude", "Waze Link"}

// Exporter writes the outlet directory as a single-sheet workbook.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string {
	return contentType
}

func (e *Exporter) WriteOutlets(w io.Writer, outlets []domain.Outlet) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "G1", bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, o := range outlets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		row := []any{
			strconv.FormatInt(o.ID, 10),
			o.DisplayName(),
			o.Address,
			o.OperatingHours,
			coordinateCell(o.Latitude),
			coordinateCell(o.Longitude),
			o.WazeLink,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write outlet %d: %w", o.ID, err)
		}
	}

	if err := f.SetColWidth(sheetName, "B", "D", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func coordinateCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
