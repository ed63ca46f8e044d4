package xlsx

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

func TestWriteOutletsProducesReadableWorkbook(t *testing.T) {
	lat, lng := 3.1579, 101.7123
	outlets := []domain.Outlet{
		{ID: 1, Name: "Subway KLCC", Address: "Suria KLCC", OperatingHours: "Daily 10:00 AM - 10:00 PM", Latitude: &lat, Longitude: &lng},
		{ID: 2, Address: "Cheras"},
	}

	var buf bytes.Buffer
	if err := NewExporter().WriteOutlets(&buf, outlets); err != nil {
		t.Fatalf("WriteOutlets() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "Name" || rows[1][1] != "Subway KLCC" || rows[1][4] != "3.1579" {
		t.Fatalf("unexpected first rows: %v", rows[:2])
	}
	if rows[2][1] != domain.UnknownOutletName {
		t.Fatalf("expected sentinel name for unnamed outlet, got %q", rows[2][1])
	}
}

func TestContentTypeIsSpreadsheet(t *testing.T) {
	if got := NewExporter().ContentType(); got != contentType {
		t.Fatalf("unexpected content type %q", got)
	}
}
