package export

import (
	"fmt"
	"io"
	"time"

	"agendei/internal/models"

	"github.com/xuri/excelize/v2"
)

// WriteSchedule renders a provider's appointments for a date range as an XLSX
// workbook and streams it to w.
func WriteSchedule(w io.Writer, providerName string, start, end time.Time, appointments []*models.Appointment) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Agenda"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Agenda de %s: %s a %s",
		providerName, start.Format("02/01/2006"), end.Format("02/01/2006")))

	headers := []string{"Data", "Hora", "Cliente", "Criado em"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for row, a := range appointments {
		clientName := ""
		if a.User != nil {
			clientName = a.User.Name
		}
		values := []any{
			a.Date.Format("02/01/2006"),
			a.Date.Format("15:04"),
			clientName,
			a.CreatedAt.Format("02/01/2006 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "D", 20)
	_ = f.MergeCell(sheetName, "A1", "D1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
