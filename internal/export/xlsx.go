package export

import (
	"github.com/xuri/excelize/v2"

	"neows-pipeline/internal/model"
)

const sheetName = "NeoWs"

func writeXLSX(path string, events []model.CloseApproachEvent) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	for i, name := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, name)
	}

	// Data starts under the header row. Dates go in as preformatted strings
	// so spreadsheet date coercion cannot shift them across timezones.
	for i, ev := range events {
		values := []any{
			ev.ObjectID,
			ev.Name,
			ev.CloseApproachDate.Format(model.DateLayout),
			ev.AbsoluteMagnitudeH,
			ev.DiameterMinKM,
			ev.DiameterMaxKM,
			ev.IsPotentiallyHazardous,
			ev.RelativeVelocityKPS,
			ev.MissDistanceKM,
			ev.OrbitingBody,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := 1; i <= len(header); i++ {
		col, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(sheetName, col, col, 22)
	}

	f.SetActiveSheet(index)
	return f.SaveAs(path)
}
