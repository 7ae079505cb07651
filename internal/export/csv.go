package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"neows-pipeline/internal/model"
)

func writeCSV(path string, events []model.CloseApproachEvent) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, ev := range events {
		if err := w.Write(row(ev)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
