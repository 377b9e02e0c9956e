package excel

import (
	"fmt"
	"io"
	"math"

	"balloonsum/domain/summary"
	"balloonsum/internal/aggregate"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	profileSheet = "Profiles"
)

// Exporter writes a summary table and its profiles as an Excel workbook
type Exporter struct{}

// NewExporter creates a workbook exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes the workbook to w
func (e *Exporter) Export(w io.Writer, table summary.Table, profiles []aggregate.Profile) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if err := e.writeSummarySheet(f, table); err != nil {
		return err
	}

	if len(profiles) > 0 {
		if _, err := f.NewSheet(profileSheet); err != nil {
			return fmt.Errorf("failed to create profile sheet: %w", err)
		}
		if err := e.writeProfileSheet(f, profiles); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *Exporter) writeSummarySheet(f *excelize.File, table summary.Table) error {
	header := append([]interface{}{"dataset"}, toCells(summary.Columns())...)
	if err := writeRow(f, summarySheet, 1, header); err != nil {
		return err
	}

	for i, row := range table.Rows() {
		cells := []interface{}{
			row.Dataset,
			row.NumEpisodes,
			row.OutOfPower,
			row.ZeroPressure,
			row.EnvelopeBurst,
			numCell(row.MeanRewardFinished),
			numCell(row.MeanTWRFinished),
			numCell(row.MeanRewardAll),
			numCell(row.MeanTWRAll),
		}
		if err := writeRow(f, summarySheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeProfileSheet(f *excelize.File, profiles []aggregate.Profile) error {
	header := []interface{}{
		"dataset", "field", "std dev", "min", "q25", "median", "q75", "max", "skewness", "kurtosis",
	}
	if err := writeRow(f, profileSheet, 1, header); err != nil {
		return err
	}

	rowIdx := 2
	for _, p := range profiles {
		for _, fp := range []struct {
			field string
			prof  aggregate.FieldProfile
		}{
			{"cumulative_reward", p.Reward},
			{"time_within_radius", p.TWR},
		} {
			cells := []interface{}{
				p.Dataset, fp.field,
				numCell(fp.prof.StdDev), numCell(fp.prof.Min), numCell(fp.prof.Q25),
				numCell(fp.prof.Median), numCell(fp.prof.Q75), numCell(fp.prof.Max),
				numCell(fp.prof.Skewness), numCell(fp.prof.Kurtosis),
			}
			if err := writeRow(f, profileSheet, rowIdx, cells); err != nil {
				return err
			}
			rowIdx++
		}
	}
	return nil
}

// writeRow sets one sheet row starting at column A
func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for col, value := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("invalid cell coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// numCell keeps NaN visible in the workbook; xlsx has no NaN number
func numCell(v float64) interface{} {
	if math.IsNaN(v) {
		return "NaN"
	}
	return v
}

func toCells(headers []string) []interface{} {
	out := make([]interface{}, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}
