package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	sheetSchedule     = "Schedule"
	sheetMemoryMap    = "Memory_Map"
	sheetFrameOrder   = "Frame Order"
	sheetFrameSummary = "Frame_Summary"
)

// ExportExcel writes the workbook with all four views as separate sheets.
// The Schedule sheet carries the object table and the presence grid side by
// side, separated by two blank columns.
func (r *Report) ExportExcel(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetSchedule)
	if err := r.writeScheduleSheet(f); err != nil {
		return err
	}
	if err := r.writeMemoryMapSheet(f); err != nil {
		return err
	}
	if err := r.writeFrameOrderSheet(f); err != nil {
		return err
	}
	if err := r.writeFrameSummarySheet(f); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func (r *Report) writeScheduleSheet(f *excelize.File) error {
	headers := []string{"Name", "Size", "Period", "Phase", "Start", "End", "Group"}
	for c, h := range headers {
		if err := setCell(f, sheetSchedule, c+1, 1, h); err != nil {
			return err
		}
	}
	for i, row := range r.Objects() {
		values := []any{row.Name, row.Size, row.Period, row.Phase, row.Start, row.End, row.Group}
		for c, v := range values {
			if err := setCell(f, sheetSchedule, c+1, i+2, v); err != nil {
				return err
			}
		}
	}

	// Presence grid to the right of the table, two blank columns apart.
	base := len(headers) + 2
	for c, h := range frameHeaders(r.Schedule.NumFrames) {
		if err := setCell(f, sheetSchedule, base+c+1, 1, h); err != nil {
			return err
		}
	}
	for i, row := range r.Presence() {
		for c, name := range row {
			if name == "" {
				continue
			}
			if err := setCell(f, sheetSchedule, base+c+1, i+2, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Report) writeMemoryMapSheet(f *excelize.File) error {
	if _, err := f.NewSheet(sheetMemoryMap); err != nil {
		return err
	}
	if err := setCell(f, sheetMemoryMap, 1, 1, "Bits"); err != nil {
		return err
	}
	for c, h := range frameHeaders(r.Schedule.NumFrames) {
		if err := setCell(f, sheetMemoryMap, c+2, 1, h); err != nil {
			return err
		}
	}
	for b, row := range r.MemoryMap() {
		if err := setCell(f, sheetMemoryMap, 1, b+2, b); err != nil {
			return err
		}
		for c, name := range row {
			if name == "" {
				continue
			}
			if err := setCell(f, sheetMemoryMap, c+2, b+2, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Report) writeFrameOrderSheet(f *excelize.File) error {
	if _, err := f.NewSheet(sheetFrameOrder); err != nil {
		return err
	}
	for c, h := range frameHeaders(r.Schedule.NumFrames) {
		if err := setCell(f, sheetFrameOrder, c+1, 1, h); err != nil {
			return err
		}
	}
	for frame, names := range r.FrameOrder() {
		for i, name := range names {
			if err := setCell(f, sheetFrameOrder, frame+1, i+2, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Report) writeFrameSummarySheet(f *excelize.File) error {
	if _, err := f.NewSheet(sheetFrameSummary); err != nil {
		return err
	}
	if err := setCell(f, sheetFrameSummary, 1, 1, "Objects"); err != nil {
		return err
	}
	for c, h := range frameHeaders(r.Schedule.NumFrames) {
		if err := setCell(f, sheetFrameSummary, c+2, 1, h); err != nil {
			return err
		}
	}
	for i, row := range r.FrameSummary() {
		if err := setCell(f, sheetFrameSummary, 1, i+2, row.Name); err != nil {
			return err
		}
		for c, start := range row.Starts {
			if start == nil {
				continue
			}
			if err := setCell(f, sheetFrameSummary, c+2, i+2, *start); err != nil {
				return err
			}
		}
	}
	return nil
}
