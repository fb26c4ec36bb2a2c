package export

import (
	"fmt"
	"io"

	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const (
	ResultsSheet = "Results"
	FiltersSheet = "Filters"
	MenuSheet    = "Menu"
)

var (
	resultsHeader = []interface{}{"Vendor", "User 1 matches", "User 2 matches", "Distance (mi)", "Rating", "Rating %", "Relevant items"}
	menuHeader    = []interface{}{"Item", "Price", "Upvotes", "Total votes", "Rating %", "Matches user 1", "Matches user 2"}
)

// Workbook is what gets exported: the visible result rows, the filters
// that produced them and, when a vendor is open, its menu.
type Workbook struct {
	User1Filters string
	User2Filters string
	SearchQuery  string
	Sort         model.SortState
	TotalResults int
	Vendors      []model.DisplayVendor

	MenuVendor string
	MenuItems  []model.MenuItem
}

// XLSXExporter writes a Workbook as an Excel file.
type XLSXExporter struct{}

func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) Export(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ResultsSheet); err != nil {
		return fmt.Errorf("failed to name results sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeResults(f, bold, wb.Vendors); err != nil {
		return err
	}
	if err := writeFilters(f, bold, wb); err != nil {
		return err
	}
	if len(wb.MenuItems) > 0 {
		if err := writeMenu(f, bold, wb.MenuVendor, wb.MenuItems); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeResults(f *excelize.File, headerStyle int, vendors []model.DisplayVendor) error {
	if err := writeHeader(f, ResultsSheet, headerStyle, resultsHeader); err != nil {
		return err
	}
	for i, v := range vendors {
		row := []interface{}{
			v.VendorName,
			v.User1Count,
			v.User2Count,
			v.DistanceMiles,
			v.QuerySpecificRatingString,
			v.QuerySpecificRatingValue * 100,
			v.CombinedRelevantItemCount,
		}
		if err := setRow(f, ResultsSheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(ResultsSheet, "A", "A", 32)
}

func writeFilters(f *excelize.File, headerStyle int, wb Workbook) error {
	if _, err := f.NewSheet(FiltersSheet); err != nil {
		return fmt.Errorf("failed to add filters sheet: %w", err)
	}
	rows := [][]interface{}{
		{"User 1", wb.User1Filters},
		{"User 2", wb.User2Filters},
		{"Search", wb.SearchQuery},
		{"Sort", wb.Sort.String()},
		{"Total results", wb.TotalResults},
	}
	for i, row := range rows {
		if err := setRow(f, FiltersSheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(FiltersSheet, "A1", fmt.Sprintf("A%d", len(rows)), headerStyle); err != nil {
		return fmt.Errorf("failed to style filters sheet: %w", err)
	}
	return f.SetColWidth(FiltersSheet, "B", "B", 48)
}

func writeMenu(f *excelize.File, headerStyle int, vendor string, items []model.MenuItem) error {
	if _, err := f.NewSheet(MenuSheet); err != nil {
		return fmt.Errorf("failed to add menu sheet: %w", err)
	}
	if err := setRow(f, MenuSheet, 1, []interface{}{vendor}); err != nil {
		return err
	}
	if err := writeHeaderAt(f, MenuSheet, headerStyle, menuHeader, 2); err != nil {
		return err
	}
	for i, it := range items {
		row := []interface{}{
			it.Name,
			optionalPrice(it.Price),
			it.Rating.Upvotes,
			it.Rating.TotalVotes,
			it.Rating.Percentage * 100,
			yesNo(it.MatchesUser1),
			yesNo(it.MatchesUser2),
		}
		if err := setRow(f, MenuSheet, i+3, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(MenuSheet, "A", "A", 32)
}

func writeHeader(f *excelize.File, sheet string, style int, header []interface{}) error {
	return writeHeaderAt(f, sheet, style, header, 1)
}

func writeHeaderAt(f *excelize.File, sheet string, style int, header []interface{}, row int) error {
	if err := setRow(f, sheet, row, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), row)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), last, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func optionalPrice(p *float64) interface{} {
	if p == nil {
		return ""
	}
	return *p
}

func yesNo(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "yes"
	default:
		return "no"
	}
}
