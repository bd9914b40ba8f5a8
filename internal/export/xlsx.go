package export

import (
	"github.com/xuri/excelize/v2"

	"github.com/oculit/ophtha-fetcher/internal/domain"
)

// maxColumnWidth caps auto-sized spreadsheet columns.
const maxColumnWidth = 50

// Column indexes (1-based) of the hyperlink cells in the shared column order.
const (
	colDOIURL    = 7
	colPubMedURL = 9
)

// Spreadsheet exports the full column set as an xlsx workbook. DOI and PubMed
// URL cells are rendered as clickable hyperlinks with fixed display text.
type Spreadsheet struct{}

// Format identifies the exporter.
func (Spreadsheet) Format() Format { return FormatSpreadsheet }

// Filename is the default output filename.
func (Spreadsheet) Filename() string { return FileSpreadsheet }

// Write serializes articles to path.
func (e Spreadsheet) Write(path string, articles []*domain.Article) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	widths := make([]int, len(csvHeader))

	for col, title := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return domain.NewExportError(string(FormatSpreadsheet), path, err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return domain.NewExportError(string(FormatSpreadsheet), path, err)
		}
		widths[col] = len(title)
	}

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "1265BE", Underline: "single"},
	})
	if err != nil {
		return domain.NewExportError(string(FormatSpreadsheet), path, err)
	}

	for i, a := range articles {
		rowNum := i + 2
		for col, value := range row(a) {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return domain.NewExportError(string(FormatSpreadsheet), path, err)
			}

			display := value
			link := ""
			switch col + 1 {
			case colDOIURL:
				if a.DOIURL != "" {
					display, link = "Open DOI", a.DOIURL
				}
			case colPubMedURL:
				display, link = "PubMed", a.PubMedURL
			}

			if err := f.SetCellValue(sheet, cell, display); err != nil {
				return domain.NewExportError(string(FormatSpreadsheet), path, err)
			}
			if link != "" {
				if err := f.SetCellHyperLink(sheet, cell, link, "External"); err != nil {
					return domain.NewExportError(string(FormatSpreadsheet), path, err)
				}
				if err := f.SetCellStyle(sheet, cell, cell, linkStyle); err != nil {
					return domain.NewExportError(string(FormatSpreadsheet), path, err)
				}
			}

			if w := len(display); w > widths[col] {
				widths[col] = w
			}
		}
	}

	for col, w := range widths {
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return domain.NewExportError(string(FormatSpreadsheet), path, err)
		}
		if err := f.SetColWidth(sheet, name, name, float64(w)+2); err != nil {
			return domain.NewExportError(string(FormatSpreadsheet), path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return removePartial(FormatSpreadsheet, path, err)
	}
	return nil
}
