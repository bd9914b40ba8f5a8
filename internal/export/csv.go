package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/oculit/ophtha-fetcher/internal/domain"
)

// CSV exports the full column set as UTF-8 CSV with a header row.
type CSV struct{}

// Format identifies the exporter.
func (CSV) Format() Format { return FormatCSV }

// Filename is the default output filename.
func (CSV) Filename() string { return FileCSV }

// Write serializes articles to path, one article per row.
func (e CSV) Write(path string, articles []*domain.Article) error {
	f, err := os.Create(path)
	if err != nil {
		return domain.NewExportError(string(FormatCSV), path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return removePartial(FormatCSV, path, err)
	}
	for _, a := range articles {
		if err := w.Write(row(a)); err != nil {
			f.Close()
			return removePartial(FormatCSV, path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return removePartial(FormatCSV, path, err)
	}
	if err := f.Close(); err != nil {
		return removePartial(FormatCSV, path, err)
	}
	return nil
}

// DOIURLs exports the reduced DOI table: title, doi, doi_url, a spreadsheet
// hyperlink formula, journal, and impact factor. Articles without a DOI get
// an empty hyperlink cell.
type DOIURLs struct{}

// Format identifies the exporter.
func (DOIURLs) Format() Format { return FormatDOIs }

// Filename is the default output filename.
func (DOIURLs) Filename() string { return FileDOIs }

// Write serializes the DOI table to path.
func (e DOIURLs) Write(path string, articles []*domain.Article) error {
	f, err := os.Create(path)
	if err != nil {
		return domain.NewExportError(string(FormatDOIs), path, err)
	}

	w := csv.NewWriter(f)
	header := []string{"title", "doi", "doi_url", "hyperlink", "journal", "impact_factor"}
	if err := w.Write(header); err != nil {
		f.Close()
		return removePartial(FormatDOIs, path, err)
	}

	for _, a := range articles {
		hyperlink := ""
		if a.DOI != domain.NoDOI {
			hyperlink = fmt.Sprintf(`=HYPERLINK(%q, %q)`, a.DOIURL, "Open DOI")
		}
		record := []string{
			a.Title, a.DOI, a.DOIURL, hyperlink,
			a.JournalName, formatImpactFactor(a.ImpactFactor),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return removePartial(FormatDOIs, path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return removePartial(FormatDOIs, path, err)
	}
	if err := f.Close(); err != nil {
		return removePartial(FormatDOIs, path, err)
	}
	return nil
}
