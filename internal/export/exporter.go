// Package export serializes ranked article lists to the supported output
// formats.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/oculit/ophtha-fetcher/internal/domain"
)

// Format identifies an output format.
type Format string

// Supported output formats.
const (
	FormatCSV         Format = "csv"
	FormatText        Format = "text"
	FormatSpreadsheet Format = "xlsx"
	FormatDOIs        Format = "dois"
)

// Default output filenames.
const (
	FileCSV         = "ophthalmology_articles.csv"
	FileText        = "ophthalmology_articles.txt"
	FileSpreadsheet = "ophthalmology_articles.xlsx"
	FileDOIs        = "doi_urls.csv"
)

// Exporter writes a ranked article list to a file. Implementations are pure
// functions of their input: re-running on the same input yields byte-identical
// files, except for the embedded timestamp in the text header. On error the
// partial file is removed.
type Exporter interface {
	// Format identifies the exporter.
	Format() Format

	// Filename is the default output filename.
	Filename() string

	// Write serializes articles to path.
	Write(path string, articles []*domain.Article) error
}

// ForFormat resolves a format name to its exporters. "all" selects every
// format.
func ForFormat(name string) ([]Exporter, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatCSV:
		return []Exporter{CSV{}}, nil
	case FormatText:
		return []Exporter{Text{}}, nil
	case FormatSpreadsheet:
		return []Exporter{Spreadsheet{}}, nil
	case FormatDOIs:
		return []Exporter{DOIURLs{}}, nil
	case "all":
		return []Exporter{CSV{}, Text{}, Spreadsheet{}, DOIURLs{}}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", name)
	}
}

// csvHeader is the exact column set of the CSV and spreadsheet exports.
var csvHeader = []string{
	"title", "authors", "journal", "impact_factor", "pub_date",
	"doi", "doi_url", "pmid", "pubmed_url", "abstract_preview",
	"full_abstract", "keywords", "publication_type", "relevance_score",
}

// row flattens one article into the shared column order.
func row(a *domain.Article) []string {
	return []string{
		a.Title,
		a.AuthorString(),
		a.JournalName,
		formatImpactFactor(a.ImpactFactor),
		a.PubDate.Format("2006-01-02"),
		a.DOI,
		a.DOIURL,
		a.PMID,
		a.PubMedURL,
		a.AbstractPreview,
		a.Abstract,
		strings.Join(a.Keywords, "; "),
		strings.Join(a.PublicationTypes, "; "),
		fmt.Sprintf("%d", a.RelevanceScore),
	}
}

func formatImpactFactor(f float64) string {
	return fmt.Sprintf("%.1f", f)
}

// removePartial deletes a partially written file and wraps the cause.
func removePartial(format Format, path string, cause error) error {
	_ = os.Remove(path)
	return domain.NewExportError(string(format), path, cause)
}
