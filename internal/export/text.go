package export

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oculit/ophtha-fetcher/internal/domain"
)

// separatorWidth is the dash count between article blocks.
const separatorWidth = 80

// Text exports a human-readable listing with numbered article blocks.
type Text struct {
	// Now stamps the header; defaults to time.Now. Injected in tests.
	Now func() time.Time
}

// Format identifies the exporter.
func (Text) Format() Format { return FormatText }

// Filename is the default output filename.
func (Text) Filename() string { return FileText }

// Write serializes articles to path.
func (e Text) Write(path string, articles []*domain.Article) error {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	f, err := os.Create(path)
	if err != nil {
		return domain.NewExportError(string(FormatText), path, err)
	}

	w := bufio.NewWriter(f)
	sep := strings.Repeat("-", separatorWidth)

	fmt.Fprintf(w, "Ophthalmology Articles - exported %s\n", now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Articles: %d\n", len(articles))
	fmt.Fprintln(w, sep)

	for i, a := range articles {
		fmt.Fprintf(w, "%d. Title: %s\n", i+1, a.Title)
		fmt.Fprintf(w, "   Authors: %s\n", a.AuthorString())
		fmt.Fprintf(w, "   Journal: %s (IF: %s)\n", a.JournalName, formatImpactFactor(a.ImpactFactor))
		fmt.Fprintf(w, "   Publication Date: %s\n", a.PubDate.Format("2006-01-02"))
		fmt.Fprintf(w, "   DOI: %s\n", a.DOI)
		fmt.Fprintf(w, "   DOI URL: %s\n", a.DOIURL)
		fmt.Fprintf(w, "   PubMed URL: %s\n", a.PubMedURL)
		fmt.Fprintf(w, "   Abstract: %s\n", a.Abstract)
		fmt.Fprintf(w, "   Keywords: %s\n", strings.Join(a.Keywords, "; "))
		fmt.Fprintln(w, sep)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return removePartial(FormatText, path, err)
	}
	if err := f.Close(); err != nil {
		return removePartial(FormatText, path, err)
	}
	return nil
}
