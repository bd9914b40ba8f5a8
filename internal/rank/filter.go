// Package rank post-filters parsed articles and assigns relevance scores.
package rank

import (
	"fmt"
	"strings"
	"time"

	"github.com/oculit/ophtha-fetcher/internal/catalog"
	"github.com/oculit/ophtha-fetcher/internal/domain"
	"github.com/oculit/ophtha-fetcher/internal/query"
)

// ExclusionTerms drop an article when any of them appears in the title,
// case-insensitively. They weed out replies, errata and letters.
var ExclusionTerms = []string{
	"reply", "erratum", "error", "correction",
	"letter", "comment", "response", "correspondence",
}

// Filter applies the post-parse filters in order: title exclusions, catalog
// membership, JAMA disambiguation, and the date-window re-check. The query
// already restricts by [PDAT], but the raw DP field is free-form, so both
// guards are kept.
type Filter struct {
	// Eligible is the catalog subset in scope for this search.
	Eligible *catalog.Catalog

	// RequestedJournal is the raw journal filter from the request, used for
	// JAMA disambiguation. Empty when no journal filter was given.
	RequestedJournal string

	// BypassCatalog skips the membership check. Set when the journal filter
	// fell back to an uncataloged [Journal] clause.
	BypassCatalog bool

	// Window is the effective date window from the query builder.
	Window query.DateWindow
}

// Apply returns the articles surviving all filters, preserving order.
func (f Filter) Apply(articles []*domain.Article) []*domain.Article {
	kept := make([]*domain.Article, 0, len(articles))
	for _, a := range articles {
		if f.keep(a) {
			kept = append(kept, a)
		}
	}
	return kept
}

func (f Filter) keep(a *domain.Article) bool {
	if TitleExcluded(a.Title) {
		return false
	}

	if !f.BypassCatalog && f.Eligible != nil && !f.Eligible.Contains(a.JournalISSN, a.JournalName) {
		return false
	}

	if !f.jamaAllowed(a) {
		return false
	}

	return f.inWindow(a)
}

// TitleExcluded reports whether a title carries any exclusion term.
func TitleExcluded(title string) bool {
	lower := strings.ToLower(title)
	for _, term := range ExclusionTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// jamaAllowed keeps "JAMA" and "JAMA Ophthalmology" from colliding: a request
// for one drops results bearing the other's ISSN.
func (f Filter) jamaAllowed(a *domain.Article) bool {
	requested := strings.ToLower(strings.TrimSpace(f.RequestedJournal))
	switch {
	case strings.HasPrefix(requested, "jama ophthalmol"):
		return a.JournalISSN != catalog.ISSNJAMA
	case requested == "jama":
		return a.JournalISSN != catalog.ISSNJAMAOphthalmology
	default:
		return true
	}
}

// inWindow applies the client-side date re-check. days_back searches rely on
// the [PDAT] clause alone.
func (f Filter) inWindow(a *domain.Article) bool {
	switch f.Window.Mode {
	case domain.DateModeToday:
		today := f.Window.End
		if sameDay(a.PubDate, today) {
			return true
		}
		return containsAny(a.PubDateRaw, dayForms(today))
	case domain.DateModeThisMonth:
		now := f.Window.End
		if a.PubDate.Year() == now.Year() && a.PubDate.Month() == now.Month() {
			return true
		}
		return containsAny(a.PubDateRaw, monthForms(now))
	default:
		return true
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// dayForms lists the accepted textual forms of one calendar day.
func dayForms(t time.Time) []string {
	return []string{
		t.Format("2006-01-02"),
		t.Format("2006/01/02"),
		fmt.Sprintf("%d %s %d", t.Day(), t.Format("Jan"), t.Year()),
		fmt.Sprintf("%s %d, %d", t.Format("Jan"), t.Day(), t.Year()),
	}
}

// monthForms lists the accepted textual forms of one calendar month.
func monthForms(t time.Time) []string {
	return []string{
		t.Format("2006-01"),
		t.Format("2006/01"),
		t.Format("Jan 2006"),
		t.Format("2006 Jan"),
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
