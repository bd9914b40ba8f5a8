// Package query composes E-utilities search expressions from a SearchRequest.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/oculit/ophtha-fetcher/internal/catalog"
	"github.com/oculit/ophtha-fetcher/internal/domain"
)

// DateWindow describes the effective time window of a built query. The filter
// stage re-checks it against the raw record dates because the DP field is
// free-form and the [PDAT] clause alone over-matches.
type DateWindow struct {
	// Mode is the requested date mode.
	Mode domain.DateMode

	// Start is the inclusive lower bound of the window.
	Start time.Time

	// End is the inclusive upper bound of the window.
	End time.Time
}

// Query is the output of Build.
type Query struct {
	// Term is the search expression sent to esearch.
	Term string

	// Window is the effective date window for client-side re-checking.
	Window DateWindow

	// UncatalogedJournal reports that the journal filter fell back to a
	// "<name>"[Journal] clause for a journal outside the catalog. The filter
	// stage bypasses catalog membership in that case.
	UncatalogedJournal bool
}

// Build composes the search expression and effective date window for a
// request. now anchors the date clauses and is injected for testability.
func Build(req domain.SearchRequest, cat *catalog.Catalog, now time.Time) Query {
	q := Query{}

	var clauses []string
	if jc, uncataloged := journalClause(req, cat); jc != "" {
		clauses = append(clauses, jc)
		q.UncatalogedJournal = uncataloged
	}

	dateClause, window := dateClause(req, now)
	clauses = append(clauses, dateClause)
	q.Window = window

	clauses = append(clauses, `English[lang]`, `"Journal Article"[Publication Type]`)

	if kw := strings.TrimSpace(req.Keyword); kw != "" {
		// A free-text keyword is mandatory, not a boost.
		clauses = append(clauses, fmt.Sprintf("%q[Title/Abstract]", kw))
	} else {
		clauses = append(clauses, boostClause(req.Subspecialty))
	}

	q.Term = strings.Join(clauses, " AND ")
	return q
}

// BuildWidened composes a recall-recovery query: the [PDAT] clause covers the
// last days days, while journal eligibility and the client-side window keep
// the original request's mode. Widening compensates for records whose indexed
// date lags their raw date; the filter still enforces the requested window.
func BuildWidened(req domain.SearchRequest, cat *catalog.Catalog, now time.Time, days int) Query {
	widened := req
	widened.DateMode = domain.DateModeDaysBack
	widened.DaysBack = days

	q := Query{}

	var clauses []string
	// Journal eligibility follows the original mode, not the widened one.
	if jc, uncataloged := journalClause(req, cat); jc != "" {
		clauses = append(clauses, jc)
		q.UncatalogedJournal = uncataloged
	}

	dateClause, _ := dateClause(widened, now)
	clauses = append(clauses, dateClause)

	q.Window = windowFor(req, now)

	clauses = append(clauses, `English[lang]`, `"Journal Article"[Publication Type]`)

	if kw := strings.TrimSpace(req.Keyword); kw != "" {
		clauses = append(clauses, fmt.Sprintf("%q[Title/Abstract]", kw))
	} else {
		clauses = append(clauses, boostClause(req.Subspecialty))
	}

	q.Term = strings.Join(clauses, " AND ")
	return q
}

// windowFor returns the client-side window for a request without building the
// full query.
func windowFor(req domain.SearchRequest, now time.Time) DateWindow {
	_, w := dateClause(req, now)
	return w
}

// journalClause builds the journal restriction. The second return value is
// true when the requested journal did not resolve against the catalog.
func journalClause(req domain.SearchRequest, cat *catalog.Catalog) (string, bool) {
	if j := strings.TrimSpace(req.Journal); j != "" {
		if entry, ok := cat.Lookup(j); ok {
			return fmt.Sprintf("%s[IS]", entry.ISSN), false
		}
		return fmt.Sprintf("%q[Journal]", j), true
	}

	eligible := cat.Eligible(req.DateMode, req.MinImpactFactor)
	if len(eligible) == 0 {
		return "", false
	}
	terms := make([]string, 0, len(eligible))
	for _, j := range eligible {
		terms = append(terms, fmt.Sprintf("%s[IS]", j.ISSN))
	}
	return "(" + strings.Join(terms, " OR ") + ")", false
}

// dateClause builds the [PDAT] restriction and the matching client-side window.
func dateClause(req domain.SearchRequest, now time.Time) (string, DateWindow) {
	switch req.DateMode {
	case domain.DateModeToday:
		// Broad month clause; the filter narrows to the exact day.
		return fmt.Sprintf("%s[PDAT]", now.Format("2006/01")), DateWindow{
			Mode:  domain.DateModeToday,
			Start: now,
			End:   now,
		}
	case domain.DateModeThisMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return fmt.Sprintf("%s[PDAT]", now.Format("2006/01")), DateWindow{
			Mode:  domain.DateModeThisMonth,
			Start: monthStart,
			End:   now,
		}
	default:
		past := now.AddDate(0, 0, -req.DaysBack)
		clause := fmt.Sprintf("(%q[PDAT] : %q[PDAT])",
			past.Format("2006/01/02"), now.Format("2006/01/02"))
		return clause, DateWindow{
			Mode:  domain.DateModeDaysBack,
			Start: past,
			End:   now,
		}
	}
}

// boostClause OR-combines the subspecialty boost phrases as Title/Abstract
// terms. For "all" the generic list is broad enough not to narrow in practice.
func boostClause(subspecialty string) string {
	boosts := catalog.BoostKeywords(subspecialty)
	terms := make([]string, 0, len(boosts))
	for _, kw := range boosts {
		terms = append(terms, fmt.Sprintf("%q[Title/Abstract]", kw))
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}
