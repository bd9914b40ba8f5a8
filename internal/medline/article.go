package medline

import (
	"fmt"
	"strings"
	"time"

	"github.com/oculit/ophtha-fetcher/internal/catalog"
	"github.com/oculit/ophtha-fetcher/internal/domain"
)

// MEDLINE tags consumed by ToArticle.
const (
	tagPMID        = "PMID"
	tagTitle       = "TI"
	tagAbstract    = "AB"
	tagFullAuthor  = "FAU"
	tagAuthor      = "AU"
	tagJournal     = "JT"
	tagISSN        = "IS"
	tagPubDate     = "DP"
	tagElectronic  = "DEP"
	tagEntryDate   = "EDAT"
	tagMeSHDate    = "MHDA"
	tagArticleID   = "AID"
	tagPubType     = "PT"
	tagOtherTerm   = "OT"
	tagMeSHHeading = "MH"
)

// ToArticle converts a raw record into a canonical Article, looking up the
// impact factor from the catalog. A record without a PMID is malformed and
// returns an error wrapping domain.ErrParse; callers log and skip it.
func ToArticle(rec Record, cat *catalog.Catalog) (*domain.Article, error) {
	pmid := strings.TrimSpace(rec.Get(tagPMID))
	if pmid == "" {
		return nil, fmt.Errorf("record has no PMID: %w", domain.ErrParse)
	}

	a := &domain.Article{
		PMID:             pmid,
		Title:            strings.TrimSpace(rec.Get(tagTitle)),
		Authors:          extractAuthors(rec),
		JournalName:      strings.TrimSpace(rec.Get(tagJournal)),
		JournalISSN:      extractISSN(rec.All(tagISSN)),
		PublicationTypes: rec.All(tagPubType),
		Keywords:         extractKeywords(rec),
		PubMedURL:        domain.PubMedBaseURL + pmid + "/",
	}

	a.ImpactFactor = cat.ImpactFactor(a.JournalISSN, a.JournalName)
	a.SetDOI(extractDOI(rec.All(tagArticleID)))
	a.SetAbstract(rec.Get(tagAbstract))

	a.PubDateRaw, a.PubDate = extractDate(rec)

	return a, nil
}

// extractDate picks the raw date by priority (electronic publication, entry
// creation, MeSH added, publication) and parses it.
func extractDate(rec Record) (string, time.Time) {
	for _, tag := range []string{tagElectronic, tagEntryDate, tagMeSHDate, tagPubDate} {
		if raw := strings.TrimSpace(rec.Get(tag)); raw != "" {
			return raw, ParseDate(raw)
		}
	}
	return "", domain.FallbackDate
}

// extractDOI selects the article ID ending in "[doi]" and strips the suffix.
// Absent DOIs are reported as "" and stored as N/A by SetDOI.
func extractDOI(articleIDs []string) string {
	for _, aid := range articleIDs {
		if strings.HasSuffix(aid, "[doi]") {
			return strings.TrimSpace(strings.TrimSuffix(aid, "[doi]"))
		}
	}
	return ""
}

// extractISSN picks the linking ISSN when present, otherwise the first one.
// IS values look like "0886-3350 (Linking)".
func extractISSN(issns []string) string {
	first := ""
	for _, is := range issns {
		fields := strings.Fields(is)
		if len(fields) == 0 {
			continue
		}
		if first == "" {
			first = fields[0]
		}
		if strings.Contains(is, "(Linking)") {
			return fields[0]
		}
	}
	return first
}

// extractAuthors prefers full author names (FAU) and falls back to the
// abbreviated AU form.
func extractAuthors(rec Record) []string {
	authors := rec.All(tagFullAuthor)
	if len(authors) == 0 {
		authors = rec.All(tagAuthor)
	}
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// extractKeywords returns author keywords (OT) followed by MeSH headings with
// qualifiers stripped, de-duplicated case-insensitively in order.
func extractKeywords(rec Record) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(kw string) {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			return
		}
		key := strings.ToLower(kw)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}

	for _, ot := range rec.All(tagOtherTerm) {
		add(strings.TrimPrefix(ot, "*"))
	}
	for _, mh := range rec.All(tagMeSHHeading) {
		// "Glaucoma/surgery*" -> "Glaucoma"
		term := strings.SplitN(mh, "/", 2)[0]
		add(strings.TrimPrefix(term, "*"))
	}
	return out
}
