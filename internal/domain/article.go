// Package domain contains the core types shared across the fetcher pipeline.
package domain

import (
	"strings"
	"time"
)

const (
	// NoDOI is the placeholder stored when a record carries no DOI.
	NoDOI = "N/A"

	// NoAbstract is the placeholder stored when a record carries no abstract.
	NoAbstract = "No abstract available"

	// AbstractPreviewLength is the number of characters kept in AbstractPreview
	// before truncation.
	AbstractPreviewLength = 250

	// DOIBaseURL is the canonical DOI resolver prefix.
	DOIBaseURL = "https://doi.org/"

	// PubMedBaseURL is the canonical PubMed article URL prefix.
	PubMedBaseURL = "https://pubmed.ncbi.nlm.nih.gov/"
)

// FallbackDate is the date assigned to records with no parseable date.
// It is used for sorting only and is never presented to the user.
var FallbackDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Article is the canonical parsed bibliographic record.
//
// Articles are created by the MEDLINE parser, mutated only by the rank pass
// (RelevanceScore assignment), and read-only afterwards.
type Article struct {
	// PMID is the PubMed identifier. Non-empty and unique within a result set.
	PMID string

	// Title is the article title with markup stripped.
	Title string

	// Authors is the ordered author list as full names.
	Authors []string

	// JournalName is the full journal title as reported by the record.
	JournalName string

	// JournalISSN is the journal ISSN, if present on the record.
	JournalISSN string

	// ImpactFactor is the journal impact factor looked up from the catalog.
	// Zero when the journal is not cataloged.
	ImpactFactor float64

	// PubDateRaw is the raw date string the publication date was parsed from.
	PubDateRaw string

	// PubDate is the parsed publication date, never before 1900-01-01.
	PubDate time.Time

	// DOI is the digital object identifier, or NoDOI when absent.
	DOI string

	// DOIURL is the resolver URL for DOI. Empty iff DOI == NoDOI.
	DOIURL string

	// PubMedURL is the canonical PubMed page for this PMID.
	PubMedURL string

	// Abstract is the full abstract text, or NoAbstract when absent.
	Abstract string

	// AbstractPreview is the first AbstractPreviewLength characters of the
	// abstract, with "..." appended when truncated.
	AbstractPreview string

	// Keywords is the ordered author/MeSH keyword list from the record.
	Keywords []string

	// PublicationTypes is the ordered publication type list from the record.
	PublicationTypes []string

	// RelevanceScore is the composite boost-keyword score assigned by the
	// rank pass. Always >= 0.
	RelevanceScore int
}

// SetDOI stores the DOI and keeps the DOI/DOIURL invariant.
func (a *Article) SetDOI(doi string) {
	doi = strings.TrimSpace(doi)
	if doi == "" || doi == NoDOI {
		a.DOI = NoDOI
		a.DOIURL = ""
		return
	}
	a.DOI = doi
	a.DOIURL = DOIBaseURL + doi
}

// SetAbstract stores the abstract and derives the preview.
func (a *Article) SetAbstract(abstract string) {
	abstract = strings.TrimSpace(abstract)
	if abstract == "" {
		a.Abstract = NoAbstract
	} else {
		a.Abstract = abstract
	}
	a.AbstractPreview = PreviewOf(a.Abstract)
}

// PreviewOf returns the first AbstractPreviewLength characters of s, with an
// ellipsis appended when s is longer.
func PreviewOf(s string) string {
	runes := []rune(s)
	if len(runes) <= AbstractPreviewLength {
		return s
	}
	return string(runes[:AbstractPreviewLength]) + "..."
}

// AuthorString returns the comma-joined author list.
func (a *Article) AuthorString() string {
	return strings.Join(a.Authors, ", ")
}

// SearchResult is the output of one pipeline invocation.
type SearchResult struct {
	// Articles is the ranked, truncated article list. Never nil.
	Articles []*Article

	// TotalFound is the total match count reported by the search phase of the
	// winning amplification pass.
	TotalFound int

	// Truncated reports whether post-filter survivors exceeded MaxResults.
	Truncated bool
}

// Phase identifies a pipeline stage for progress reporting.
type Phase string

// Pipeline phases in execution order.
const (
	PhaseSearch Phase = "search"
	PhaseFetch  Phase = "fetch"
	PhaseParse  Phase = "parse"
	PhaseFilter Phase = "filter"
	PhaseRank   Phase = "rank"
	PhaseExport Phase = "export"
)

// ProgressFunc receives pipeline progress. done and total refer to units of
// the reported phase (batches for fetch, records for parse, and so on).
// A nil ProgressFunc is always accepted.
type ProgressFunc func(phase Phase, done, total int)
