// Package catalog holds the static journal catalog and subspecialty keyword
// packs. Both are immutable for a process lifetime.
package catalog

import (
	"strings"

	"github.com/oculit/ophtha-fetcher/internal/domain"
)

// Journal is one static catalog entry.
type Journal struct {
	// Name is the canonical journal title.
	Name string

	// ISSN is the journal ISSN used for query construction and lookup.
	ISSN string

	// ImpactFactor is the journal impact factor. Always >= 0.
	ImpactFactor float64

	// General marks the high-impact general-medicine group. Time-window
	// searches (today, this month) exclude general journals.
	General bool
}

// ISSNs relevant to JAMA disambiguation.
const (
	ISSNJAMA              = "0098-7484"
	ISSNJAMAOphthalmology = "2168-6165"
)

// defaultJournals is the built-in catalog: ophthalmology-specific titles
// followed by the general high-impact group.
var defaultJournals = []Journal{
	{Name: "Progress in Retinal and Eye Research", ISSN: "1350-9462", ImpactFactor: 17.8},
	{Name: "Ophthalmology", ISSN: "0161-6420", ImpactFactor: 13.1},
	{Name: "JAMA Ophthalmology", ISSN: ISSNJAMAOphthalmology, ImpactFactor: 7.8},
	{Name: "British Journal of Ophthalmology", ISSN: "0007-1161", ImpactFactor: 4.1},
	{Name: "American Journal of Ophthalmology", ISSN: "0002-9394", ImpactFactor: 4.2},
	{Name: "Ophthalmology Retina", ISSN: "2468-6530", ImpactFactor: 4.9},
	{Name: "Retina", ISSN: "0275-004X", ImpactFactor: 3.3},
	{Name: "Investigative Ophthalmology & Visual Science", ISSN: "0146-0404", ImpactFactor: 5.0},
	{Name: "Acta Ophthalmologica", ISSN: "1755-375X", ImpactFactor: 3.0},
	{Name: "Eye", ISSN: "0950-222X", ImpactFactor: 2.8},
	{Name: "Cornea", ISSN: "0277-3740", ImpactFactor: 1.9},
	{Name: "Journal of Cataract and Refractive Surgery", ISSN: "0886-3350", ImpactFactor: 2.9},
	{Name: "Journal of Refractive Surgery", ISSN: "1081-597X", ImpactFactor: 2.9},
	{Name: "Journal of Glaucoma", ISSN: "1057-0829", ImpactFactor: 2.0},
	{Name: "Graefe's Archive for Clinical and Experimental Ophthalmology", ISSN: "0721-832X", ImpactFactor: 2.4},
	{Name: "Survey of Ophthalmology", ISSN: "0039-6257", ImpactFactor: 5.1},
	{Name: "Ocular Surface", ISSN: "1542-0124", ImpactFactor: 5.9},
	{Name: "Experimental Eye Research", ISSN: "0014-4835", ImpactFactor: 3.0},
	{Name: "Current Opinion in Ophthalmology", ISSN: "1040-8738", ImpactFactor: 3.0},
	{Name: "Clinical and Experimental Ophthalmology", ISSN: "1442-6404", ImpactFactor: 4.0},

	{Name: "Nature", ISSN: "0028-0836", ImpactFactor: 50.5, General: true},
	{Name: "Science", ISSN: "0036-8075", ImpactFactor: 44.7, General: true},
	{Name: "New England Journal of Medicine", ISSN: "0028-4793", ImpactFactor: 96.2, General: true},
	{Name: "Lancet", ISSN: "0140-6736", ImpactFactor: 98.4, General: true},
	{Name: "JAMA", ISSN: ISSNJAMA, ImpactFactor: 63.1, General: true},
	{Name: "Cell", ISSN: "0092-8674", ImpactFactor: 45.5, General: true},
	{Name: "BMJ", ISSN: "0959-8138", ImpactFactor: 93.6, General: true},
	{Name: "Nature Medicine", ISSN: "1078-8956", ImpactFactor: 58.7, General: true},
}

// Catalog is an immutable journal catalog with ISSN and name indexes.
type Catalog struct {
	journals []Journal
	byISSN   map[string]Journal
	byName   map[string]Journal
}

// New builds a catalog from the given entries.
func New(journals []Journal) *Catalog {
	c := &Catalog{
		journals: journals,
		byISSN:   make(map[string]Journal, len(journals)),
		byName:   make(map[string]Journal, len(journals)),
	}
	for _, j := range journals {
		c.byISSN[j.ISSN] = j
		c.byName[strings.ToLower(j.Name)] = j
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(defaultJournals)
}

// Lookup resolves an exact journal name (case-insensitive) or ISSN to a
// catalog entry.
func (c *Catalog) Lookup(nameOrISSN string) (Journal, bool) {
	key := strings.TrimSpace(nameOrISSN)
	if j, ok := c.byISSN[key]; ok {
		return j, true
	}
	j, ok := c.byName[strings.ToLower(key)]
	return j, ok
}

// ImpactFactor returns the impact factor for an article, trying ISSN first,
// then journal name. Unknown journals score 0.
func (c *Catalog) ImpactFactor(issn, name string) float64 {
	if j, ok := c.byISSN[issn]; ok {
		return j.ImpactFactor
	}
	if j, ok := c.byName[strings.ToLower(name)]; ok {
		return j.ImpactFactor
	}
	return 0
}

// Contains reports whether either the ISSN or the name is cataloged.
func (c *Catalog) Contains(issn, name string) bool {
	if _, ok := c.byISSN[issn]; ok {
		return true
	}
	_, ok := c.byName[strings.ToLower(name)]
	return ok
}

// Eligible returns the catalog subset in scope for a search: ophthalmology
// journals only for today/this-month windows, otherwise the whole catalog
// filtered by minimum impact factor.
func (c *Catalog) Eligible(mode domain.DateMode, minImpactFactor float64) []Journal {
	timeWindow := mode == domain.DateModeToday || mode == domain.DateModeThisMonth

	eligible := make([]Journal, 0, len(c.journals))
	for _, j := range c.journals {
		if timeWindow {
			if !j.General {
				eligible = append(eligible, j)
			}
			continue
		}
		if j.ImpactFactor >= minImpactFactor {
			eligible = append(eligible, j)
		}
	}
	return eligible
}

// EligibleSet returns Eligible as a sub-catalog for membership checks.
func (c *Catalog) EligibleSet(mode domain.DateMode, minImpactFactor float64) *Catalog {
	return New(c.Eligible(mode, minImpactFactor))
}

// Journals returns the full catalog in declaration order.
func (c *Catalog) Journals() []Journal {
	return c.journals
}
