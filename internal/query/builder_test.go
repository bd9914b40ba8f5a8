package query

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oculit/ophtha-fetcher/internal/catalog"
	"github.com/oculit/ophtha-fetcher/internal/domain"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func baseRequest() domain.SearchRequest {
	return domain.SearchRequest{
		DateMode:     domain.DateModeDaysBack,
		DaysBack:     30,
		MaxResults:   50,
		Subspecialty: domain.SubspecialtyAll,
		Email:        "reader@example.org",
	}
}

func TestBuildDaysBack(t *testing.T) {
	q := Build(baseRequest(), catalog.Default(), testNow)

	assert.Contains(t, q.Term, `("2024/02/14"[PDAT] : "2024/03/15"[PDAT])`)
	assert.Contains(t, q.Term, `English[lang]`)
	assert.Contains(t, q.Term, `"Journal Article"[Publication Type]`)
	assert.Contains(t, q.Term, `0161-6420[IS]`)
	assert.Contains(t, q.Term, catalog.ISSNJAMA+"[IS]", "general journals are in scope for days-back")
	assert.False(t, q.UncatalogedJournal)

	assert.Equal(t, domain.DateModeDaysBack, q.Window.Mode)
	assert.Equal(t, testNow.AddDate(0, 0, -30), q.Window.Start)
	assert.Equal(t, testNow, q.Window.End)
}

func TestBuildTodayUsesMonthClause(t *testing.T) {
	req := baseRequest()
	req.DateMode = domain.DateModeToday

	q := Build(req, catalog.Default(), testNow)

	assert.Contains(t, q.Term, `2024/03[PDAT]`)
	assert.NotContains(t, q.Term, catalog.ISSNJAMA+"[IS]", "time windows exclude general journals")
	assert.Equal(t, domain.DateModeToday, q.Window.Mode)
	assert.Equal(t, testNow, q.Window.Start)
	assert.Equal(t, testNow, q.Window.End)
}

func TestBuildThisMonthWindow(t *testing.T) {
	req := baseRequest()
	req.DateMode = domain.DateModeThisMonth

	q := Build(req, catalog.Default(), testNow)

	assert.Contains(t, q.Term, `2024/03[PDAT]`)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), q.Window.Start)
	assert.Equal(t, testNow, q.Window.End)
}

func TestBuildKeywordIsMandatory(t *testing.T) {
	req := baseRequest()
	req.Keyword = "trabeculectomy"
	req.Subspecialty = domain.SubspecialtyGlaucoma

	q := Build(req, catalog.Default(), testNow)

	assert.Contains(t, q.Term, `AND "trabeculectomy"[Title/Abstract]`)
	assert.NotContains(t, q.Term, `"intraocular pressure"`,
		"boost phrases stay out of the query when a keyword is given")
}

func TestBuildBoostClauseIsORGroup(t *testing.T) {
	req := baseRequest()
	req.Subspecialty = domain.SubspecialtyGlaucoma

	q := Build(req, catalog.Default(), testNow)

	assert.Contains(t, q.Term, `"glaucoma"[Title/Abstract] OR`)
	assert.Contains(t, q.Term, `"trabeculectomy"[Title/Abstract]`)

	// The OR group is a single parenthesized clause AND-ed to the rest.
	idx := strings.Index(q.Term, `("glaucoma"`)
	assert.Positive(t, idx)
	assert.Equal(t, "AND ", q.Term[idx-4:idx])
}

func TestBuildJournalByName(t *testing.T) {
	req := baseRequest()
	req.Journal = "JAMA Ophthalmology"

	q := Build(req, catalog.Default(), testNow)

	assert.Contains(t, q.Term, catalog.ISSNJAMAOphthalmology+"[IS]")
	assert.NotContains(t, q.Term, `[Journal]`)
	assert.False(t, q.UncatalogedJournal)
}

func TestBuildJournalUncataloged(t *testing.T) {
	req := baseRequest()
	req.Journal = "Obscure Vision Quarterly"

	q := Build(req, catalog.Default(), testNow)

	assert.Contains(t, q.Term, `"Obscure Vision Quarterly"[Journal]`)
	assert.True(t, q.UncatalogedJournal)
}

func TestBuildMinImpactFactorNarrowsUnion(t *testing.T) {
	req := baseRequest()
	req.MinImpactFactor = 10

	q := Build(req, catalog.Default(), testNow)

	assert.Contains(t, q.Term, `0161-6420[IS]`)
	assert.NotContains(t, q.Term, `0277-3740[IS]`, "Cornea (IF 1.9) is below the floor")
}

func TestBuildWidened(t *testing.T) {
	req := baseRequest()
	req.DateMode = domain.DateModeToday

	q := BuildWidened(req, catalog.Default(), testNow, 3)

	assert.Contains(t, q.Term, `("2024/03/12"[PDAT] : "2024/03/15"[PDAT])`)
	assert.NotContains(t, q.Term, catalog.ISSNJAMA+"[IS]",
		"journal eligibility keeps the original mode")

	// The client-side window still enforces the requested day.
	assert.Equal(t, domain.DateModeToday, q.Window.Mode)
	assert.Equal(t, testNow, q.Window.Start)
	assert.Equal(t, testNow, q.Window.End)
}
