package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oculit/ophtha-fetcher/internal/domain"
)

func TestBoostList(t *testing.T) {
	withKeyword := BoostList(domain.SubspecialtyGlaucoma, "trabeculectomy bleb")
	assert.Equal(t, "trabeculectomy bleb", withKeyword[len(withKeyword)-1])

	withoutKeyword := BoostList(domain.SubspecialtyGlaucoma, "  ")
	assert.NotContains(t, withoutKeyword, "  ")
	assert.Len(t, withKeyword, len(withoutKeyword)+1)
}

func TestScore(t *testing.T) {
	articles := []*domain.Article{
		{Title: "Glaucoma progression and intraocular pressure", Abstract: "A glaucoma cohort."},
		{Title: "Cataract surgery outcomes", Abstract: "No relevant terms here."},
		{Title: "Unrelated cardiology paper", Abstract: "Plain cardiology."},
	}

	Score(articles, []string{"glaucoma", "intraocular pressure"})

	// Two title hits (3 each) plus one abstract hit.
	assert.Equal(t, 7, articles[0].RelevanceScore)
	assert.Equal(t, 0, articles[1].RelevanceScore)
	assert.Equal(t, 0, articles[2].RelevanceScore)
}

func TestScoreCaseInsensitive(t *testing.T) {
	a := &domain.Article{Title: "GLAUCOMA Update", Abstract: "glaucoma REVIEW"}
	Score([]*domain.Article{a}, []string{"Glaucoma"})
	assert.Equal(t, 4, a.RelevanceScore)
}

func newRanked(pmid string, date time.Time, score int, impact float64) *domain.Article {
	return &domain.Article{PMID: pmid, PubDate: date, RelevanceScore: score, ImpactFactor: impact}
}

func TestSortDaysBackOrder(t *testing.T) {
	d1 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

	articles := []*domain.Article{
		newRanked("low-score-new", d2, 1, 50),
		newRanked("high-score-old", d1, 9, 1),
		newRanked("high-score-new", d2, 9, 1),
	}

	Sort(articles, domain.DateModeDaysBack)

	// Recency first, then score, then impact factor.
	assert.Equal(t, "high-score-new", articles[0].PMID)
	assert.Equal(t, "low-score-new", articles[1].PMID)
	assert.Equal(t, "high-score-old", articles[2].PMID)
}

func TestSortTimeWindowOrder(t *testing.T) {
	d1 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

	articles := []*domain.Article{
		newRanked("low-if", d2, 9, 2.0),
		newRanked("high-if-old", d1, 0, 13.1),
		newRanked("high-if-new", d2, 0, 13.1),
	}

	Sort(articles, domain.DateModeToday)

	// Impact factor first, then recency, then score.
	assert.Equal(t, "high-if-new", articles[0].PMID)
	assert.Equal(t, "high-if-old", articles[1].PMID)
	assert.Equal(t, "low-if", articles[2].PMID)
}

func TestSortStability(t *testing.T) {
	d := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	articles := []*domain.Article{
		newRanked("first", d, 5, 3.0),
		newRanked("second", d, 5, 3.0),
		newRanked("third", d, 5, 3.0),
	}

	Sort(articles, domain.DateModeDaysBack)

	assert.Equal(t, "first", articles[0].PMID)
	assert.Equal(t, "second", articles[1].PMID)
	assert.Equal(t, "third", articles[2].PMID)
}

func TestTruncate(t *testing.T) {
	articles := []*domain.Article{{PMID: "1"}, {PMID: "2"}, {PMID: "3"}}

	kept, dropped := Truncate(articles, 2)
	assert.Len(t, kept, 2)
	assert.True(t, dropped)

	kept, dropped = Truncate(articles, 3)
	assert.Len(t, kept, 3)
	assert.False(t, dropped)

	kept, dropped = Truncate(articles, 10)
	assert.Len(t, kept, 3)
	assert.False(t, dropped)
}
