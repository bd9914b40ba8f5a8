package rank

import (
	"sort"
	"strings"

	"github.com/oculit/ophtha-fetcher/internal/catalog"
	"github.com/oculit/ophtha-fetcher/internal/domain"
)

// Weight of a boost keyword hit in the title versus the abstract.
const (
	titleHitWeight    = 3
	abstractHitWeight = 1
)

// BoostList returns the scoring keywords for a request: the subspecialty pack
// (or the generic ophthalmology list), with the free-text keyword appended
// when given.
func BoostList(subspecialty, keyword string) []string {
	boosts := catalog.BoostKeywords(subspecialty)
	if kw := strings.TrimSpace(keyword); kw != "" {
		out := make([]string, 0, len(boosts)+1)
		out = append(out, boosts...)
		return append(out, kw)
	}
	return boosts
}

// Score assigns RelevanceScore to every article: 3 points per boost keyword
// found in the title, 1 per keyword found in the abstract, case-insensitive.
func Score(articles []*domain.Article, boosts []string) {
	lowered := make([]string, len(boosts))
	for i, b := range boosts {
		lowered[i] = strings.ToLower(b)
	}

	for _, a := range articles {
		title := strings.ToLower(a.Title)
		abstract := strings.ToLower(a.Abstract)

		score := 0
		for _, kw := range lowered {
			if strings.Contains(title, kw) {
				score += titleHitWeight
			}
			if strings.Contains(abstract, kw) {
				score += abstractHitWeight
			}
		}
		a.RelevanceScore = score
	}
}

// Sort orders articles in place. Time-window searches put high-impact
// journals first; otherwise recency wins. The sort is stable, so equal keys
// keep their input order.
func Sort(articles []*domain.Article, mode domain.DateMode) {
	timeWindow := mode == domain.DateModeToday || mode == domain.DateModeThisMonth

	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if timeWindow {
			if a.ImpactFactor != b.ImpactFactor {
				return a.ImpactFactor > b.ImpactFactor
			}
			if !a.PubDate.Equal(b.PubDate) {
				return a.PubDate.After(b.PubDate)
			}
			return a.RelevanceScore > b.RelevanceScore
		}

		if !a.PubDate.Equal(b.PubDate) {
			return a.PubDate.After(b.PubDate)
		}
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		return a.ImpactFactor > b.ImpactFactor
	})
}

// Truncate caps the list at max, reporting whether anything was dropped.
func Truncate(articles []*domain.Article, max int) ([]*domain.Article, bool) {
	if max > 0 && len(articles) > max {
		return articles[:max], true
	}
	return articles, false
}
