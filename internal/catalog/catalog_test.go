package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oculit/ophtha-fetcher/internal/domain"
)

func TestLookup(t *testing.T) {
	c := Default()

	byISSN, ok := c.Lookup("0161-6420")
	require.True(t, ok)
	assert.Equal(t, "Ophthalmology", byISSN.Name)

	byName, ok := c.Lookup("jama ophthalmology")
	require.True(t, ok)
	assert.Equal(t, ISSNJAMAOphthalmology, byName.ISSN)

	_, ok = c.Lookup("Journal of Nonexistent Results")
	assert.False(t, ok)
}

func TestImpactFactor(t *testing.T) {
	c := Default()

	assert.InDelta(t, 13.1, c.ImpactFactor("0161-6420", ""), 0.001)
	assert.InDelta(t, 7.8, c.ImpactFactor("", "JAMA Ophthalmology"), 0.001)
	assert.Zero(t, c.ImpactFactor("9999-9999", "Unknown Journal"))
}

func TestContains(t *testing.T) {
	c := Default()

	assert.True(t, c.Contains("0275-004X", ""))
	assert.True(t, c.Contains("", "retina"))
	assert.False(t, c.Contains("", "Journal of Irreproducible Results"))
}

func TestEligibleTimeWindowExcludesGeneral(t *testing.T) {
	c := Default()

	for _, mode := range []domain.DateMode{domain.DateModeToday, domain.DateModeThisMonth} {
		set := c.EligibleSet(mode, 0)
		assert.False(t, set.Contains(ISSNJAMA, ""), "mode %s must exclude JAMA", mode)
		assert.False(t, set.Contains("0028-0836", ""), "mode %s must exclude Nature", mode)
		assert.True(t, set.Contains(ISSNJAMAOphthalmology, ""))
		assert.True(t, set.Contains("0161-6420", ""))
	}
}

func TestEligibleDaysBackFiltersByImpactFactor(t *testing.T) {
	c := Default()

	eligible := c.Eligible(domain.DateModeDaysBack, 5.0)
	for _, j := range eligible {
		assert.GreaterOrEqual(t, j.ImpactFactor, 5.0, "journal %s", j.Name)
	}

	set := New(eligible)
	assert.True(t, set.Contains(ISSNJAMA, ""), "general journals stay in scope for days-back")
	assert.True(t, set.Contains("0161-6420", ""))
	assert.False(t, set.Contains("0277-3740", ""), "Cornea (IF 1.9) falls below the floor")
}

func TestEligibleZeroFloorKeepsEverything(t *testing.T) {
	c := Default()
	assert.Len(t, c.Eligible(domain.DateModeDaysBack, 0), len(c.Journals()))
}
