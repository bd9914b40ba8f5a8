package medline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecords = `PMID- 38900001
DP  - 2024 Mar 15
TI  - Intravitreal anti-VEGF therapy for neovascular age-related macular
      degeneration: five-year outcomes.
AB  - Long-term outcomes of intravitreal injections were assessed in a
      retrospective cohort. Visual acuity remained stable in most eyes.
FAU - Tanaka, Hiroshi
FAU - Martins, Clara
JT  - Ophthalmology
IS  - 1549-4713 (Electronic)
IS  - 0161-6420 (Linking)
AID - 10.1016/j.ophtha.2024.01.001 [doi]
PT  - Journal Article

PMID- 38900002
DP  - 2024 Mar
TI  - Selective laser trabeculoplasty revisited.
AU  - Okafor C
JT  - The British journal of ophthalmology
PT  - Journal Article
PT  - Review
`

func TestParseRecords(t *testing.T) {
	records, err := ParseRecords(strings.NewReader(sampleRecords))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "38900001", first.Get("PMID"))
	assert.Equal(t,
		"Intravitreal anti-VEGF therapy for neovascular age-related macular degeneration: five-year outcomes.",
		first.Get("TI"), "continuation lines join with a single space")
	assert.Equal(t, []string{"Tanaka, Hiroshi", "Martins, Clara"}, first.All("FAU"))
	assert.Equal(t, []string{"1549-4713 (Electronic)", "0161-6420 (Linking)"}, first.All("IS"))

	second := records[1]
	assert.Equal(t, "38900002", second.Get("PMID"))
	assert.Equal(t, []string{"Journal Article", "Review"}, second.All("PT"))
	assert.Empty(t, second.Get("AB"))
}

func TestParseRecordsSkipsMalformedLines(t *testing.T) {
	input := "PMID- 123\nthis line has no separator\nTI  - A title.\n"
	records, err := ParseRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "123", records[0].Get("PMID"))
	assert.Equal(t, "A title.", records[0].Get("TI"))
}

func TestParseRecordsEmptyInput(t *testing.T) {
	records, err := ParseRecords(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}
