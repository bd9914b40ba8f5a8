// Package keywords mines ophthalmology vocabulary from article text for
// "find related" queries.
package keywords

import (
	"regexp"
	"strings"
)

// MaxKeywords caps the extractor output.
const MaxKeywords = 10

// domainMatchThreshold is the vocabulary hit count at which the fallback
// extraction is skipped.
const domainMatchThreshold = 5

// minWordLength is the exclusive lower bound for fallback words.
const minWordLength = 6

// medicalSuffixRe matches word endings typical for medical terminology.
var medicalSuffixRe = regexp.MustCompile(`(itis|osis|oma|opathy|ectomy|otomy|ectasia|plasia|trophy)$`)

// wordRe tokenizes text into words, keeping internal hyphens and digits.
var wordRe = regexp.MustCompile(`[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`)

var digitRe = regexp.MustCompile(`\d`)

// Extract returns up to MaxKeywords distinct keywords mined from a title and
// abstract. Curated vocabulary matches come first; when fewer than five are
// found, suffix-bearing two-word phrases and long single words fill the rest.
func Extract(title, abstract string) []string {
	text := strings.ToLower(title + " " + abstract)

	found := vocabularyMatches(text)
	if len(found) >= domainMatchThreshold {
		return capAt(found, MaxKeywords)
	}

	words := wordRe.FindAllString(text, -1)
	found = append(found, phraseCandidates(words)...)
	found = append(found, wordCandidates(words)...)

	return capAt(dedupe(found), MaxKeywords)
}

// vocabularyMatches scans for whole-word or whole-phrase vocabulary hits, in
// vocabulary order.
func vocabularyMatches(text string) []string {
	var matches []string
	for _, term := range domainVocabulary {
		if containsWholePhrase(text, term) {
			matches = append(matches, term)
		}
	}
	return matches
}

// containsWholePhrase reports a match of phrase in text bounded by
// non-alphanumeric characters on both sides.
func containsWholePhrase(text, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		idx = start + 1
	}
}

func boundaryBefore(text string, i int) bool {
	return i == 0 || !isWordChar(text[i-1])
}

func boundaryAfter(text string, i int) bool {
	return i >= len(text) || !isWordChar(text[i])
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// phraseCandidates returns 2-word phrases whose words are both non-stopwords
// longer than six characters, with at least one word carrying a medical
// suffix, a digit, or a hyphen.
func phraseCandidates(words []string) []string {
	var out []string
	for i := 0; i+1 < len(words); i++ {
		w1, w2 := words[i], words[i+1]
		if isStopword(w1) || isStopword(w2) {
			continue
		}
		if len(w1) <= minWordLength || len(w2) <= minWordLength {
			continue
		}
		if isMedicalish(w1) || isMedicalish(w2) {
			out = append(out, w1+" "+w2)
		}
	}
	return out
}

// wordCandidates returns single words longer than six characters or ending in
// a medical suffix, excluding stopwords.
func wordCandidates(words []string) []string {
	var out []string
	for _, w := range words {
		if isStopword(w) {
			continue
		}
		if len(w) > minWordLength || medicalSuffixRe.MatchString(w) {
			out = append(out, w)
		}
	}
	return out
}

func isMedicalish(w string) bool {
	return medicalSuffixRe.MatchString(w) || digitRe.MatchString(w) || strings.Contains(w, "-")
}

func isStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// dedupe removes duplicates preserving first occurrence.
func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func capAt(terms []string, n int) []string {
	if len(terms) > n {
		return terms[:n]
	}
	return terms
}
