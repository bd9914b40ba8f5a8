// Package medline parses textual MEDLINE records into canonical articles.
package medline

import (
	"bufio"
	"io"
	"strings"
)

// Record is one raw MEDLINE record: tag -> values in file order. Repeatable
// tags (AU, AID, PT, OT, ...) keep every occurrence.
type Record map[string][]string

// Get returns the first value of a tag, or "" when absent.
func (r Record) Get(tag string) string {
	if vals := r[tag]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// All returns every value of a tag in file order.
func (r Record) All(tag string) []string {
	return r[tag]
}

// ParseRecords reads a MEDLINE text stream and splits it into records.
// Records are separated by blank lines; a field is "TAG - value" with the tag
// left-padded to four characters, and continuation lines are indented by six
// spaces. Malformed lines are skipped, never fatal.
func ParseRecords(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []Record
	var current Record
	var lastTag string

	flush := func() {
		if len(current) > 0 {
			records = append(records, current)
		}
		current = nil
		lastTag = ""
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		// Continuation of the previous field.
		if strings.HasPrefix(line, "      ") && lastTag != "" && current != nil {
			vals := current[lastTag]
			vals[len(vals)-1] += " " + strings.TrimSpace(line)
			continue
		}

		tag, value, ok := splitField(line)
		if !ok {
			continue
		}
		if current == nil {
			current = Record{}
		}
		current[tag] = append(current[tag], value)
		lastTag = tag
	}
	flush()

	if err := scanner.Err(); err != nil {
		return records, err
	}
	return records, nil
}

// splitField splits a "TAG - value" line into its tag and value.
func splitField(line string) (string, string, bool) {
	if len(line) < 6 {
		return "", "", false
	}
	sep := strings.Index(line, "- ")
	if sep <= 0 || sep > 5 {
		return "", "", false
	}
	tag := strings.TrimSpace(line[:sep])
	if tag == "" {
		return "", "", false
	}
	return tag, strings.TrimSpace(line[sep+2:]), true
}
