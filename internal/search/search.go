// Package search implements the glossary's free-text filter.
//
// Matching runs in two tiers. Tier 1 keeps entries where the whole normalised
// query is a substring of the phrase, translation or usage context. Only when
// tier 1 finds nothing does tier 2 split the query into terms and keep entries
// where every term appears in at least one of those fields. There is no
// ranking: results keep the order of the input slice.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/sakif/phrasebook/internal/model"
)

// MinTermLength is the shortest tier-2 term that takes part in matching.
// Shorter terms are dropped.
const MinTermLength = 2

// Filter returns the entries matching query. A blank query returns entries
// unchanged. Filter never modifies the entries it is given.
func Filter(entries []model.Entry, query string) []model.Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}

	fields := make([][3]string, len(entries))
	for i := range entries {
		fields[i] = foldedFields(&entries[i])
	}

	exact := make([]model.Entry, 0)
	for i := range entries {
		if containsAny(fields[i], q) {
			exact = append(exact, entries[i])
		}
	}
	if len(exact) > 0 {
		return exact
	}

	terms := Terms(q)
	// All terms too short: behave as if there were no filter.
	if len(terms) == 0 {
		return entries
	}

	matches := make([]model.Entry, 0)
	for i := range entries {
		if containsAll(fields[i], terms) {
			matches = append(matches, entries[i])
		}
	}
	return matches
}

// Terms splits an already lower-cased query on whitespace runs and drops terms
// shorter than MinTermLength runes.
func Terms(q string) []string {
	raw := strings.Fields(q)
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		if utf8.RuneCountInString(t) >= MinTermLength {
			terms = append(terms, t)
		}
	}
	return terms
}

func foldedFields(e *model.Entry) [3]string {
	usage := ""
	if e.UsageContext != nil {
		usage = *e.UsageContext
	}
	return [3]string{
		strings.ToLower(e.Phrase),
		strings.ToLower(e.Translation),
		strings.ToLower(usage),
	}
}

func containsAny(fields [3]string, term string) bool {
	for _, f := range fields {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}

func containsAll(fields [3]string, terms []string) bool {
	for _, t := range terms {
		if !containsAny(fields, t) {
			return false
		}
	}
	return true
}
