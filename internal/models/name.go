package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// NormalizeName canonicalizes a person or category name: trim surrounding
// whitespace, collapse internal whitespace to single spaces, and title-case
// each word ("  ravi  KUMAR " -> "Ravi Kumar"). Returns "" for blank input.
//
// Every write site that stores a name (person records, expense
// borrowed_from/paid_for, income person, categories) must pass through this
// so that case-insensitive lookups stay stable.
func NormalizeName(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	for i, f := range fields {
		fields[i] = titleCaser.String(strings.ToLower(f))
	}
	return strings.Join(fields, " ")
}
