package airtable

import "strings"

// Filter formulas are the store's boolean predicate strings. Interpolated
// literals are always escaped here so untrusted input cannot break out of its
// quotes.

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Quote renders a string literal for use inside a formula.
func Quote(value string) string {
	return `"` + literalEscaper.Replace(value) + `"`
}

// Eq matches records whose field equals value exactly.
func Eq(field, value string) string {
	return "{" + field + "} = " + Quote(value)
}

// And combines predicates.
func And(predicates ...string) string {
	return "AND( " + strings.Join(predicates, ", ") + " )"
}

// SearchInJoined matches records whose linked-record field, joined to text,
// contains value. This is how membership in a link list is tested, the store
// offering no native containment predicate.
func SearchInJoined(value, field string) string {
	return "SEARCH(" + Quote(value) + ", ARRAYJOIN({" + field + "}))"
}
