// Package strings provides string utility functions.
package strings

import "fmt"

// Pluralize returns singular or plural form based on count.
// Example: Pluralize("movie", 1) returns "movie", Pluralize("movie", 2) returns "movies"
func Pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// Count formats count with the matching form of word, e.g. "25 movies".
func Count(count int, word string) string {
	return fmt.Sprintf("%d %s", count, Pluralize(word, count))
}
