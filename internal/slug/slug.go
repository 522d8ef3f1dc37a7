// Package slug derives collection slugs from names.
package slug

import (
	"strconv"
	"strings"
)

// Base lower-cases name and replaces spaces with hyphens.
func Base(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Candidate returns base for n == 0 and "base-n" otherwise.
func Candidate(base string, n int) string {
	if n <= 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// FirstFree returns the first candidate, starting at index from, for which
// taken reports false, together with its index.
func FirstFree(base string, from int, taken func(string) (bool, error)) (string, int, error) {
	for n := from; ; n++ {
		s := Candidate(base, n)
		used, err := taken(s)
		if err != nil {
			return "", 0, err
		}
		if !used {
			return s, n, nil
		}
	}
}
