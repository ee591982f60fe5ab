package domain

import "strings"

// StringSet is a set of non-empty, whitespace-trimmed labels.
type StringSet map[string]struct{}

// NewStringSet builds a set from raw values, dropping blanks and duplicates.
func NewStringSet(values ...string) StringSet {
	set := make(StringSet, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

func (s StringSet) Len() int {
	return len(s)
}

func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// IntersectionSize counts the labels present in both sets.
func (s StringSet) IntersectionSize(other StringSet) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}

	n := 0
	for v := range small {
		if _, ok := large[v]; ok {
			n++
		}
	}
	return n
}
