// Package natsort provides natural-order comparison of filenames: numeric
// substrings compare as integers, everything else compares case-insensitive
// lexicographically. This matches the ordering a human expects from a folder
// of sequentially numbered CT slices ("slice2.tif" before "slice10.tif").
package natsort

import (
	"strconv"
	"strings"
)

// part is either a run of digits (numeric == true) or a run of
// non-digits (numeric == false).
type part struct {
	text    string
	numeric bool
}

func split(name string) []part {
	var parts []part
	runes := []rune(name)
	i := 0
	for i < len(runes) {
		start := i
		isDigit := isDigitRune(runes[i])
		for i < len(runes) && isDigitRune(runes[i]) == isDigit {
			i++
		}
		parts = append(parts, part{text: string(runes[start:i]), numeric: isDigit})
	}
	return parts
}

func isDigitRune(r rune) bool {
	return r >= '0' && r <= '9'
}

// Key is a precomputed natural-sort key; Less compares two keys.
type Key struct {
	parts []part
}

// NewKey builds a natural-sort key for name (case-insensitive).
func NewKey(name string) Key {
	return Key{parts: split(strings.ToLower(name))}
}

// Less reports whether a sorts before b under natural order.
func Less(a, b Key) bool {
	pa, pb := a.parts, b.parts
	for i := 0; i < len(pa) && i < len(pb); i++ {
		x, y := pa[i], pb[i]
		if x.numeric && y.numeric {
			nx, errx := strconv.ParseUint(x.text, 10, 64)
			ny, erry := strconv.ParseUint(y.text, 10, 64)
			if errx == nil && erry == nil {
				if nx != ny {
					return nx < ny
				}
				continue
			}
		}
		if x.text != y.text {
			return x.text < y.text
		}
	}
	return len(pa) < len(pb)
}
