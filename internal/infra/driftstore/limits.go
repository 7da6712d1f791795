package driftstore

import "unicode/utf8"

// DefaultMaxEntries caps the distinct (field, label) pairs a store retains.
const DefaultMaxEntries = 10000

// MaxLabelLength bounds stored label text, in bytes.
const MaxLabelLength = 128

func truncateLabel(label string) string {
	if len(label) <= MaxLabelLength {
		return label
	}
	cut := MaxLabelLength
	for cut > 0 && !utf8.RuneStart(label[cut]) {
		cut--
	}
	return label[:cut]
}

func normalizeMaxEntries(n int) int {
	if n <= 0 {
		return DefaultMaxEntries
	}
	return n
}
