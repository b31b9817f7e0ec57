package utils

import (
	"strings"
)

// listingAbbreviations maps common listing-title abbreviations to the word
// they stand for, so "Green Meadows Apt" and "Green Meadows Apartment" share
// a blocking key.
var listingAbbreviations = map[string]string{
	"apt":   "apartment",
	"apts":  "apartments",
	"appt":  "apartment",
	"bldg":  "building",
	"hts":   "heights",
	"twr":   "tower",
	"twrs":  "towers",
	"resi":  "residency",
	"res":   "residency",
	"enclv": "enclave",
	"nr":    "near",
	"opp":   "opposite",
	"rd":    "road",
	"st":    "street",
	"sec":   "sector",
}

// CanonicalText lowercases a name or location, collapses whitespace and
// punctuation, and expands known abbreviations.
func CanonicalText(value string) string {
	fields := strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', ',', '.', '-', '/', '(', ')':
			return true
		}
		return false
	})
	for i, word := range fields {
		if expanded, ok := listingAbbreviations[word]; ok {
			fields[i] = expanded
		}
	}
	return strings.Join(fields, " ")
}

// BlockKey returns the duplicate-detection block key of a listing. Records
// are only compared with records that share the same key.
func BlockKey(name, location string) string {
	return CanonicalText(name) + "|" + CanonicalText(location)
}
