package domain

import "time"

// ageBrackets is ordered youngest to oldest. Bracket distance is the absolute
// difference between two positions in this slice.
var ageBrackets = []struct {
	label string
	min   int
	max   int
}{
	{label: "-18", min: 0, max: 17},
	{label: "18-24", min: 18, max: 24},
	{label: "25-30", min: 25, max: 30},
	{label: "31-35", min: 31, max: 35},
	{label: "36-40", min: 36, max: 40},
	{label: "41-45", min: 41, max: 45},
	{label: "46-50", min: 46, max: 50},
	{label: "+51", min: 51, max: 200},
}

// bracketFor returns the bracket index and label for an age, or (-1, "")
// for a negative age.
func bracketFor(age int) (int, string) {
	if age < 0 {
		return -1, ""
	}
	for i, bracket := range ageBrackets {
		if age >= bracket.min && age <= bracket.max {
			return i, bracket.label
		}
	}
	last := len(ageBrackets) - 1
	return last, ageBrackets[last].label
}

// ageAt computes whole years between birthDate and the reference instant.
// Returns -1 when birthDate is zero or in the future.
func ageAt(birthDate, reference time.Time) int {
	if birthDate.IsZero() || birthDate.After(reference) {
		return -1
	}
	years := reference.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(years, 0, 0)
	if anniversary.After(reference) {
		years--
	}
	if years < 0 {
		return -1
	}
	return years
}
