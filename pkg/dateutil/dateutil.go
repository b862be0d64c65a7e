package dateutil

import (
	"time"
)

// AgeInYear returns the age reached during the given calendar year.
func AgeInYear(birthDate time.Time, year int) int {
	return year - birthDate.Year()
}

// FullRetirementAge returns the Social Security Full Retirement Age in whole
// years for a birth year. Fractional ages (e.g. 66 and 4 months) round down.
func FullRetirementAge(birthYear int) int {
	switch {
	case birthYear <= 1942:
		return 65
	case birthYear <= 1959:
		return 66
	default: // 1960 and later
		return 67
	}
}

// GetRMDAge returns the age when Required Minimum Distributions start for a
// given birth year (SECURE 2.0 schedule).
func GetRMDAge(birthYear int) int {
	switch {
	case birthYear <= 1950:
		return 72
	case birthYear >= 1951 && birthYear <= 1959:
		return 73
	default: // 1960 and later
		return 75
	}
}

// BirthYearForAge returns the birth year of someone who reaches age during year.
func BirthYearForAge(age, year int) int {
	return year - age
}
