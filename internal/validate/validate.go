// Package validate holds the server-side input validation rules. Every rule is
// a pure predicate over raw form input; handlers run these before anything is
// persisted. The browser duplicates a subset of them for convenience, but only
// the checks here are authoritative.
package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digits16Re = regexp.MustCompile(`^\d{16}$`)
	dateRe     = regexp.MustCompile(`^\d{8}$`)
	timeRe     = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d):([0-5]\d)$`)
)

// passwordSymbols is the fixed set of accepted special characters.
const passwordSymbols = "@$!%*?&"

// Email reports whether s has a local@domain.tld shape with no embedded
// whitespace and at least one dot in the domain.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// StrongPassword requires at least 8 characters drawn from letters, digits and
// the accepted symbol set, with at least one of each class present.
func StrongPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

// CreditCard strips spaces and dashes, requires exactly 16 digits, and applies
// the Luhn checksum: double every second digit from the right, subtract 9 when
// the doubled value exceeds 9, and accept iff the digit sum is divisible by 10.
func CreditCard(cardNumber string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(cardNumber)
	if !digits16Re.MatchString(cleaned) {
		return false
	}

	sum := 0
	double := false
	for i := len(cleaned) - 1; i >= 0; i-- {
		digit := int(cleaned[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

// Date accepts an 8-digit YYYYMMDD string naming a real calendar date.
// Leap years are respected.
func Date(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[4:6])
	day, _ := strconv.Atoi(s[6:8])

	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysInMonth(year, month)
}

func daysInMonth(year, month int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// Time accepts hh:mm:ss with hh in [00,23] and mm/ss in [00,59].
func Time(s string) bool {
	return timeRe.MatchString(s)
}

// InRange parses s as a decimal number and reports whether it falls within
// [min, max] inclusive.
func InRange(s string, min, max float64) bool {
	num, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false
	}
	return num >= min && num <= max
}
