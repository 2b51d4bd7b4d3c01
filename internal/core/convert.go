package core

// convert.go turns raw CSV cells into canonical values.
//
// Spreadsheet exports are messy: dates arrive as DD/MM/YYYY with or without
// padding, sometimes with a time component, numbers use a decimal comma and
// thousand separators, and cells can carry Excel formula prefixes.

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// ConvertDateFormat converts a source date to YYYY-MM-DD.
//
// Accepted inputs:
//   - DD/MM/YYYY, day and month one or two digits
//   - DD-MM-YYYY, exactly 10 characters
//   - YYYY-MM-DD, returned unchanged
//
// The calendar date must exist. Blank or unrecognized input returns
// ("", false).
func ConvertDateFormat(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	var layout string
	switch {
	case strings.Count(s, "/") == 2:
		layout = "2/1/2006"
	case len(s) == 10 && s[2] == '-' && s[5] == '-':
		layout = "02-01-2006"
	case len(s) == 10 && s[4] == '-' && s[7] == '-':
		layout = isoDate
	default:
		return "", false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return "", false
	}
	return t.Format(isoDate), true
}

// convertDateCell is ConvertDateFormat with a second attempt on a cleaned
// cell: formula prefixes, quotes and a trailing time component are removed.
func convertDateCell(s string) (string, bool) {
	if d, ok := ConvertDateFormat(s); ok {
		return d, true
	}
	return ConvertDateFormat(stripTimeComponent(CleanCell(s)))
}

// stripTimeComponent drops what follows the date in "24/06/2024 08:15" or
// "2024-06-24T08:15:00Z".
func stripTimeComponent(s string) string {
	if i := strings.IndexAny(s, " T"); i >= 8 {
		return s[:i]
	}
	return s
}

// parseQuantity parses a numeric cell, returning 0 when it cannot be read.
//
// Spaces (including non-breaking ones) are treated as thousand separators.
// When both ',' and '.' appear, the last one is the decimal separator.
func parseQuantity(s string) float64 {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, CleanCell(s))
	if s == "" {
		return 0
	}

	comma := strings.LastIndexByte(s, ',')
	dot := strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// optionalText returns nil for blank cells.
func optionalText(s string) *string {
	s = CleanCell(s)
	if s == "" {
		return nil
	}
	return &s
}

// CleanCell removes common CSV artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="...") and
// surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
