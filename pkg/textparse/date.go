package textparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateKind tags a parsed date.
type DateKind int

const (
	DateNone DateKind = iota
	DateExact
	DateApproximate
)

// String returns the string representation of DateKind
func (k DateKind) String() string {
	switch k {
	case DateExact:
		return "Date"
	case DateApproximate:
		return "Approximate"
	default:
		return "None"
	}
}

// YearMonthDay is a partial date. Zero fields are absent.
type YearMonthDay struct {
	Year  int
	Month int
	Day   int
	Kind  DateKind
}

// IsNone reports whether nothing was parsed.
func (d YearMonthDay) IsNone() bool {
	return d.Kind == DateNone
}

// String renders the date as yyyy, yyyy-mm or yyyy-mm-dd.
func (d YearMonthDay) String() string {
	switch {
	case d.Kind == DateNone:
		return ""
	case d.Month == 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

type dateLayout struct {
	layout string
	hasDay bool
}

// dateLayouts is tried in order. The first four are the catalogue's own
// conventions; the rest cover the general forms. Anything left over goes
// to dateparse before the bare year check.
var dateLayouts = []dateLayout{
	{"2006 Jan", false},
	{"2006 January", false},
	{"02/01/2006", true},
	{"2006 Jan 2", true},

	{"2006 January 2", true},
	{"2 January 2006", true},
	{"2 Jan 2006", true},
	{"January 2, 2006", true},
	{"Jan 2, 2006", true},
	{"January 2 2006", true},
	{"Jan 2 2006", true},
	{"2006-01-02", true},
	{"2006/01/02", true},
	{"2006/1/2", true},
	{"2006-1-2", true},
	{"2-Jan-2006", true},
	{"2/1/2006", true},
	{"January 2006", false},
	{"Jan 2006", false},
	{"2006-01", false},
}

var (
	yearPattern     = regexp.MustCompile(`^\d{4}$`)
	yearRunPattern  = regexp.MustCompile(`\d{4}`)
	faceWordPattern = regexp.MustCompile(`(?i)obverse|reverse`)
)

// ParseDate parses a single partial date. Text prefixed with "c", "c." or
// "circa" is approximate. Unmatched text yields a None date and a warning.
func (p *Parser) ParseDate(text string) YearMonthDay {
	s, approximate := normalizeDateText(text)
	if s == "" {
		return YearMonthDay{}
	}

	d, ok := matchDate(s)
	if !ok {
		p.warn("date", text)
		return YearMonthDay{}
	}
	if approximate {
		d.Kind = DateApproximate
	}
	return d
}

func matchDate(s string) (YearMonthDay, bool) {
	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		d := YearMonthDay{Year: t.Year(), Month: int(t.Month()), Kind: DateExact}
		if l.hasDay {
			d.Day = t.Day()
		}
		return d, true
	}

	if d, ok := generalDate(s); ok {
		return d, true
	}

	if yearPattern.MatchString(s) {
		year, _ := strconv.Atoi(s)
		return YearMonthDay{Year: year, Kind: DateExact}, true
	}
	return YearMonthDay{}, false
}

// generalDate hands text the layouts missed to dateparse, reading
// ambiguous numeric dates day first. Text must carry exactly one
// four-digit year and no face qualifier, so year spans and seal faces are
// left to the range patterns.
func generalDate(s string) (YearMonthDay, bool) {
	if yearPattern.MatchString(s) || faceWordPattern.MatchString(s) ||
		len(yearRunPattern.FindAllString(s, -1)) != 1 {
		return YearMonthDay{}, false
	}

	layout, err := dateparse.ParseFormat(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return YearMonthDay{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return YearMonthDay{}, false
	}

	d := YearMonthDay{Year: t.Year(), Month: int(t.Month()), Kind: DateExact}
	if strings.Contains(strings.ReplaceAll(layout, "2006", ""), "2") {
		d.Day = t.Day()
	}
	return d, true
}

// RangeKind tags a parsed date range.
type RangeKind int

const (
	RangeNone RangeKind = iota
	RangeDate
	RangeApproximate
	RangeIdenticalObverseAndReverse
	RangeObverse
	RangeReverse
)

// String returns the string representation of RangeKind
func (k RangeKind) String() string {
	switch k {
	case RangeDate:
		return "Date"
	case RangeApproximate:
		return "Approximate"
	case RangeIdenticalObverseAndReverse:
		return "IdenticalObverseAndReverse"
	case RangeObverse:
		return "Obverse"
	case RangeReverse:
		return "Reverse"
	default:
		return "None"
	}
}

// DateRange is a pair of partial dates. A single date leaves Second absent.
type DateRange struct {
	First  YearMonthDay
	Second YearMonthDay
	Kind   RangeKind
}

// IsNone reports whether nothing was parsed.
func (r DateRange) IsNone() bool {
	return r.Kind == RangeNone
}

type rangePattern struct {
	re   *regexp.Regexp
	kind RangeKind
}

// Single-year face patterns, then year-range patterns. Order matters.
var (
	faceYearPatterns = []rangePattern{
		{regexp.MustCompile(`(?i)^obverse:\s*(\d{4})$`), RangeObverse},
		{regexp.MustCompile(`(?i)^reverse:\s*(\d{4})$`), RangeReverse},
		{regexp.MustCompile(`(?i)^obverse and reverse:\s*(\d{4})$`), RangeIdenticalObverseAndReverse},
	}
	yearRangePatterns = []rangePattern{
		{regexp.MustCompile(`^(\d{4})\s*-\s*(\d{4})$`), RangeDate},
		{regexp.MustCompile(`(?i)^obverse:\s*(\d{4})\s*-\s*(\d{4})$`), RangeObverse},
		{regexp.MustCompile(`(?i)^reverse:\s*(\d{4})\s*-\s*(\d{4})$`), RangeReverse},
		{regexp.MustCompile(`(?i)^obverse and reverse:\s*(\d{4})\s*-\s*(\d{4})$`), RangeIdenticalObverseAndReverse},
	}
)

// ParseDateRange parses a date or year range, optionally qualified by the
// seal face it applies to. A face of "Obverse", "Reverse" or "Obverse and
// Reverse" forces the range kind. "Unknown" is None without a warning.
func (p *Parser) ParseDateRange(faceText, text string) DateRange {
	s, approximate := normalizeDateText(text)
	if s == "" || strings.EqualFold(s, "unknown") {
		return DateRange{}
	}

	r, ok := matchDateRange(s)
	if !ok {
		p.warn("date range", text)
		return DateRange{}
	}

	if approximate {
		r.First.Kind = DateApproximate
		if !r.Second.IsNone() {
			r.Second.Kind = DateApproximate
		}
		if r.Kind == RangeDate {
			r.Kind = RangeApproximate
		}
	}

	switch strings.ToLower(strings.TrimSpace(faceText)) {
	case "obverse":
		r.Kind = RangeObverse
	case "reverse":
		r.Kind = RangeReverse
	case "obverse and reverse":
		r.Kind = RangeIdenticalObverseAndReverse
	}
	return r
}

func matchDateRange(s string) (DateRange, bool) {
	if d, ok := matchDate(s); ok {
		return DateRange{First: d, Kind: RangeDate}, true
	}

	for _, rp := range faceYearPatterns {
		if m := rp.re.FindStringSubmatch(s); m != nil {
			return DateRange{First: yearOf(m[1]), Kind: rp.kind}, true
		}
	}

	for _, rp := range yearRangePatterns {
		if m := rp.re.FindStringSubmatch(s); m != nil {
			return DateRange{First: yearOf(m[1]), Second: yearOf(m[2]), Kind: rp.kind}, true
		}
	}
	return DateRange{}, false
}

func yearOf(s string) YearMonthDay {
	year, _ := strconv.Atoi(s)
	return YearMonthDay{Year: year, Kind: DateExact}
}
