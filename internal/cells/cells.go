// Package cells coerces weakly-typed spreadsheet cell values into calendar
// dates and instants. The backing store returns a mix of native numbers
// (date serials), canonical ISO strings, locale display strings, and
// apostrophe-escaped text depending on who wrote the row and which render
// mode read it back; every consumer goes through this package instead of
// parsing in place.
package cells

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// serialEpochOffset is the spreadsheet serial day number of 1970-01-01.
// epochDays = serial - serialEpochOffset.
const serialEpochOffset = 25569

const msPerDay = 24 * 60 * 60 * 1000

// Parser holds the locale knobs for ambiguous inputs. The zero value parses
// day-first and uses the wall clock, which matches the production ledgers.
type Parser struct {
	// MonthFirst flips the default order of two-part dates whose components
	// are both <= 12. A component > 12 always wins as the day regardless.
	MonthFirst bool
	// Now supplies the current time for year-less inputs. Nil means time.Now.
	Now func() time.Time
}

// Default is the day-first wall-clock parser.
var Default Parser

// NormalizeDate coerces v into "YYYY-MM-DD" using the default parser.
func NormalizeDate(v any) string { return Default.NormalizeDate(v) }

// InstantMS coerces v into Unix milliseconds using the default parser.
func InstantMS(v any) int64 { return Default.InstantMS(v) }

func (p Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// NormalizeDate coerces a cell value into a canonical "YYYY-MM-DD" string.
// It returns "" on total failure; callers must treat "" as unfilterable and
// never substitute today's date.
func (p Parser) NormalizeDate(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format("2006-01-02")
	case float64:
		return serialToDate(val)
	case float32:
		return serialToDate(float64(val))
	case int:
		return serialToDate(float64(val))
	case int64:
		return serialToDate(float64(val))
	case string:
		return p.normalizeDateString(val)
	default:
		return p.normalizeDateString(fmt.Sprint(v))
	}
}

func (p Parser) normalizeDateString(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "'"))
	if s == "" {
		return ""
	}

	// Bare number: a serial that came back through a string render.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return serialToDate(f)
	}

	// Canonical and near-canonical year-first forms.
	if d, ok := parseYearFirst(s); ok {
		return d
	}

	// Day/month-ambiguous slash or dash forms.
	if d, ok := p.parseDayMonth(s); ok {
		return d
	}

	// Free-form fallbacks seen in hand-edited rows.
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"02-Jan-2006",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// parseYearFirst handles YYYY-MM-DD, YYYY-M-D and YYYY/M/D.
func parseYearFirst(s string) (string, bool) {
	sep := "-"
	if strings.Contains(s, "/") {
		sep = "/"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 || len(parts[0]) != 4 {
		return "", false
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(strings.SplitN(parts[2], "T", 2)[0])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	return civil(year, month, day)
}

// parseDayMonth handles D/M, D/M/YYYY and their dash forms, resolving the
// day/month order by magnitude and falling back to the parser's locale order.
func (p Parser) parseDayMonth(s string) (string, bool) {
	sep := "/"
	if !strings.Contains(s, "/") {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 && len(parts) != 3 {
		return "", false
	}

	a, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return "", false
	}

	year := p.now().Year()
	if len(parts) == 3 {
		y, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return "", false
		}
		if y < 100 {
			y += 2000
		}
		year = y
	}

	day, month := a, b
	switch {
	case a > 12 && b <= 12:
		day, month = a, b
	case b > 12 && a <= 12:
		day, month = b, a
	case p.MonthFirst:
		day, month = b, a
	}
	return civil(year, month, day)
}

func civil(year, month, day int) (string, bool) {
	if year < 1900 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject overflow like Feb 30 rolling into March.
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func serialToDate(serial float64) string {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return ""
	}
	days := int(math.Floor(serial)) - serialEpochOffset
	t := time.Unix(0, 0).UTC().AddDate(0, 0, days)
	if t.Year() < 1900 || t.Year() > 9999 {
		return ""
	}
	return t.Format("2006-01-02")
}

// InstantMS coerces a cell value into Unix milliseconds. It returns 0, never
// an error, on unparseable input; callers must treat 0 as always expired.
// Beyond NormalizeDate's inputs it tolerates a leading apostrophe (used to
// pin a cell as literal text) and a truncated ISO timestamp missing its year.
func (p Parser) InstantMS(v any) int64 {
	switch val := v.(type) {
	case nil:
		return 0
	case time.Time:
		return val.UnixMilli()
	case float64:
		return serialToMS(val)
	case float32:
		return serialToMS(float64(val))
	case int:
		return serialToMS(float64(val))
	case int64:
		return serialToMS(float64(val))
	case string:
		return p.instantFromString(val)
	default:
		return p.instantFromString(fmt.Sprint(v))
	}
}

func (p Parser) instantFromString(s string) int64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "'"))
	if s == "" {
		return 0
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return serialToMS(f)
	}

	// Truncated ISO like "08-30T14:05:11Z": a year-less timestamp written by
	// an old client. Prefix the current year rather than dropping the row.
	if len(s) > 6 && s[2] == '-' && (s[5] == 'T' || s[5] == ' ') {
		s = fmt.Sprintf("%04d-%s", p.now().Year(), s)
	}

	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}

	// Date-only forms resolve to midnight UTC.
	if d := p.normalizeDateString(s); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

func serialToMS(serial float64) int64 {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 {
		return 0
	}
	ms := (serial - serialEpochOffset) * msPerDay
	if ms <= 0 {
		return 0
	}
	return int64(math.Round(ms))
}

// Amount coerces a cell value into a decimal amount. Display reads add
// thousands separators, which are stripped. The bool is false when the cell
// holds nothing numeric.
func Amount(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case string:
		s, ok := stripGrouping(strings.TrimSpace(val))
		if !ok || s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// stripGrouping removes digit-grouping commas as in "1,234.50". Commas that
// are not grouping ("1,2,3") mark the cell malformed instead of collapsing
// into a different number.
func stripGrouping(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if hasFrac && strings.Contains(fracPart, ",") {
		return "", false
	}
	groups := strings.Split(intPart, ",")
	head := strings.TrimPrefix(groups[0], "-")
	if head == "" || len(head) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	out := strings.Join(groups, "")
	if hasFrac {
		out += "." + fracPart
	}
	return out, true
}
