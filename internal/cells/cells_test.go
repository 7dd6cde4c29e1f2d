package cells

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func TestNormalizeDateSerial(t *testing.T) {
	// Serial 45000 = 25569 + 19431 days after 1970-01-01 = 2023-03-15.
	assert.Equal(t, "2023-03-15", NormalizeDate(45000.0))
	assert.Equal(t, "2023-03-15", NormalizeDate(45000))
	// Fractional part is time-of-day and is discarded for date use.
	assert.Equal(t, "2023-03-15", NormalizeDate(45000.75))
	// Serial arriving as a display string.
	assert.Equal(t, "2023-03-15", NormalizeDate("45000"))
	// Epoch anchor itself.
	assert.Equal(t, "1970-01-01", NormalizeDate(25569.0))
}

func TestNormalizeDateSerialISOAgreement(t *testing.T) {
	// For a valid serial s, normalizing s and normalizing the ISO string of
	// the same calendar day must agree.
	for _, serial := range []float64{25569, 40000, 45000, 45290.5} {
		iso := NormalizeDate(serial)
		assert.NotEmpty(t, iso)
		assert.Equal(t, iso, NormalizeDate(iso), "serial %v", serial)
	}
}

func TestNormalizeDateStrings(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-08-30", "2024-08-30"},
		{"2024-8-5", "2024-08-05"},
		{"2024/8/5", "2024-08-05"},
		{"2024-08-30T10:15:00Z", "2024-08-30"},
		{"30/08/2024", "2024-08-30"},
		{"08/30/2024", "2024-08-30"}, // 30 > 12 forces the day
		{"5-8-2024", "2024-08-05"},   // ambiguous: day-first default
		{"5/8/24", "2024-08-05"},
		{"Jan 2, 2024", "2024-01-02"},
		{"2 Jan 2024", "2024-01-02"},
		{"'2024-08-30", "2024-08-30"}, // apostrophe-escaped text cell
		{"", ""},
		{"not a date", ""},
		{"2024-02-30", ""}, // no rollover into March
		{"0/0/2024", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDate(tt.in), "NormalizeDate(%q)", tt.in)
	}
}

func TestNormalizeDateMonthFirst(t *testing.T) {
	p := Parser{MonthFirst: true, Now: fixedNow}
	assert.Equal(t, "2024-05-08", p.NormalizeDate("5/8/2024"))
	// Magnitude still wins over locale preference.
	assert.Equal(t, "2024-08-30", p.NormalizeDate("30/08/2024"))
}

func TestNormalizeDateYearlessTwoPart(t *testing.T) {
	p := Parser{Now: fixedNow}
	assert.Equal(t, "2025-08-05", p.NormalizeDate("5/8"))
	assert.Equal(t, "2025-08-30", p.NormalizeDate("30/8"))
}

func TestNormalizeDateNeverToday(t *testing.T) {
	p := Parser{Now: fixedNow}
	assert.Equal(t, "", p.NormalizeDate(nil))
	assert.Equal(t, "", p.NormalizeDate("garbage"))
}

func TestInstantMS(t *testing.T) {
	want := time.Date(2024, 8, 30, 10, 15, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, InstantMS("2024-08-30T10:15:00Z"))
	assert.Equal(t, want, InstantMS("'2024-08-30T10:15:00Z"))
	assert.Equal(t, want, InstantMS("2024-08-30T10:15:00"))
	assert.Equal(t, want, InstantMS("2024-08-30 10:15:00"))
}

func TestInstantMSYearlessISO(t *testing.T) {
	p := Parser{Now: fixedNow}
	want := time.Date(2025, 8, 30, 10, 15, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, p.InstantMS("08-30T10:15:00Z"))
}

func TestInstantMSSerial(t *testing.T) {
	// 45000.5 = noon on 2023-03-15.
	want := time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, InstantMS(45000.5))
}

func TestInstantMSDateOnly(t *testing.T) {
	want := time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, InstantMS("2024-08-30"))
}

func TestInstantMSFailure(t *testing.T) {
	assert.Equal(t, int64(0), InstantMS(""))
	assert.Equal(t, int64(0), InstantMS("nonsense"))
	assert.Equal(t, int64(0), InstantMS(nil))
	assert.Equal(t, int64(0), InstantMS(-5.0))
}

func TestAmount(t *testing.T) {
	got, ok := Amount(2500.0)
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(2500)))

	got, ok = Amount("1,234.50")
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromFloat(1234.5)))

	got, ok = Amount(" 300 ")
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(300)))

	got, ok = Amount("12,345,678")
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(12345678)))

	_, ok = Amount("")
	assert.False(t, ok)
	_, ok = Amount(nil)
	assert.False(t, ok)
	_, ok = Amount("n/a")
	assert.False(t, ok)
}

func TestAmountRejectsUngroupedCommas(t *testing.T) {
	for _, s := range []string{"1,2,3", "12,34", ",123", "1234,567", "1.2,3"} {
		_, ok := Amount(s)
		assert.False(t, ok, "%q must not collapse into a number", s)
	}
}
