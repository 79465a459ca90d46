package textparse

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() (*Parser, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(logger), &buf
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		text string
		want YearMonthDay
	}{
		{"1916", YearMonthDay{Year: 1916, Kind: DateExact}},
		{"c 1916", YearMonthDay{Year: 1916, Kind: DateApproximate}},
		{"1916 Jun", YearMonthDay{Year: 1916, Month: 6, Kind: DateExact}},
		{"1916 June", YearMonthDay{Year: 1916, Month: 6, Kind: DateExact}},
		{"15/06/1916", YearMonthDay{Year: 1916, Month: 6, Day: 15, Kind: DateExact}},
		{"1916 Jun 15", YearMonthDay{Year: 1916, Month: 6, Day: 15, Kind: DateExact}},
		{"1916 Sept", YearMonthDay{Year: 1916, Month: 9, Kind: DateExact}},
		{"1916 Sept 3", YearMonthDay{Year: 1916, Month: 9, Day: 3, Kind: DateExact}},
		{"[1916 Jun]", YearMonthDay{Year: 1916, Month: 6, Kind: DateExact}},
		{"c [1850]", YearMonthDay{Year: 1850, Kind: DateApproximate}},
		{"3 September 1939", YearMonthDay{Year: 1939, Month: 9, Day: 3, Kind: DateExact}},
		{"September 3, 1939", YearMonthDay{Year: 1939, Month: 9, Day: 3, Kind: DateExact}},
		{"1939-09-03", YearMonthDay{Year: 1939, Month: 9, Day: 3, Kind: DateExact}},
		{"September 1939", YearMonthDay{Year: 1939, Month: 9, Kind: DateExact}},
		{"1916 June 15", YearMonthDay{Year: 1916, Month: 6, Day: 15, Kind: DateExact}},
		{"1916/6/15", YearMonthDay{Year: 1916, Month: 6, Day: 15, Kind: DateExact}},
		{"1916-6-5", YearMonthDay{Year: 1916, Month: 6, Day: 5, Kind: DateExact}},
		{"1916-06-15T10:30:00Z", YearMonthDay{Year: 1916, Month: 6, Day: 15, Kind: DateExact}},
		{"C 1916", YearMonthDay{Year: 1916, Kind: DateApproximate}},
		{"c. 1916", YearMonthDay{Year: 1916, Kind: DateApproximate}},
		{"c.1916 Jun", YearMonthDay{Year: 1916, Month: 6, Kind: DateApproximate}},
		{"circa 1916", YearMonthDay{Year: 1916, Kind: DateApproximate}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p, buf := newTestParser()
			assert.Equal(t, tt.want, p.ParseDate(tt.text))
			assert.Empty(t, buf.String())
		})
	}
}

func TestParseDate_Unparseable(t *testing.T) {
	p, buf := newTestParser()

	got := p.ParseDate("sometime in spring")
	assert.True(t, got.IsNone())
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "sometime in spring")
}

func TestParseDate_GeneralParseLeavesSpansAndFaces(t *testing.T) {
	p, buf := newTestParser()

	assert.True(t, p.ParseDate("1914 to 1918").IsNone())
	assert.True(t, p.ParseDate("Obverse: 1320").IsNone())
	assert.Contains(t, buf.String(), "1914 to 1918")
}

func TestParseDate_EmptyIsSilent(t *testing.T) {
	p, buf := newTestParser()

	assert.True(t, p.ParseDate("  ").IsNone())
	assert.Empty(t, buf.String())
}

func TestYearMonthDay_String(t *testing.T) {
	assert.Equal(t, "1916", YearMonthDay{Year: 1916, Kind: DateExact}.String())
	assert.Equal(t, "1916-06", YearMonthDay{Year: 1916, Month: 6, Kind: DateExact}.String())
	assert.Equal(t, "1916-06-15", YearMonthDay{Year: 1916, Month: 6, Day: 15, Kind: DateExact}.String())
	assert.Equal(t, "", YearMonthDay{}.String())
}

func TestParseDateRange(t *testing.T) {
	year := func(y int) YearMonthDay { return YearMonthDay{Year: y, Kind: DateExact} }
	approx := func(y int) YearMonthDay { return YearMonthDay{Year: y, Kind: DateApproximate} }

	tests := []struct {
		name string
		face string
		text string
		want DateRange
	}{
		{"year range", "", "1914-1918", DateRange{First: year(1914), Second: year(1918), Kind: RangeDate}},
		{"spaced range", "", "1914 - 1918", DateRange{First: year(1914), Second: year(1918), Kind: RangeDate}},
		{"face forces kind", "Obverse", "1916", DateRange{First: year(1916), Kind: RangeObverse}},
		{"reverse face", "Reverse", "1914-1918", DateRange{First: year(1914), Second: year(1918), Kind: RangeReverse}},
		{"unknown", "", "Unknown", DateRange{}},
		{"single date", "", "1916 Jun 15", DateRange{First: YearMonthDay{Year: 1916, Month: 6, Day: 15, Kind: DateExact}, Kind: RangeDate}},
		{"approximate single", "", "c 1916", DateRange{First: approx(1916), Kind: RangeApproximate}},
		{"approximate range", "", "c 1914-1918", DateRange{First: approx(1914), Second: approx(1918), Kind: RangeApproximate}},
		{"obverse year", "", "Obverse: 1320", DateRange{First: year(1320), Kind: RangeObverse}},
		{"reverse year", "", "Reverse: 1320", DateRange{First: year(1320), Kind: RangeReverse}},
		{"both faces year", "", "Obverse and Reverse: 1320", DateRange{First: year(1320), Kind: RangeIdenticalObverseAndReverse}},
		{"obverse range", "", "Obverse: 1320-1330", DateRange{First: year(1320), Second: year(1330), Kind: RangeObverse}},
		{"reverse range", "", "Reverse: 1320-1330", DateRange{First: year(1320), Second: year(1330), Kind: RangeReverse}},
		{"both faces range", "", "Obverse and Reverse: 1320-1330", DateRange{First: year(1320), Second: year(1330), Kind: RangeIdenticalObverseAndReverse}},
		{"bracketed", "", "[1914-1918]", DateRange{First: year(1914), Second: year(1918), Kind: RangeDate}},
		{"both faces forces kind", "Obverse and Reverse", "1916", DateRange{First: year(1916), Kind: RangeIdenticalObverseAndReverse}},
		{"both faces forces range kind", "obverse and reverse", "1914-1918", DateRange{First: year(1914), Second: year(1918), Kind: RangeIdenticalObverseAndReverse}},
		{"year first month name", "", "1916 June 15", DateRange{First: YearMonthDay{Year: 1916, Month: 6, Day: 15, Kind: DateExact}, Kind: RangeDate}},
		{"approximate with stop", "", "c. 1914-1918", DateRange{First: approx(1914), Second: approx(1918), Kind: RangeApproximate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := newTestParser()
			assert.Equal(t, tt.want, p.ParseDateRange(tt.face, tt.text))
			assert.Empty(t, buf.String())
		})
	}
}

func TestParseDateRange_Unparseable(t *testing.T) {
	p, buf := newTestParser()

	got := p.ParseDateRange("", "1914 to 1918")
	assert.True(t, got.IsNone())
	assert.Contains(t, buf.String(), "1914 to 1918")
}

func TestParseCentimetre(t *testing.T) {
	tests := []struct {
		name string
		face string
		text string
		want Dimension
	}{
		{"single", "", "5.5", Dimension{FirstPair: Pair{First: 55}, Kind: DimensionSingle}},
		{"pair", "", "5.5 x 3.2", Dimension{FirstPair: Pair{First: 55, Second: 32}, Kind: DimensionSingle}},
		{"pair with units", "", "5.5cm x 3.2 cm", Dimension{FirstPair: Pair{First: 55, Second: 32}, Kind: DimensionSingle}},
		{"faced single", "Obverse", "5.5", Dimension{FirstPair: Pair{First: 55}, Kind: DimensionObverse}},
		{"faced pair", "Reverse", "2 x 1", Dimension{FirstPair: Pair{First: 20, Second: 10}, Kind: DimensionReverse}},
		{"fragment", "", "Fragment", Dimension{Kind: DimensionFragment}},
		{"faced fragment", "Obverse", "Fragment", Dimension{Kind: DimensionObverseFragment}},
		{"reverse faced fragment", "Reverse", "fragment", Dimension{Kind: DimensionReverseFragment}},
		{"obverse fragment", "", "Obverse: Fragment", Dimension{Kind: DimensionObverseFragment}},
		{"reverse fragment", "", "Reverse: Fragment", Dimension{Kind: DimensionReverseFragment}},
		{"both fragment", "", "Obverse and Reverse: Fragment", Dimension{Kind: DimensionObverseAndReverseFragment}},
		{"both fragment lines", "", "Obverse: Fragment<lb/>Reverse: Fragment", Dimension{Kind: DimensionObverseAndReverseFragment}},
		{"obverse single", "", "Obverse: 4", Dimension{FirstPair: Pair{First: 40}, Kind: DimensionObverse}},
		{"reverse single", "", "Reverse: 4", Dimension{FirstPair: Pair{First: 40}, Kind: DimensionReverse}},
		{"obverse pair", "", "Obverse: 4 x 2", Dimension{FirstPair: Pair{First: 40, Second: 20}, Kind: DimensionObverse}},
		{"identical faces", "", "Obverse and Reverse: 4 x 2", Dimension{FirstPair: Pair{First: 40, Second: 20}, Kind: DimensionIdenticalObverseAndReverse}},
		{
			"two faces", "", "Obverse: 5 x 3<lb/>Reverse: 4 x 2",
			Dimension{FirstPair: Pair{First: 50, Second: 30}, SecondPair: Pair{First: 40, Second: 20}, Kind: DimensionFirstObverseSecondReverse},
		},
		{
			"two faces single", "", "Obverse: 5; Reverse: 4",
			Dimension{FirstPair: Pair{First: 50}, SecondPair: Pair{First: 40}, Kind: DimensionFirstObverseSecondReverse},
		},
		{
			"obverse fragment reverse measured", "", "Obverse: Fragment<lb/>Reverse: 4 x 2",
			Dimension{SecondPair: Pair{First: 40, Second: 20}, Kind: DimensionObverseFragmentReverseDimension},
		},
		{
			"obverse measured reverse fragment", "", "Obverse: 4 x 2<lb/>Reverse: Fragment",
			Dimension{FirstPair: Pair{First: 40, Second: 20}, Kind: DimensionObverseDimensionReverseFragment},
		},
		{"fragment measured", "", "Fragment: 3.1 x 2", Dimension{FirstPair: Pair{First: 31, Second: 20}, Kind: DimensionFragmentDimension}},
		{"measured fragment", "", "3.1 (fragment)", Dimension{FirstPair: Pair{First: 31}, Kind: DimensionFragmentDimension}},
		{"both faced pair", "Obverse and Reverse", "4 x 2", Dimension{FirstPair: Pair{First: 40, Second: 20}, Kind: DimensionIdenticalObverseAndReverse}},
		{"both faced single", "Obverse and Reverse", "4", Dimension{FirstPair: Pair{First: 40}, Kind: DimensionIdenticalObverseAndReverse}},
		{"both faced fragment", "Obverse and Reverse", "Fragment", Dimension{Kind: DimensionObverseAndReverseFragment}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := newTestParser()
			assert.Equal(t, tt.want, p.ParseCentimetre(tt.face, tt.text))
			assert.Empty(t, buf.String())
		})
	}
}

func TestParseCentimetre_Unparseable(t *testing.T) {
	p, buf := newTestParser()

	got := p.ParseCentimetre("", "about a hand span")
	assert.True(t, got.IsNone())
	assert.Contains(t, buf.String(), "about a hand span")
}

func TestParseFace(t *testing.T) {
	p, buf := newTestParser()

	assert.Equal(t, FaceObverse, p.ParseFace("Obverse"))
	assert.Equal(t, FaceReverse, p.ParseFace(" reverse "))
	assert.Equal(t, FaceObverseAndReverse, p.ParseFace("Obverse and Reverse"))
	assert.Equal(t, FaceNone, p.ParseFace(""))
	assert.Empty(t, buf.String())

	assert.Equal(t, FaceNone, p.ParseFace("edge"))
	assert.Contains(t, buf.String(), "edge")
}

func TestParseInteger(t *testing.T) {
	p, buf := newTestParser()

	n, ok := p.ParseInteger(" 1,024 ")
	require.True(t, ok)
	assert.Equal(t, int64(1024), n)

	_, ok = p.ParseInteger("")
	assert.False(t, ok)
	assert.Empty(t, buf.String())

	_, ok = p.ParseInteger("several")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "several")
}

func TestPackageFunctions(t *testing.T) {
	assert.Equal(t, DateExact, ParseDate("1916").Kind)
	assert.Equal(t, RangeDate, ParseDateRange("", "1914-1918").Kind)
	assert.Equal(t, DimensionSingle, ParseCentimetre("", "5.5").Kind)
}
