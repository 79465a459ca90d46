package textparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DimensionKind tags a parsed dimension.
type DimensionKind int

const (
	DimensionNone DimensionKind = iota
	DimensionSingle
	DimensionObverse
	DimensionReverse
	DimensionFirstObverseSecondReverse
	DimensionIdenticalObverseAndReverse
	DimensionFragment
	DimensionObverseFragment
	DimensionReverseFragment
	DimensionObverseAndReverseFragment
	DimensionObverseFragmentReverseDimension
	DimensionObverseDimensionReverseFragment
	DimensionFragmentDimension
)

var dimensionKindNames = map[DimensionKind]string{
	DimensionNone:                            "None",
	DimensionSingle:                          "Dimension",
	DimensionObverse:                         "Obverse",
	DimensionReverse:                         "Reverse",
	DimensionFirstObverseSecondReverse:       "FirstObverseSecondReverse",
	DimensionIdenticalObverseAndReverse:      "IdenticalObverseAndReverse",
	DimensionFragment:                        "Fragment",
	DimensionObverseFragment:                 "ObverseFragment",
	DimensionReverseFragment:                 "ReverseFragment",
	DimensionObverseAndReverseFragment:       "ObverseAndReverseFragment",
	DimensionObverseFragmentReverseDimension: "ObverseFragmentReverseDimension",
	DimensionObverseDimensionReverseFragment: "ObverseDimensionReverseFragment",
	DimensionFragmentDimension:               "FragmentDimension",
}

// String returns the string representation of DimensionKind
func (k DimensionKind) String() string {
	if name, ok := dimensionKindNames[k]; ok {
		return name
	}
	return "None"
}

// Pair is a measurement pair in millimetres. Zero values are absent.
type Pair struct {
	First  float64
	Second float64
}

// IsZero reports whether neither measurement is present.
func (p Pair) IsZero() bool {
	return p.First == 0 && p.Second == 0
}

// Dimension is up to two measurement pairs. In two-face kinds FirstPair
// describes the obverse and SecondPair the reverse; otherwise FirstPair
// holds the measurement.
type Dimension struct {
	FirstPair  Pair
	SecondPair Pair
	Kind       DimensionKind
}

// IsNone reports whether nothing was parsed.
func (d Dimension) IsNone() bool {
	return d.Kind == DimensionNone
}

const (
	num  = `(\d+(?:\.\d+)?)`
	by   = `\s*[x×]\s*`
	sep  = `\s*(?:\n|;)\s*`
	frag = `fragment`
	obv  = `obverse:\s*`
	rev  = `reverse:\s*`
	both = `obverse and reverse:\s*`
)

func dim(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + pattern + `$`)
}

var (
	lineBreakPattern = regexp.MustCompile(`(?i)<lb\s*/>`)
	unitPattern      = regexp.MustCompile(`(?i)\s*cms?\b\.?`)
)

// dimensionRule captures measurements into slots: 0 and 1 fill FirstPair,
// 2 and 3 fill SecondPair.
type dimensionRule struct {
	re    *regexp.Regexp
	kind  DimensionKind
	slots []int
	faced bool
}

// dimensionRules is tried in order. Fragment forms come first, then single
// measurements, single per-face measurements, pairs, per-face pairs and
// finally the fragment and measurement combinations.
var dimensionRules = []dimensionRule{
	{re: dim(frag), kind: DimensionFragment, faced: true},
	{re: dim(obv + frag), kind: DimensionObverseFragment},
	{re: dim(rev + frag), kind: DimensionReverseFragment},
	{re: dim(both + frag), kind: DimensionObverseAndReverseFragment},
	{re: dim(obv + frag + sep + rev + frag), kind: DimensionObverseAndReverseFragment},

	{re: dim(num), kind: DimensionSingle, slots: []int{0}, faced: true},

	{re: dim(obv + num), kind: DimensionObverse, slots: []int{0}},
	{re: dim(rev + num), kind: DimensionReverse, slots: []int{0}},

	{re: dim(num + by + num), kind: DimensionSingle, slots: []int{0, 1}, faced: true},

	{re: dim(obv + num + by + num), kind: DimensionObverse, slots: []int{0, 1}},
	{re: dim(rev + num + by + num), kind: DimensionReverse, slots: []int{0, 1}},
	{re: dim(both + num + by + num), kind: DimensionIdenticalObverseAndReverse, slots: []int{0, 1}},
	{re: dim(obv + num + by + num + sep + rev + num + by + num), kind: DimensionFirstObverseSecondReverse, slots: []int{0, 1, 2, 3}},
	{re: dim(obv + num + sep + rev + num), kind: DimensionFirstObverseSecondReverse, slots: []int{0, 2}},

	{re: dim(obv + frag + sep + rev + num + by + num), kind: DimensionObverseFragmentReverseDimension, slots: []int{2, 3}},
	{re: dim(obv + frag + sep + rev + num), kind: DimensionObverseFragmentReverseDimension, slots: []int{2}},
	{re: dim(obv + num + by + num + sep + rev + frag), kind: DimensionObverseDimensionReverseFragment, slots: []int{0, 1}},
	{re: dim(obv + num + sep + rev + frag), kind: DimensionObverseDimensionReverseFragment, slots: []int{0}},
	{re: dim(frag + `:?\s*` + num + by + num), kind: DimensionFragmentDimension, slots: []int{0, 1}},
	{re: dim(frag + `:?\s*` + num), kind: DimensionFragmentDimension, slots: []int{0}},
	{re: dim(num + by + num + `\s*\(?` + frag + `\)?`), kind: DimensionFragmentDimension, slots: []int{0, 1}},
	{re: dim(num + `\s*\(?` + frag + `\)?`), kind: DimensionFragmentDimension, slots: []int{0}},
}

// ParseCentimetre parses a free-text measurement in centimetres into
// millimetre pairs. A face of "Obverse", "Reverse" or "Obverse and
// Reverse" qualifies unfaced forms. Unmatched text yields a None dimension and a warning.
func (p *Parser) ParseCentimetre(faceText, text string) Dimension {
	s := normalizeDimensionText(text)
	if s == "" {
		return Dimension{}
	}
	face := strings.ToLower(strings.TrimSpace(faceText))

	for _, rule := range dimensionRules {
		m := rule.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}

		var values [4]float64
		for i, slot := range rule.slots {
			values[slot] = centimetresToMillimetres(m[i+1])
		}
		d := Dimension{
			FirstPair:  Pair{First: values[0], Second: values[1]},
			SecondPair: Pair{First: values[2], Second: values[3]},
			Kind:       rule.kind,
		}
		if rule.faced {
			d.Kind = applyFace(d.Kind, face)
		}
		return d
	}

	p.warn("dimension", text)
	return Dimension{}
}

func applyFace(kind DimensionKind, face string) DimensionKind {
	switch face {
	case "obverse":
		if kind == DimensionFragment {
			return DimensionObverseFragment
		}
		return DimensionObverse
	case "reverse":
		if kind == DimensionFragment {
			return DimensionReverseFragment
		}
		return DimensionReverse
	case "obverse and reverse":
		if kind == DimensionFragment {
			return DimensionObverseAndReverseFragment
		}
		return DimensionIdenticalObverseAndReverse
	}
	return kind
}

func normalizeDimensionText(text string) string {
	s := lineBreakPattern.ReplaceAllString(text, "\n")
	s = unitPattern.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " ")); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func centimetresToMillimetres(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return math.Round(v*10*1000) / 1000
}
