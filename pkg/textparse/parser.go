// Package textparse turns free-text catalogue fields into structured values.
//
// The grammars are ordered cascades of patterns. Several patterns can
// partially match the same text, so the order in which they are tried is
// part of the contract and must not be rearranged. A value that matches no
// pattern is reported with a None kind and a logged warning; callers must
// never assert a None result as a fact.
package textparse

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Parser parses free text, logging unparseable input to its logger.
type Parser struct {
	logger *slog.Logger
}

// New returns a Parser that logs to logger, or to slog.Default when nil.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

func (p *Parser) warn(field, text string) {
	p.logger.Warn("Unparseable text", "field", field, "text", text)
}

// Face identifies the side of a seal a value describes.
type Face int

const (
	FaceNone Face = iota
	FaceObverse
	FaceReverse
	FaceObverseAndReverse
)

// String returns the string representation of Face
func (f Face) String() string {
	switch f {
	case FaceObverse:
		return "Obverse"
	case FaceReverse:
		return "Reverse"
	case FaceObverseAndReverse:
		return "ObverseAndReverse"
	default:
		return "None"
	}
}

// ParseFace parses a face indicator. Empty text is FaceNone without a
// warning; unrecognised text is FaceNone with a warning.
func (p *Parser) ParseFace(text string) Face {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "":
		return FaceNone
	case "obverse":
		return FaceObverse
	case "reverse":
		return FaceReverse
	case "obverse and reverse":
		return FaceObverseAndReverse
	default:
		p.warn("face", text)
		return FaceNone
	}
}

// ParseInteger parses a whole number, tolerating surrounding space and
// thousands separators.
func (p *Parser) ParseInteger(text string) (int64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.warn("integer", text)
		return 0, false
	}
	return n, true
}

// ParseDate parses text with a Parser logging to slog.Default.
func ParseDate(text string) YearMonthDay {
	return New(nil).ParseDate(text)
}

// ParseDateRange parses text with a Parser logging to slog.Default.
func ParseDateRange(faceText, text string) DateRange {
	return New(nil).ParseDateRange(faceText, text)
}

// ParseCentimetre parses text with a Parser logging to slog.Default.
func ParseCentimetre(faceText, text string) Dimension {
	return New(nil).ParseCentimetre(faceText, text)
}

var (
	bracketPattern     = regexp.MustCompile(`[\[\]]`)
	septPattern        = regexp.MustCompile(`\bSept\b`)
	spacePattern       = regexp.MustCompile(`[ \t]+`)
	approximatePattern = regexp.MustCompile(`(?i)^(?:circa\s+|c\.\s*|c\s+)`)
)

// normalizeDateText strips bracket notation, normalises the "Sept"
// abbreviation and detects the approximate marker.
func normalizeDateText(text string) (string, bool) {
	s := bracketPattern.ReplaceAllString(text, "")
	s = septPattern.ReplaceAllString(s, "Sep")
	s = strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))

	approximate := false
	if m := approximatePattern.FindString(s); m != "" {
		approximate = true
		s = strings.TrimSpace(s[len(m):])
	}
	return s, approximate
}
