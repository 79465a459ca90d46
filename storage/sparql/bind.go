package sparql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/storage"
)

// Bind replaces @name tokens in a query template with the SPARQL form of
// params[name]. Tokens inside IRIs, string literals and comments are left
// alone, as are language tags following a literal. An unbound token is an
// error.
func Bind(text string, params map[string]any) (string, error) {
	var sb strings.Builder
	sb.Grow(len(text))

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '<':
			end := iriEnd(text, i)
			sb.WriteString(text[i:end])
			i = end
		case c == '"' || c == '\'':
			end := stringEnd(text, i)
			sb.WriteString(text[i:end])
			i = end
		case c == '#':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text) - i
			}
			sb.WriteString(text[i : i+end])
			i += end
		case c == '@' && i > 0 && (text[i-1] == '"' || text[i-1] == '\''):
			sb.WriteByte(c)
			i++
		case c == '@':
			end := i + 1
			for end < len(text) && isNameByte(text[end], end == i+1) {
				end++
			}
			name := text[i+1 : end]
			if name == "" {
				sb.WriteByte(c)
				i++
				continue
			}
			value, ok := params[name]
			if !ok {
				return "", errors.WrapInvalid(fmt.Errorf("%w: @%s", errors.ErrUnboundParameter, name), "sparql", "Bind", "bind parameter")
			}
			rendered, err := render(value)
			if err != nil {
				return "", errors.WrapInvalid(fmt.Errorf("@%s: %w", name, err), "sparql", "Bind", "render parameter")
			}
			sb.WriteString(rendered)
			i = end
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), nil
}

// iriEnd returns the index after an IRI reference starting at i, or i+1
// when the '<' is an operator.
func iriEnd(text string, i int) int {
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '>':
			return j + 1
		case ' ', '\t', '\n', '\r', '<', '"', '{', '}':
			return i + 1
		}
	}
	return i + 1
}

func stringEnd(text string, i int) int {
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(text)
}

func isNameByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

func render(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return graph.NewLiteral(v).String(), nil
	case storage.IRI:
		if strings.ContainsAny(string(v), " <>\"{}|^`\\\n\t") || v == "" {
			return "", fmt.Errorf("%w: invalid IRI %q", errors.ErrInvalidData, string(v))
		}
		return "<" + string(v) + ">", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	case graph.Term:
		if v.IsBlank() || v.IsZero() {
			return "", fmt.Errorf("%w: cannot bind %v", errors.ErrInvalidData, v)
		}
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: unsupported parameter type %T", errors.ErrInvalidData, value)
	}
}

// UpdateText renders a diff as DELETE DATA and INSERT DATA operations in
// one request, omitting an empty half.
func UpdateText(diff *graph.Diff) (string, error) {
	var ops []string
	for _, half := range []struct {
		op string
		g  *graph.Graph
	}{
		{"DELETE DATA", diff.Removed},
		{"INSERT DATA", diff.Added},
	} {
		if half.g.IsEmpty() {
			continue
		}
		var sb strings.Builder
		sb.WriteString(half.op)
		sb.WriteString(" {\n")
		for _, t := range half.g.Triples() {
			if t.Subject.IsBlank() || t.Object.IsBlank() {
				return "", errors.WrapInvalid(fmt.Errorf("%w: blank node in %s", errors.ErrInvalidData, t), "sparql", "UpdateText", "render diff")
			}
			sb.WriteString(t.String())
			sb.WriteString("\n")
		}
		sb.WriteString("}")
		ops = append(ops, sb.String())
	}
	return strings.Join(ops, " ;\n"), nil
}
