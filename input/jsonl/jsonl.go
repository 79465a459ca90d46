// Package jsonl reads legacy catalogue extracts. Each extract is a
// JSON-lines file holding one record per line, named after its record
// kind.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
)

// Extension is the file extension of an extract.
const Extension = ".jsonl"

// MaxLineSize bounds a single record. Asset records carry base64 markup.
const MaxLineSize = 64 * 1024 * 1024

// Path returns the extract path for kind inside dir.
func Path(dir, kind string) string {
	return filepath.Join(dir, kind+Extension)
}

// Read decodes every non-blank line of r into a T.
func Read[T any](r io.Reader) ([]T, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var out []T
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: line %d: %v", errors.ErrInvalidData, line, err),
				"jsonl", "Read", "decode record")
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: after line %d: %v", errors.ErrInvalidData, line, err),
			"jsonl", "Read", "scan input")
	}
	return out, nil
}

// ReadFile decodes the extract at path. A missing file yields no records.
func ReadFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapFatal(err, "jsonl", "ReadFile", "open extract")
	}
	defer f.Close()

	recs, err := Read[T](f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
