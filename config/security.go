package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
)

const (
	maxConfigSize = 10 << 20 // 10MB max config file size
	maxJSONDepth  = 100
	maxEnvVarLen  = 10000
	maxPathLen    = 4096
)

func pathError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errors.ErrInvalidConfig}, args...)...)
}

// validateConfigPath rejects empty or oversized paths, relative paths
// that climb out of the working directory, and files that are neither
// JSON nor YAML.
func validateConfigPath(path string) error {
	if path == "" {
		return pathError("empty config path")
	}
	if len(path) > maxPathLen {
		return pathError("path too long: %d > %d", len(path), maxPathLen)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return pathError("cannot resolve absolute path: %v", err)
	}

	if filepath.IsAbs(path) {
		if strings.Contains(filepath.ToSlash(absPath), "..") {
			return pathError("path traversal not allowed: %s", path)
		}
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return pathError("cannot get working directory: %v", err)
		}
		relPath, err := filepath.Rel(cwd, absPath)
		if err != nil || strings.HasPrefix(relPath, "..") {
			return pathError("path traversal not allowed: %s resolves outside working directory", path)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return nil
	default:
		return pathError("only JSON or YAML config files allowed: %s", path)
	}
}

// safeReadFile reads a config file after checking its path, size and type.
func safeReadFile(path string) ([]byte, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, pathError("not a regular file: %s", path)
	}
	if info.Size() > maxConfigSize {
		return nil, pathError("config file too large: %d bytes > %d", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}
	return data, nil
}

// safeWriteFile writes a config file readable only by its owner.
func safeWriteFile(path string, data []byte) error {
	if err := validateConfigPath(path); err != nil {
		return err
	}
	if len(data) > maxConfigSize {
		return pathError("config data too large: %d bytes > %d", len(data), maxConfigSize)
	}
	return os.WriteFile(path, data, 0600)
}

func validateEnvVar(key, value string) error {
	if len(value) > maxEnvVarLen {
		return pathError("environment variable %s too long: %d > %d", key, len(value), maxEnvVarLen)
	}
	if strings.ContainsRune(value, 0) {
		return pathError("null byte in environment variable %s", key)
	}
	return nil
}

// validateJSONDepth bounds nesting so a hostile file cannot exhaust the
// decoder.
func validateJSONDepth(data []byte) error {
	depth := 0
	inString := false
	escaped := false

	for _, b := range data {
		switch {
		case escaped:
			escaped = false
			continue
		case inString && b == '\\':
			escaped = true
			continue
		case b == '"':
			inString = !inString
			continue
		case inString:
			continue
		}

		switch b {
		case '{', '[':
			depth++
			if depth > maxJSONDepth {
				return pathError("JSON nesting too deep: %d > %d", depth, maxJSONDepth)
			}
		case '}', ']':
			depth--
			if depth < 0 {
				return pathError("malformed JSON: unbalanced brackets")
			}
		}
	}

	if depth != 0 {
		return pathError("malformed JSON: unclosed brackets (depth=%d)", depth)
	}
	return nil
}
