package importer

import (
	"math"
	"strconv"
	"strings"
)

// splitLines splits file content into lines the way the text decoder
// expects: surrounding whitespace stripped first so a trailing newline
// does not produce a phantom empty line.
func splitLines(content string) []string {
	return strings.Split(strings.TrimSpace(content), "\n")
}

// parseInt parses an integer cell. Spreadsheet tooling frequently writes
// integer columns as floats ("1925.0"), so an integral float is accepted;
// anything else returns the strconv error.
func parseInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err == nil {
		return n, nil
	}
	if f, ferr := strconv.ParseFloat(raw, 64); ferr == nil && f == math.Trunc(f) {
		return int(f), nil
	}
	return 0, err
}

// trueLiterals are the recognized spellings of "true" for is_active
// cells. Everything else is false (or the default, for empty cells).
var trueLiterals = map[string]bool{
	"true": true,
	"1":    true,
	"yes":  true,
}

// parseBool coerces a raw is_active value. An empty cell yields def;
// a non-empty cell is true only when it matches a recognized literal
// case-insensitively.
func parseBool(raw string, def bool) bool {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return def
	}
	return trueLiterals[raw]
}
