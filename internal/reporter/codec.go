package reporter

import (
	"fmt"
	"strconv"
	"strings"
)

// Header separators. Outcome headers carry a trailing space after each comma
// for compatibility with files written by earlier tools.
const (
	ActionSeparator       = ","
	OutcomeSeparator      = ", "
	rowSeparator     byte = ','
	lineTerminator   byte = '\n'
)

// EncodeHeader renders names in order, each followed by sep, then a newline.
func EncodeHeader(names []string, sep string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteString(sep)
	}
	b.WriteByte(lineTerminator)
	return b.String()
}

// EncodeRow renders counts as decimal fields, each followed by a comma, then a
// newline.
func EncodeRow(counts []uint64) []byte {
	buf := make([]byte, 0, len(counts)*4+1)
	for _, c := range counts {
		buf = strconv.AppendUint(buf, c, 10)
		buf = append(buf, rowSeparator)
	}
	return append(buf, lineTerminator)
}

// splitFields splits a line on commas, trims spaces and drops the empty field
// left by the trailing separator.
func splitFields(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}
	parts := strings.Split(line, string(rowSeparator))
	if last := len(parts) - 1; strings.TrimSpace(parts[last]) == "" {
		parts = parts[:last]
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseHeader returns the category names of a header line.
func ParseHeader(line string) []string {
	return splitFields(line)
}

// ParseRow reconstructs the counts of a data row.
func ParseRow(line string) ([]uint64, error) {
	fields := splitFields(line)
	counts := make([]uint64, len(fields))
	for i, f := range fields {
		c, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %w", ErrInvalidRow, i, err)
		}
		counts[i] = c
	}
	return counts, nil
}

// headersEqual compares two header lines ignoring separator spacing.
func headersEqual(a, b string) bool {
	fa, fb := splitFields(a), splitFields(b)
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if fa[i] != fb[i] {
			return false
		}
	}
	return true
}
