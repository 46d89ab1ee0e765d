// Package gcode recognizes the Klipper exclude-object markers in a sliced
// motion program and inserts camera servo directives into it.
package gcode

import (
	"fmt"
	"strconv"
	"strings"

	"pointprint/aim"
)

// Markers consumed from slicer output
const (
	BlockStartMarker = "EXECUTABLE_BLOCK_START"
	DefineKeyword    = "EXCLUDE_OBJECT_DEFINE"
	StartKeyword     = "EXCLUDE_OBJECT_START"
	ServoCommand     = "SET_SERVO"
)

// IsBlockStart reports whether the line opens the object declaration block
func IsBlockStart(line string) bool {
	return strings.Contains(line, BlockStartMarker)
}

// IsSkippable reports whether the line is blank or a full-line comment
func IsSkippable(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || line[0] == ';'
}

// ParseDefine extracts the object name and center from an
// EXCLUDE_OBJECT_DEFINE line. ok is false if the line is not a declaration
// or lacks a usable NAME= or CENTER= field.
func ParseDefine(line string) (name string, center aim.Point, ok bool) {
	rest, found := cutKeyword(strings.TrimSpace(line), DefineKeyword)
	if !found {
		return "", aim.Point{}, false
	}

	name = fieldValue(rest, "NAME")
	if name == "" {
		return "", aim.Point{}, false
	}

	raw := fieldValue(rest, "CENTER")
	x, pos, ok := parseFloat(raw, 0)
	if !ok || pos >= len(raw) || raw[pos] != ',' {
		return "", aim.Point{}, false
	}
	y, _, ok := parseFloat(raw, pos+1)
	if !ok {
		return "", aim.Point{}, false
	}

	return name, aim.Point{X: x, Y: y}, true
}

// ParseExcludeStart returns the object named by an
// EXCLUDE_OBJECT_START NAME=<name> line
func ParseExcludeStart(line string) (string, bool) {
	rest, found := cutKeyword(strings.TrimSpace(line), StartKeyword)
	if !found {
		return "", false
	}

	first := strings.Fields(rest)
	if len(first) == 0 {
		return "", false
	}
	name, found := strings.CutPrefix(first[0], "NAME=")
	if !found || name == "" {
		return "", false
	}
	return name, true
}

// IsMove reports whether the line is a G0-G3 move carrying at least one
// X, Y or Z coordinate. Matching is case-insensitive.
func IsMove(line string) bool {
	line = strings.TrimSpace(line)
	if len(line) < 3 || toUpper(line[0]) != 'G' || line[1] < '0' || line[1] > '3' || !isSpace(line[2]) {
		return false
	}

	args := line[2:]
	if idx := strings.IndexByte(args, ';'); idx >= 0 {
		args = args[:idx]
	}

	for _, word := range strings.Fields(args) {
		switch toUpper(word[0]) {
		case 'X', 'Y', 'Z':
			if _, end, ok := parseFloat(word, 1); ok && end == len(word) {
				return true
			}
		}
	}
	return false
}

// FormatServo renders a SET_SERVO directive terminated by eol
func FormatServo(servo string, angle float64, eol string) string {
	return fmt.Sprintf("%s SERVO=%s ANGLE=%.2f%s", ServoCommand, servo, angle, eol)
}

// IsServoDirective reports whether the line drives the named servo
func IsServoDirective(line, servo string) bool {
	return strings.Contains(line, ServoCommand) && strings.Contains(line, servo)
}

// lineEnding returns the terminator the line carries, if any
func lineEnding(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	}
	return ""
}

// cutKeyword strips a leading keyword that must be followed by whitespace
// or the end of the line
func cutKeyword(line, keyword string) (string, bool) {
	rest, found := strings.CutPrefix(line, keyword)
	if !found || (rest != "" && !isSpace(rest[0])) {
		return "", false
	}
	return rest, true
}

// fieldValue returns the value of a KEY=value field, up to the next whitespace
func fieldValue(line, key string) string {
	prefix := key + "="
	for _, word := range strings.Fields(line) {
		if value, found := strings.CutPrefix(word, prefix); found {
			return value
		}
	}
	return ""
}

// parseFloat parses a signed decimal number (no exponent) starting at pos
// and returns the value and the position after it
func parseFloat(s string, pos int) (float64, int, bool) {
	start := pos
	if pos < len(s) && (s[pos] == '-' || s[pos] == '+') {
		pos++
	}

	digits := 0
	for pos < len(s) && isDigit(s[pos]) {
		pos++
		digits++
	}
	if pos < len(s) && s[pos] == '.' {
		pos++
		for pos < len(s) && isDigit(s[pos]) {
			pos++
			digits++
		}
	}

	if digits == 0 {
		return 0, start, false
	}

	value, err := strconv.ParseFloat(s[start:pos], 64)
	if err != nil {
		return 0, start, false
	}
	return value, pos, true
}

// isDigit checks if a byte is a decimal digit
func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isSpace checks for the whitespace G-code uses between words
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// toUpper converts a byte to uppercase
func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
