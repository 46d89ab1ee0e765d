package gcode

import (
	"strings"

	"pointprint/aim"
)

// ObjectTable maps declared object names to their bed centers.
// It is read-only once Extract returns it.
type ObjectTable struct {
	centers map[string]aim.Point
	order   []string
}

// NewObjectTable builds a table from explicit centers, mainly for callers
// that already know the object layout
func NewObjectTable(centers map[string]aim.Point) *ObjectTable {
	t := &ObjectTable{centers: make(map[string]aim.Point, len(centers))}
	for name, center := range centers {
		t.set(name, center)
	}
	return t
}

func (t *ObjectTable) set(name string, center aim.Point) {
	if _, exists := t.centers[name]; !exists {
		t.order = append(t.order, name)
	}
	t.centers[name] = center
}

// Center returns the center of the named object
func (t *ObjectTable) Center(name string) (aim.Point, bool) {
	if t == nil {
		return aim.Point{}, false
	}
	c, ok := t.centers[name]
	return c, ok
}

// Len returns the number of distinct objects
func (t *ObjectTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Names returns object names in first-declaration order
func (t *ObjectTable) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// Extract scans the declaration block that follows EXECUTABLE_BLOCK_START
// and collects every EXCLUDE_OBJECT_DEFINE in it.
//
// Blank lines and comments inside the block are skipped. The first other
// line that is not a declaration ends the block; declarations after it are
// ignored. A later declaration of the same name replaces the earlier center.
func Extract(lines []string) *ObjectTable {
	table := &ObjectTable{centers: make(map[string]aim.Point)}
	inBlock := false

	for _, line := range lines {
		if IsBlockStart(line) {
			inBlock = true
			continue
		}
		if !inBlock {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(line), DefineKeyword) {
			// Malformed declarations are dropped without closing the block
			if name, center, ok := ParseDefine(line); ok {
				table.set(name, center)
			}
			continue
		}
		if !IsSkippable(line) {
			break
		}
	}

	return table
}
