package extract

import (
	"strings"

	"github.com/poiesic/semkey/core"
)

// Suffixes and field names recognized by the derivation rules. Matching is
// case-insensitive and scans fields in declaration order.
const (
	suffixNameFull = "NAME_FULL"
	suffixNameOrg  = "NAME_ORG"

	fieldNameFirst  = "NAME_FIRST"
	fieldNameMiddle = "NAME_MIDDLE"
	fieldNameLast   = "NAME_LAST"
)

// maxDepth caps traversal depth. Structures nested deeper are treated as
// absent rather than risking unbounded recursion on hostile input.
const maxDepth = 32

// Name derives the canonical name for a record, or reports absence.
//
// Rules, first match wins:
//  1. The first field whose name ends in NAME_FULL or NAME_ORG and holds a
//     non-empty string, scanning mappings depth-first in declaration order.
//  2. The first mapping that holds any of NAME_FIRST, NAME_MIDDLE, NAME_LAST
//     as non-empty strings, joined with single spaces in that order.
//
// Non-string values under matching field names are treated as absent. A record
// with a derivable name from neither rule has no canonical name; that is a
// valid outcome, not an error.
func Name(rec *core.Record) (string, bool) {
	if rec == nil {
		return "", false
	}
	return FromValue(rec.Root)
}

// FromValue derives a canonical name from a bare value tree. Useful for query
// shapes that are not full records.
func FromValue(root *core.Value) (string, bool) {
	if root == nil {
		return "", false
	}

	visited := make(map[*core.Value]struct{})
	if name, ok := findFullName(root, visited, 0); ok {
		return name, true
	}

	clear(visited)
	if name, ok := findConstructedName(root, visited, 0); ok {
		return name, true
	}

	return "", false
}

// findFullName implements rule 1 as a depth-first fold that returns on the
// first hit.
func findFullName(v *core.Value, visited map[*core.Value]struct{}, depth int) (string, bool) {
	if v == nil || depth > maxDepth {
		return "", false
	}
	if _, seen := visited[v]; seen {
		return "", false
	}
	visited[v] = struct{}{}

	switch v.Kind {
	case core.KindMapping:
		for _, f := range v.Fields {
			if f.Value == nil {
				continue
			}
			if f.Value.Kind == core.KindString {
				if isFullNameField(f.Name) && f.Value.Str != "" {
					return f.Value.Str, true
				}
				continue
			}
			if name, ok := findFullName(f.Value, visited, depth+1); ok {
				return name, true
			}
		}
	case core.KindSequence:
		for _, item := range v.Items {
			if name, ok := findFullName(item, visited, depth+1); ok {
				return name, true
			}
		}
	}

	return "", false
}

// findConstructedName implements rule 2: the first mapping carrying name
// parts yields a name built from whichever parts it has.
func findConstructedName(v *core.Value, visited map[*core.Value]struct{}, depth int) (string, bool) {
	if v == nil || depth > maxDepth {
		return "", false
	}
	if _, seen := visited[v]; seen {
		return "", false
	}
	visited[v] = struct{}{}

	switch v.Kind {
	case core.KindMapping:
		if name, ok := constructFromParts(v); ok {
			return name, true
		}
		for _, f := range v.Fields {
			if name, ok := findConstructedName(f.Value, visited, depth+1); ok {
				return name, true
			}
		}
	case core.KindSequence:
		for _, item := range v.Items {
			if name, ok := findConstructedName(item, visited, depth+1); ok {
				return name, true
			}
		}
	}

	return "", false
}

// constructFromParts joins NAME_FIRST, NAME_MIDDLE, NAME_LAST from a single
// mapping, omitting absent or empty parts.
func constructFromParts(v *core.Value) (string, bool) {
	parts := make([]string, 0, 3)
	for _, field := range []string{fieldNameFirst, fieldNameMiddle, fieldNameLast} {
		part := v.FieldNamed(field)
		if part != nil && part.Kind == core.KindString && part.Str != "" {
			parts = append(parts, part.Str)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func isFullNameField(name string) bool {
	upper := strings.ToUpper(name)
	return strings.HasSuffix(upper, suffixNameFull) || strings.HasSuffix(upper, suffixNameOrg)
}
