package object

import (
	"bytes"
	"fmt"
	"sort"
)

// validTreeMode reports whether mode is one of the recognized mode strings.
func validTreeMode(mode string) bool {
	switch mode {
	case TreeModeDir, TreeModeFile, TreeModeExecutable, TreeModeSymlink:
		return true
	}
	return false
}

// treeEntryLess orders entries by comparing names byte-by-byte with a '/'
// appended to subtree names. This is the canonical tree order: a tree
// serialized in any other order hashes to a different id.
func treeEntryLess(a, b TreeEntry) bool {
	return a.sortName() < b.sortName()
}

// MarshalTree serializes a tree. Entries are sorted into canonical order
// before encoding, so callers may pass them in any order. Each entry is
// encoded as "<mode> <name>\x00" followed by the raw 20-byte id.
func MarshalTree(t *Tree) ([]byte, error) {
	sorted := make([]TreeEntry, len(t.Entries))
	copy(sorted, t.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return treeEntryLess(sorted[i], sorted[j])
	})

	var buf bytes.Buffer
	for i, e := range sorted {
		if !validTreeMode(e.Mode) {
			return nil, fmt.Errorf("%w: unknown mode %q for entry %q", ErrMalformedTree, e.Mode, e.Name)
		}
		if e.Name == "" || bytes.ContainsAny([]byte(e.Name), "/\x00") {
			return nil, fmt.Errorf("%w: invalid entry name %q", ErrMalformedTree, e.Name)
		}
		if i > 0 && sorted[i-1].sortName() == e.sortName() {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrMalformedTree, e.Name)
		}
		fmt.Fprintf(&buf, "%s %s\x00", e.Mode, e.Name)
		buf.Write(e.ID[:])
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses tree bytes. In strict mode, out-of-order entries are
// rejected; in lenient mode they are accepted as read (but MarshalTree
// never re-emits them unsorted). Unrecognized modes are rejected in both
// modes.
func UnmarshalTree(data []byte, strict bool) (*Tree, error) {
	t := &Tree{}
	rest := data
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("%w: truncated entry (no mode separator)", ErrMalformedTree)
		}
		mode := string(rest[:sp])
		if !validTreeMode(mode) {
			return nil, fmt.Errorf("%w: unknown mode %q", ErrMalformedTree, mode)
		}
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: truncated entry (no name terminator)", ErrMalformedTree)
		}
		name := string(rest[:nul])
		if name == "" {
			return nil, fmt.Errorf("%w: empty entry name", ErrMalformedTree)
		}
		rest = rest[nul+1:]

		if len(rest) < 20 {
			return nil, fmt.Errorf("%w: truncated entry id for %q", ErrMalformedTree, name)
		}
		var id Hash
		copy(id[:], rest[:20])
		rest = rest[20:]

		entry := TreeEntry{Mode: mode, Name: name, ID: id}
		if strict && len(t.Entries) > 0 {
			prev := t.Entries[len(t.Entries)-1]
			if !treeEntryLess(prev, entry) {
				return nil, fmt.Errorf("%w: entries out of order (%q then %q)", ErrMalformedTree, prev.Name, name)
			}
		}
		t.Entries = append(t.Entries, entry)
	}
	return t, nil
}
