package object

import (
	"encoding/hex"
	"fmt"
)

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// ValidType reports whether t is one of the three storable object kinds.
func ValidType(t ObjectType) bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit:
		return true
	}
	return false
}

const (
	// Tree mode strings exactly as they appear on the wire.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
)

// Hash is the raw 20-byte SHA-1 object identifier.
//
// The zero value never corresponds to a real object and is safe to use as a
// sentinel in maps and struct fields.
type Hash [20]byte

// ZeroHash is the all-zero sentinel Hash.
var ZeroHash Hash

// ParseHash converts the canonical 40-character lowercase hex form into its
// raw 20-byte representation.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != 40 {
		return h, fmt.Errorf("parse hash %q: expected 40 hex characters, got %d", s, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parse hash %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

// MustParseHash is ParseHash for known-good literals; it panics on error.
func MustParseHash(s string) Hash {
	h, err := ParseHash(s)
	if err != nil {
		panic(err)
	}
	return h
}

// String returns the lowercase 40-hex textual form.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Short returns the abbreviated 8-hex form used in human-facing output.
func (h Hash) Short() string { return h.String()[:8] }

// IsZero reports whether h is the all-zero sentinel.
func (h Hash) IsZero() bool { return h == ZeroHash }

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object: a mode string, a name, and the
// id of the blob or subtree it points at.
type TreeEntry struct {
	Mode string
	Name string
	ID   Hash
}

// IsDir reports whether the entry names a subtree.
func (e TreeEntry) IsDir() bool { return e.Mode == TreeModeDir }

// sortName is the byte sequence tree ordering compares: the entry name with
// a trailing '/' for subtree entries.
func (e TreeEntry) sortName() string {
	if e.IsDir() {
		return e.Name + "/"
	}
	return e.Name
}

// Tree holds an ordered list of tree entries.
type Tree struct {
	Entries []TreeEntry // sorted per canonical tree order
}

// Signature is an author or committer line: identity plus a timestamp with
// its timezone offset (e.g. "+0200").
type Signature struct {
	Name  string
	Email string
	When  int64
	TZ    string
}

// Commit represents a commit pointing at a tree with metadata.
//
// Extra carries raw header lines (including continuation lines) that the
// parser did not recognize; they are re-emitted verbatim so that a parsed
// commit always round-trips to its original bytes.
type Commit struct {
	Tree      Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Extra     []string
	Message   string
}
