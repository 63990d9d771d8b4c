package object

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheSize bounds the in-memory read cache. Entries hold decompressed
// payloads keyed by id; immutability of objects makes invalidation moot.
const cacheSize = 512

type cached struct {
	objType ObjectType
	payload []byte
}

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Objects are zlib-deflated on
// disk and verified against their id on every read.
type Store struct {
	root  string
	cache *lru.Cache[Hash, cached]
}

// NewStore creates a Store rooted at the given directory (the repository's
// metadata directory). The objects/ subdirectory is created lazily on first
// write.
func NewStore(root string) *Store {
	cache, _ := lru.New[Hash, cached](cacheSize)
	return &Store{root: root, cache: cache}
}

// objectPath returns the filesystem path for a given id.
func (s *Store) objectPath(h Hash) string {
	hx := h.String()
	return filepath.Join(s.root, "objects", hx[:2], hx[2:])
}

// Has reports whether the store contains an object with the given id.
func (s *Store) Has(h Hash) bool {
	if s.cache.Contains(h) {
		return true
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its id. The payload is framed as
// "type len\0payload", hashed, deflated, and written atomically: data goes
// to a temp file in the destination fan-out directory and is then renamed
// into place. Writing an object that already exists is a no-op.
func (s *Store) Write(objType ObjectType, payload []byte) (Hash, error) {
	h, framed := HashObject(objType, payload)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	compressed, err := Compress(framed)
	if err != nil {
		return ZeroHash, fmt.Errorf("object write %s: %w", h, err)
	}

	hx := h.String()
	dir := filepath.Join(s.root, "objects", hx[:2])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ZeroHash, fmt.Errorf("object write mkdir: %w", err)
	}

	// Atomic write via temp + rename.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return ZeroHash, fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ZeroHash, fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ZeroHash, fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return ZeroHash, fmt.Errorf("object write rename: %w", err)
	}

	s.cache.Add(h, cached{objType: objType, payload: payload})
	return h, nil
}

// Read retrieves an object by id, returning its type and payload. The
// stored bytes are inflated, the envelope is validated, and the id is
// recomputed; any mismatch yields ErrCorruptObject.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if c, ok := s.cache.Get(h); ok {
		return c.objType, c.payload, nil
	}

	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrObjectNotFound, h)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	framed, err := Decompress(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	objType, payload, err := parseFrame(h, framed)
	if err != nil {
		return "", nil, err
	}

	if HashFramed(framed) != h {
		return "", nil, fmt.Errorf("%w: %s: content does not match id", ErrCorruptObject, h)
	}

	s.cache.Add(h, cached{objType: objType, payload: payload})
	return objType, payload, nil
}

// Type returns the type of a stored object. It reads the whole object
// through Read, so the payload is cached like any other read.
func (s *Store) Type(h Hash) (ObjectType, error) {
	objType, _, err := s.Read(h)
	return objType, err
}

// parseFrame splits "type len\0payload" and validates the header.
func parseFrame(h Hash, framed []byte) (ObjectType, []byte, error) {
	nul := bytes.IndexByte(framed, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("%w: %s: no header terminator", ErrCorruptObject, h)
	}
	header := string(framed[:nul])
	payload := framed[nul+1:]

	kind, lenStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("%w: %s: invalid header %q", ErrCorruptObject, h, header)
	}
	objType := ObjectType(kind)
	if !ValidType(objType) {
		return "", nil, fmt.Errorf("%w: %s: unknown type %q", ErrCorruptObject, h, kind)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: invalid length %q", ErrCorruptObject, h, lenStr)
	}
	if len(payload) != length {
		return "", nil, fmt.Errorf("%w: %s: length mismatch (header=%d, actual=%d)", ErrCorruptObject, h, length, len(payload))
	}
	return objType, payload, nil
}

// MinPrefixLen is the shortest id prefix ResolvePrefix accepts.
const MinPrefixLen = 4

// ResolvePrefix expands a short hex id prefix to the full id of the unique
// matching object. Prefixes shorter than MinPrefixLen, or matching zero or
// multiple objects, fail.
func (s *Store) ResolvePrefix(prefix string) (Hash, error) {
	if len(prefix) == 40 {
		h, err := ParseHash(prefix)
		if err != nil || !s.Has(h) {
			return ZeroHash, fmt.Errorf("%w: %q", ErrObjectNotFound, prefix)
		}
		return h, nil
	}
	if len(prefix) < MinPrefixLen || len(prefix) > 40 {
		return ZeroHash, fmt.Errorf("%w: %q", ErrObjectNotFound, prefix)
	}
	prefix = strings.ToLower(prefix)
	for _, c := range prefix {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return ZeroHash, fmt.Errorf("%w: %q", ErrObjectNotFound, prefix)
		}
	}

	fanout := filepath.Join(s.root, "objects", prefix[:2])
	entries, err := os.ReadDir(fanout)
	if err != nil {
		if os.IsNotExist(err) {
			return ZeroHash, fmt.Errorf("%w: %q", ErrObjectNotFound, prefix)
		}
		return ZeroHash, fmt.Errorf("resolve %q: %w", prefix, err)
	}

	rest := prefix[2:]
	var match Hash
	found := false
	for _, e := range entries {
		name := e.Name()
		if len(name) != 38 || !strings.HasPrefix(name, rest) {
			continue
		}
		h, err := ParseHash(prefix[:2] + name)
		if err != nil {
			continue
		}
		if found {
			return ZeroHash, fmt.Errorf("%w: %q", ErrAmbiguousPrefix, prefix)
		}
		match = h
		found = true
	}
	if !found {
		return ZeroHash, fmt.Errorf("%w: %q", ErrObjectNotFound, prefix)
	}
	return match, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob stores a blob and returns its id.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, b.Data)
}

// ReadBlob reads a blob by id.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeBlob)
	}
	return &Blob{Data: data}, nil
}

// WriteTree serializes and stores a Tree.
func (s *Store) WriteTree(t *Tree) (Hash, error) {
	data, err := MarshalTree(t)
	if err != nil {
		return ZeroHash, err
	}
	return s.Write(TypeTree, data)
}

// ReadTree reads and deserializes a Tree. Stored trees are read leniently:
// entry order is taken as found.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTree {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTree)
	}
	return UnmarshalTree(data, false)
}

// WriteCommit serializes and stores a Commit.
func (s *Store) WriteCommit(c *Commit) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeCommit)
	}
	return UnmarshalCommit(data)
}
