package index

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/guts/pkg/object"
)

const (
	indexMagic   = "DIRC"
	indexVersion = 2

	// Fixed-width portion of an entry: ten u32 stat fields, the 20-byte
	// id, and the u16 flags.
	entryFixedLen = 10*4 + 20 + 2

	flagPathMask  = 0x0FFF
	flagStageMask = 0x3000
)

// Marshal encodes the index in the version-2 binary layout with a trailing
// SHA-1 checksum. Two indexes holding the same entries encode to identical
// bytes.
func (idx *Index) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(indexMagic)
	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], indexVersion)
	buf.Write(u32[:])
	binary.BigEndian.PutUint32(u32[:], uint32(len(idx.Entries)))
	buf.Write(u32[:])

	for _, e := range idx.Entries {
		for _, f := range []uint32{
			e.CTimeSec, e.CTimeNsec, e.MTimeSec, e.MTimeNsec,
			e.Dev, e.Ino, e.Mode, e.UID, e.GID, e.Size,
		} {
			binary.BigEndian.PutUint32(u32[:], f)
			buf.Write(u32[:])
		}
		buf.Write(e.ID[:])

		pathLen := len(e.Path)
		if pathLen > flagPathMask {
			pathLen = flagPathMask
		}
		flags := uint16(pathLen) | uint16(e.Stage)<<12
		var u16 [2]byte
		binary.BigEndian.PutUint16(u16[:], flags)
		buf.Write(u16[:])

		buf.WriteString(e.Path)
		// NUL terminator plus padding to an 8-byte entry boundary.
		raw := entryFixedLen + len(e.Path)
		padded := (raw + 8) &^ 7
		buf.Write(make([]byte, padded-raw))
	}

	sum := sha1.Sum(buf.Bytes())
	buf.Write(sum[:])
	return buf.Bytes()
}

// Unmarshal decodes version-2 index bytes, verifying the trailing
// checksum.
func Unmarshal(data []byte) (*Index, error) {
	if len(data) < 12+sha1.Size {
		return nil, fmt.Errorf("%w: too short", ErrMalformedIndex)
	}
	body, sum := data[:len(data)-sha1.Size], data[len(data)-sha1.Size:]
	if sha1.Sum(body) != [sha1.Size]byte(sum) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrMalformedIndex)
	}
	if string(body[:4]) != indexMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrMalformedIndex, body[:4])
	}
	if v := binary.BigEndian.Uint32(body[4:8]); v != indexVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedIndex, v)
	}
	count := binary.BigEndian.Uint32(body[8:12])

	idx := New()
	rest := body[12:]
	for i := uint32(0); i < count; i++ {
		if len(rest) < entryFixedLen {
			return nil, fmt.Errorf("%w: truncated entry %d", ErrMalformedIndex, i)
		}
		e := &Entry{}
		fields := []*uint32{
			&e.CTimeSec, &e.CTimeNsec, &e.MTimeSec, &e.MTimeNsec,
			&e.Dev, &e.Ino, &e.Mode, &e.UID, &e.GID, &e.Size,
		}
		for j, f := range fields {
			*f = binary.BigEndian.Uint32(rest[j*4:])
		}
		copy(e.ID[:], rest[40:60])
		flags := binary.BigEndian.Uint16(rest[60:62])
		e.Stage = int(flags&flagStageMask) >> 12

		nameBytes := rest[entryFixedLen:]
		nul := bytes.IndexByte(nameBytes, 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: unterminated path in entry %d", ErrMalformedIndex, i)
		}
		e.Path = string(nameBytes[:nul])
		if got := flags & flagPathMask; got != flagPathMask && int(got) != len(e.Path) {
			return nil, fmt.Errorf("%w: path length mismatch for %q", ErrMalformedIndex, e.Path)
		}

		padded := (entryFixedLen + len(e.Path) + 8) &^ 7
		if len(rest) < padded {
			return nil, fmt.Errorf("%w: truncated entry %d", ErrMalformedIndex, i)
		}
		rest = rest[padded:]

		if n := len(idx.Entries); n > 0 && !entryLess(idx.Entries[n-1], e) {
			return nil, fmt.Errorf("%w: entries out of order (%q then %q)", ErrMalformedIndex, idx.Entries[n-1].Path, e.Path)
		}
		idx.Entries = append(idx.Entries, e)
	}
	return idx, nil
}

// Load reads the index file at path. A missing file yields an empty
// index.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("load index: %w", err)
	}
	return Unmarshal(data)
}

// Save writes the index atomically: encode, write to a temp file beside
// the destination, rename into place.
func (idx *Index) Save(path string) error {
	data := idx.Marshal()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".index-*")
	if err != nil {
		return fmt.Errorf("save index tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index rename: %w", err)
	}
	return nil
}

// FromTree replaces the index contents with stage-0 entries derived from a
// tree walk. Fingerprints are zeroed, so every path is re-checked by hash
// until refreshed.
func FromTree(store *object.Store, root object.Hash) (*Index, error) {
	idx := New()
	if root.IsZero() {
		return idx, nil
	}
	err := walkTree(store, root, "", func(path string, e object.TreeEntry) {
		mode := uint32(ModeFile)
		switch e.Mode {
		case object.TreeModeExecutable:
			mode = ModeExecutable
		case object.TreeModeSymlink:
			mode = ModeSymlink
		}
		idx.Entries = append(idx.Entries, &Entry{
			Mode: mode, ID: e.ID, Path: path, Stage: StageMerged,
		})
	})
	if err != nil {
		return nil, err
	}
	idx.sortEntries()
	return idx, nil
}

// walkTree visits every blob entry under root, depth-first, invoking fn
// with the repo-relative path.
func walkTree(store *object.Store, root object.Hash, prefix string, fn func(string, object.TreeEntry)) error {
	tree, err := store.ReadTree(root)
	if err != nil {
		return err
	}
	for _, e := range tree.Entries {
		path := e.Name
		if prefix != "" {
			path = prefix + "/" + e.Name
		}
		if e.IsDir() {
			if err := walkTree(store, e.ID, path, fn); err != nil {
				return err
			}
			continue
		}
		fn(path, e)
	}
	return nil
}
