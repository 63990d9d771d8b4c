//go:build !linux

package index

import "io/fs"

// fillFingerprint records the portable subset of the fingerprint. The
// remaining fields stay zero; freshness checks look only at size and mtime.
func fillFingerprint(e *Entry, fi fs.FileInfo) {
	mt := fi.ModTime()
	e.MTimeSec = uint32(mt.Unix())
	e.MTimeNsec = uint32(mt.Nanosecond())
	e.Size = uint32(fi.Size())
}
