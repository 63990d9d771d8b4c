//go:build linux

package index

import (
	"io/fs"
	"syscall"
)

// fillFingerprint copies the stat fields the index records. The full set
// is only available through the platform stat structure; the portable
// fallback zeroes what it cannot see.
func fillFingerprint(e *Entry, fi fs.FileInfo) {
	mt := fi.ModTime()
	e.MTimeSec = uint32(mt.Unix())
	e.MTimeNsec = uint32(mt.Nanosecond())
	e.Size = uint32(fi.Size())

	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		e.CTimeSec = uint32(st.Ctim.Sec)
		e.CTimeNsec = uint32(st.Ctim.Nsec)
		e.Dev = uint32(st.Dev)
		e.Ino = uint32(st.Ino)
		e.UID = st.Uid
		e.GID = st.Gid
	}
}
