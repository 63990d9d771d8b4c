// Package diff renders unified diffs between blob contents for the diff
// command.
package diff

import (
	"bytes"
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Unified returns a unified diff between old and new content, labeled
// a/<path> and b/<path>. Identical contents yield "".
func Unified(path string, oldB, newB []byte) string {
	if bytes.Equal(oldB, newB) {
		return ""
	}
	if isBinary(oldB) || isBinary(newB) {
		return fmt.Sprintf("Binary files a/%s and b/%s differ\n", path, path)
	}

	a, b := string(oldB), string(newB)
	edits := myers.ComputeEdits(span.URIFromPath(path), a, b)
	return fmt.Sprint(gotextdiff.ToUnified("a/"+path, "b/"+path, a, edits))
}

// isBinary applies the usual heuristic: a NUL byte in the first 8000
// bytes marks the content as binary.
func isBinary(data []byte) bool {
	probe := data
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
