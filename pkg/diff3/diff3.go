// Package diff3 implements a line-based three-way merge. Each side is
// diffed against the common base, the edit scripts are folded into
// base-aligned spans, and the spans are walked in parallel to produce
// the merged output.
package diff3

import (
	"bytes"
	"strings"
)

// Result is the outcome of a three-way merge. Merged always holds the
// full output; when HasConflicts is set, divergent regions are
// bracketed with "<<<<<<< ours" / "=======" / ">>>>>>> theirs".
type Result struct {
	Merged       []byte
	HasConflicts bool
}

// Merge performs a three-way merge of base, ours and theirs. A region
// changed on one side takes that side's lines, identical changes
// collapse into one, and genuinely divergent changes produce a
// conflict region.
func Merge(base, ours, theirs []byte) Result {
	baseLines := toLines(base)
	return weave(
		spansAgainstBase(baseLines, toLines(ours)),
		spansAgainstBase(baseLines, toLines(theirs)),
	)
}

// toLines splits content into lines. A trailing newline does not yield
// a final empty element.
func toLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	lines := strings.Split(string(b), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// span covers the base line range [from, to) and carries the side's
// replacement lines for that range. Unchanged spans cover exactly one
// base line.
type span struct {
	from, to int
	lines    []string
	changed  bool
}

func spansAgainstBase(base, side []string) []span {
	script := diffLines(base, side)

	var spans []span
	at := 0
	for i := 0; i < len(script); {
		if script[i].kind == keep {
			spans = append(spans, span{from: at, to: at + 1, lines: []string{script[i].line}})
			at++
			i++
			continue
		}

		// Fold a run of deletes and inserts into one changed span.
		start := at
		var repl []string
		for i < len(script) && script[i].kind != keep {
			if script[i].kind == del {
				at++
			} else {
				repl = append(repl, script[i].line)
			}
			i++
		}
		spans = append(spans, span{from: start, to: at, lines: repl, changed: true})
	}
	return spans
}

// weave walks both span sequences in parallel, aligned by base ranges.
func weave(ours, theirs []span) Result {
	var out bytes.Buffer
	conflicted := false

	emit := func(lines []string) {
		for _, l := range lines {
			out.WriteString(l)
			out.WriteByte('\n')
		}
	}
	pick := func(oLines, tLines []string, oChanged, tChanged bool) {
		switch {
		case !oChanged:
			emit(tLines)
		case !tChanged:
			emit(oLines)
		case sameLines(oLines, tLines):
			emit(oLines)
		default:
			conflicted = true
			out.WriteString("<<<<<<< ours\n")
			emit(oLines)
			out.WriteString("=======\n")
			emit(tLines)
			out.WriteString(">>>>>>> theirs\n")
		}
	}

	oi, ti := 0, 0
	for oi < len(ours) || ti < len(theirs) {
		switch {
		case oi >= len(ours):
			emit(theirs[ti].lines)
			ti++
		case ti >= len(theirs):
			emit(ours[oi].lines)
			oi++
		case ours[oi].from == theirs[ti].from && ours[oi].to == theirs[ti].to:
			o, t := ours[oi], theirs[ti]
			pick(o.lines, t.lines, o.changed, t.changed)
			oi++
			ti++
		default:
			// A change on one side straddles several spans on the other.
			// Grow the window until both sides line up again.
			end := max(ours[oi].to, theirs[ti].to)
			var oWin, tWin []span
			for {
				moved := false
				for oi < len(ours) && ours[oi].from < end {
					end = max(end, ours[oi].to)
					oWin = append(oWin, ours[oi])
					oi++
					moved = true
				}
				for ti < len(theirs) && theirs[ti].from < end {
					end = max(end, theirs[ti].to)
					tWin = append(tWin, theirs[ti])
					ti++
					moved = true
				}
				if !moved {
					break
				}
			}
			oLines, oChanged := collect(oWin)
			tLines, tChanged := collect(tWin)
			pick(oLines, tLines, oChanged, tChanged)
		}
	}

	return Result{Merged: out.Bytes(), HasConflicts: conflicted}
}

func collect(spans []span) (lines []string, changed bool) {
	for _, s := range spans {
		lines = append(lines, s.lines...)
		changed = changed || s.changed
	}
	return lines, changed
}

func sameLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
