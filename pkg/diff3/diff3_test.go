package diff3

import (
	"strings"
	"testing"
)

func merged(t *testing.T, base, ours, theirs string) Result {
	t.Helper()
	return Merge([]byte(base), []byte(ours), []byte(theirs))
}

func TestMerge_IdenticalInputs(t *testing.T) {
	res := merged(t, "a\nb\nc\n", "a\nb\nc\n", "a\nb\nc\n")
	if res.HasConflicts {
		t.Fatal("identical inputs conflicted")
	}
	if string(res.Merged) != "a\nb\nc\n" {
		t.Errorf("Merged = %q", res.Merged)
	}
}

func TestMerge_OursOnlyChange(t *testing.T) {
	res := merged(t, "a\nb\nc\n", "a\nB\nc\n", "a\nb\nc\n")
	if res.HasConflicts {
		t.Fatal("one-sided change conflicted")
	}
	if string(res.Merged) != "a\nB\nc\n" {
		t.Errorf("Merged = %q", res.Merged)
	}
}

func TestMerge_TheirsOnlyChange(t *testing.T) {
	res := merged(t, "a\nb\nc\n", "a\nb\nc\n", "a\nb\nC\n")
	if res.HasConflicts {
		t.Fatal("one-sided change conflicted")
	}
	if string(res.Merged) != "a\nb\nC\n" {
		t.Errorf("Merged = %q", res.Merged)
	}
}

func TestMerge_SeparateRegions(t *testing.T) {
	res := merged(t, "a\nb\nc\nd\ne\n", "A\nb\nc\nd\ne\n", "a\nb\nc\nd\nE\n")
	if res.HasConflicts {
		t.Fatal("changes to separate regions conflicted")
	}
	if string(res.Merged) != "A\nb\nc\nd\nE\n" {
		t.Errorf("Merged = %q", res.Merged)
	}
}

func TestMerge_SameChangeBothSides(t *testing.T) {
	res := merged(t, "a\nb\nc\n", "a\nX\nc\n", "a\nX\nc\n")
	if res.HasConflicts {
		t.Fatal("identical change on both sides conflicted")
	}
	if string(res.Merged) != "a\nX\nc\n" {
		t.Errorf("Merged = %q", res.Merged)
	}
}

func TestMerge_ConflictMarkers(t *testing.T) {
	res := merged(t, "a\nb\nc\n", "a\nours\nc\n", "a\ntheirs\nc\n")
	if !res.HasConflicts {
		t.Fatal("divergent change did not conflict")
	}
	want := "a\n<<<<<<< ours\nours\n=======\ntheirs\n>>>>>>> theirs\nc\n"
	if string(res.Merged) != want {
		t.Errorf("Merged = %q, want %q", res.Merged, want)
	}
}

func TestMerge_DeleteVersusModify(t *testing.T) {
	res := merged(t, "a\nb\nc\n", "a\nc\n", "a\nB\nc\n")
	if !res.HasConflicts {
		t.Fatal("delete vs modify did not conflict")
	}
	out := string(res.Merged)
	if !strings.Contains(out, "<<<<<<< ours\n=======\nB\n>>>>>>> theirs\n") {
		t.Errorf("Merged = %q", out)
	}
}

func TestMerge_DeleteBothSides(t *testing.T) {
	res := merged(t, "a\nb\nc\n", "a\nc\n", "a\nc\n")
	if res.HasConflicts {
		t.Fatal("matching deletes conflicted")
	}
	if string(res.Merged) != "a\nc\n" {
		t.Errorf("Merged = %q", res.Merged)
	}
}

func TestMerge_AppendsAtEnd(t *testing.T) {
	res := merged(t, "a\n", "a\nours-tail\n", "a\n")
	if res.HasConflicts {
		t.Fatal("one-sided append conflicted")
	}
	if string(res.Merged) != "a\nours-tail\n" {
		t.Errorf("Merged = %q", res.Merged)
	}
}

func TestMerge_BothAppendDifferently(t *testing.T) {
	res := merged(t, "a\n", "a\nx\n", "a\ny\n")
	if !res.HasConflicts {
		t.Fatal("divergent appends did not conflict")
	}
	out := string(res.Merged)
	if !strings.HasPrefix(out, "a\n<<<<<<< ours\nx\n=======\ny\n") {
		t.Errorf("Merged = %q", out)
	}
}

func TestMerge_EmptyBase(t *testing.T) {
	res := merged(t, "", "new file\n", "new file\n")
	if res.HasConflicts {
		t.Fatal("same file added on both sides conflicted")
	}
	if string(res.Merged) != "new file\n" {
		t.Errorf("Merged = %q", res.Merged)
	}

	res = merged(t, "", "ours\n", "theirs\n")
	if !res.HasConflicts {
		t.Fatal("different files added on both sides did not conflict")
	}
}

func TestMerge_AllEmpty(t *testing.T) {
	res := merged(t, "", "", "")
	if res.HasConflicts {
		t.Fatal("empty merge conflicted")
	}
	if len(res.Merged) != 0 {
		t.Errorf("Merged = %q, want empty", res.Merged)
	}
}

func TestMerge_MultilineReplacement(t *testing.T) {
	base := "intro\none\ntwo\nthree\noutro\n"
	ours := "intro\nONE\nTWO\nTHREE\noutro\n"
	res := merged(t, base, ours, base)
	if res.HasConflicts {
		t.Fatal("multi-line one-sided change conflicted")
	}
	if string(res.Merged) != ours {
		t.Errorf("Merged = %q", res.Merged)
	}
}

func TestDiffLines_Script(t *testing.T) {
	script := diffLines([]string{"a", "b", "c"}, []string{"a", "x", "c"})
	want := []edit{{keep, "a"}, {del, "b"}, {ins, "x"}, {keep, "c"}}
	if len(script) != len(want) {
		t.Fatalf("script = %v, want %v", script, want)
	}
	for i := range want {
		if script[i] != want[i] {
			t.Errorf("script[%d] = %v, want %v", i, script[i], want[i])
		}
	}
}

func TestDiffLines_Empties(t *testing.T) {
	if s := diffLines(nil, nil); s != nil {
		t.Errorf("diffLines(nil, nil) = %v", s)
	}
	s := diffLines(nil, []string{"a", "b"})
	if len(s) != 2 || s[0].kind != ins || s[1].kind != ins {
		t.Errorf("all-insert script = %v", s)
	}
	s = diffLines([]string{"a", "b"}, nil)
	if len(s) != 2 || s[0].kind != del || s[1].kind != del {
		t.Errorf("all-delete script = %v", s)
	}
}

func TestDiffLines_AppliesToTarget(t *testing.T) {
	a := []string{"one", "two", "three", "four"}
	b := []string{"zero", "one", "three", "3.5", "four"}

	var got []string
	for _, e := range diffLines(a, b) {
		if e.kind != del {
			got = append(got, e.line)
		}
	}
	if !sameLines(got, b) {
		t.Errorf("applied script = %v, want %v", got, b)
	}
}
