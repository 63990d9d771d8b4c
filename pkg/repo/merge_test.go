package repo

import (
	"errors"
	"strings"
	"testing"

	"github.com/odvcencio/guts/pkg/index"
	"github.com/odvcencio/guts/pkg/object"
)

// divergedRepo builds:
//
//	base (f.txt = baseContent) -- ours (on main)
//	                          \-- theirs (on side)
func divergedRepo(t *testing.T, baseContent, oursContent, theirsContent string) (*Repo, object.Hash, object.Hash) {
	t.Helper()
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"f.txt": baseContent})

	if err := r.CheckoutNewBranch("side"); err != nil {
		t.Fatalf("CheckoutNewBranch: %v", err)
	}
	theirs := commitFiles(t, r, "theirs", map[string]string{"f.txt": theirsContent})

	if err := r.CheckoutBranch("main"); err != nil {
		t.Fatalf("CheckoutBranch(main): %v", err)
	}
	ours := commitFiles(t, r, "ours", map[string]string{"f.txt": oursContent})
	return r, ours, theirs
}

func TestMergeBase_ForkPoint(t *testing.T) {
	r := newTestRepo(t)
	base := commitFiles(t, r, "base", map[string]string{"f.txt": "base\n"})
	if err := r.CheckoutNewBranch("side"); err != nil {
		t.Fatalf("CheckoutNewBranch: %v", err)
	}
	theirs := commitFiles(t, r, "theirs", map[string]string{"f.txt": "theirs\n"})
	if err := r.CheckoutBranch("main"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}
	ours := commitFiles(t, r, "ours", map[string]string{"f.txt": "ours\n"})

	got, err := r.MergeBase(ours, theirs)
	if err != nil {
		t.Fatalf("MergeBase: %v", err)
	}
	if got != base {
		t.Errorf("MergeBase = %s, want %s", got, base)
	}

	// An ancestor pair resolves to the ancestor itself.
	got, err = r.MergeBase(base, ours)
	if err != nil {
		t.Fatalf("MergeBase(ancestor): %v", err)
	}
	if got != base {
		t.Errorf("MergeBase(ancestor) = %s, want %s", got, base)
	}
}

func TestMerge_NonOverlappingEdits(t *testing.T) {
	r, ours, theirs := divergedRepo(t,
		"L1\nL2\nL3\n",
		"X1\nL2\nL3\n",
		"L1\nL2\nX3\n",
	)

	id, err := r.Merge(theirs, "merge side", nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if got := readWorkFileString(t, r, "f.txt"); got != "X1\nL2\nX3\n" {
		t.Errorf("merged f.txt = %q, want %q", got, "X1\nL2\nX3\n")
	}

	c, err := r.Store.ReadCommit(id)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 2 || c.Parents[0] != ours || c.Parents[1] != theirs {
		t.Errorf("parents = %v, want [%s %s]", c.Parents, ours, theirs)
	}

	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.Kind != HeadOnBranch || head.Branch != "main" || head.ID != id {
		t.Errorf("Head = %+v, want main at %s", head, id)
	}

	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Clean() {
		t.Errorf("status not clean after merge: %+v", st)
	}
}

func TestMerge_OverlappingEditsConflict(t *testing.T) {
	r, ours, theirs := divergedRepo(t,
		"L1\nL2\nL3\n",
		"L1\nours\nL3\n",
		"L1\ntheirs\nL3\n",
	)

	_, err := r.Merge(theirs, "merge side", nil)
	var conflict *MergeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Merge = %v, want MergeConflictError", err)
	}
	if len(conflict.Paths) != 1 || conflict.Paths[0] != "f.txt" {
		t.Errorf("conflict paths = %v, want [f.txt]", conflict.Paths)
	}

	// No merge commit was created.
	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.ID != ours {
		t.Errorf("HEAD = %s, want unchanged %s", head.ID, ours)
	}

	// The working file carries conflict markers for both sides.
	got := readWorkFileString(t, r, "f.txt")
	for _, want := range []string{"<<<<<<< ours", "=======", ">>>>>>> theirs", "ours\n", "theirs\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("merged file missing %q:\n%s", want, got)
		}
	}

	// The index records all three stages.
	idx, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if !idx.HasConflicts() {
		t.Fatal("index has no conflicts recorded")
	}
	for _, stage := range []int{index.StageBase, index.StageOurs, index.StageTheirs} {
		found := false
		for _, e := range idx.Entries {
			if e.Path == "f.txt" && e.Stage == stage {
				found = true
			}
		}
		if !found {
			t.Errorf("missing stage %d entry for f.txt", stage)
		}
	}

	// Committing is refused until the conflict is resolved.
	if _, err := r.Commit(CommitOptions{Message: "broken"}); err == nil {
		t.Error("Commit succeeded with unresolved conflicts")
	}

	// Resolve, restage, and commit the merge by hand.
	writeWorkFile(t, r, "f.txt", "L1\nresolved\nL3\n")
	if err := r.Add([]string{"f.txt"}); err != nil {
		t.Fatalf("Add resolution: %v", err)
	}
	if _, err := r.Commit(CommitOptions{Message: "resolved", Merging: []object.Hash{theirs}}); err != nil {
		t.Fatalf("Commit resolution: %v", err)
	}
}

func TestMerge_AlreadyUpToDate(t *testing.T) {
	r := newTestRepo(t)
	base := commitFiles(t, r, "base", map[string]string{"f.txt": "one\n"})
	commitFiles(t, r, "more", map[string]string{"f.txt": "two\n"})

	if _, err := r.Merge(base, "merge old", nil); !errors.Is(err, ErrAlreadyUpToDate) {
		t.Fatalf("Merge(ancestor) = %v, want ErrAlreadyUpToDate", err)
	}

	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if _, err := r.Merge(head.ID, "merge self", nil); !errors.Is(err, ErrAlreadyUpToDate) {
		t.Fatalf("Merge(HEAD) = %v, want ErrAlreadyUpToDate", err)
	}
}

func TestMerge_TheirsOnlyChange(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"f.txt": "one\n"})

	if err := r.CheckoutNewBranch("side"); err != nil {
		t.Fatalf("CheckoutNewBranch: %v", err)
	}
	theirs := commitFiles(t, r, "theirs", map[string]string{
		"f.txt":   "theirs\n",
		"new.txt": "brand new\n",
	})
	if err := r.CheckoutBranch("main"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}
	commitFiles(t, r, "ours", map[string]string{"g.txt": "unrelated\n"})

	if _, err := r.Merge(theirs, "merge side", nil); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got := readWorkFileString(t, r, "f.txt"); got != "theirs\n" {
		t.Errorf("f.txt = %q, want theirs' version", got)
	}
	if got := readWorkFileString(t, r, "new.txt"); got != "brand new\n" {
		t.Errorf("new.txt = %q", got)
	}
	if got := readWorkFileString(t, r, "g.txt"); got != "unrelated\n" {
		t.Errorf("g.txt = %q", got)
	}
}

func TestMerge_DeleteModifyConflict(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"f.txt": "one\n", "keep.txt": "k\n"})

	if err := r.CheckoutNewBranch("side"); err != nil {
		t.Fatalf("CheckoutNewBranch: %v", err)
	}
	theirs := commitFiles(t, r, "theirs edits", map[string]string{"f.txt": "edited by theirs\n"})
	if err := r.CheckoutBranch("main"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}
	if err := r.Remove([]string{"f.txt"}, false); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := r.Commit(CommitOptions{Message: "ours deletes"}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	_, err := r.Merge(theirs, "merge side", nil)
	var conflict *MergeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Merge = %v, want MergeConflictError", err)
	}
	if len(conflict.Paths) != 1 || conflict.Paths[0] != "f.txt" {
		t.Errorf("conflict paths = %v, want [f.txt]", conflict.Paths)
	}
	// The surviving side's content is left in the working tree.
	if got := readWorkFileString(t, r, "f.txt"); got != "edited by theirs\n" {
		t.Errorf("f.txt = %q, want the modified side's content", got)
	}
}

func TestMerge_BinaryContentConflictsKeepingOurs(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"blob.bin": "plain\n"})

	if err := r.CheckoutNewBranch("side"); err != nil {
		t.Fatalf("CheckoutNewBranch: %v", err)
	}
	theirs := commitFiles(t, r, "theirs", map[string]string{"blob.bin": "their\x00bytes"})
	if err := r.CheckoutBranch("main"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}
	commitFiles(t, r, "ours", map[string]string{"blob.bin": "our\x00bytes"})

	_, err := r.Merge(theirs, "merge side", nil)
	var conflict *MergeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Merge = %v, want MergeConflictError", err)
	}
	if got := readWorkFileString(t, r, "blob.bin"); got != "our\x00bytes" {
		t.Errorf("blob.bin = %q, want ours kept without markers", got)
	}
}

func TestMerge_DirtyWorktreeBlocks(t *testing.T) {
	r, _, theirs := divergedRepo(t,
		"L1\nL2\nL3\n",
		"X1\nL2\nL3\n",
		"L1\nL2\nX3\n",
	)
	writeWorkFile(t, r, "f.txt", "dirty\n")

	_, err := r.Merge(theirs, "merge side", nil)
	var overwrite *WouldOverwriteError
	if !errors.As(err, &overwrite) {
		t.Fatalf("Merge = %v, want WouldOverwriteError", err)
	}
	if got := readWorkFileString(t, r, "f.txt"); got != "dirty\n" {
		t.Errorf("f.txt = %q, local edit lost", got)
	}
}
