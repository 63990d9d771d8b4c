package repo

import (
	"strings"
	"testing"
)

func TestDiffWorktree_ShowsUnstagedEdit(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"f.txt": "one\ntwo\n"})

	out, err := r.DiffWorktree()
	if err != nil {
		t.Fatalf("DiffWorktree: %v", err)
	}
	if out != "" {
		t.Errorf("clean tree produced a diff:\n%s", out)
	}

	writeWorkFile(t, r, "f.txt", "one\nTWO\n")
	out, err = r.DiffWorktree()
	if err != nil {
		t.Fatalf("DiffWorktree: %v", err)
	}
	for _, want := range []string{"a/f.txt", "b/f.txt", "-two", "+TWO"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q:\n%s", want, out)
		}
	}
}

func TestDiffStaged_ShowsIndexAgainstHead(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"f.txt": "one\n"})

	writeWorkFile(t, r, "f.txt", "changed\n")
	writeWorkFile(t, r, "new.txt", "added\n")
	if err := r.Add([]string{"f.txt", "new.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	out, err := r.DiffStaged()
	if err != nil {
		t.Fatalf("DiffStaged: %v", err)
	}
	for _, want := range []string{"-one", "+changed", "+added"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q:\n%s", want, out)
		}
	}

	// Staged changes do not show as unstaged.
	work, err := r.DiffWorktree()
	if err != nil {
		t.Fatalf("DiffWorktree: %v", err)
	}
	if work != "" {
		t.Errorf("unexpected unstaged diff:\n%s", work)
	}
}

func TestDiffWorktree_BinaryFile(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"blob.bin": "a\x00b"})

	writeWorkFile(t, r, "blob.bin", "c\x00d")
	out, err := r.DiffWorktree()
	if err != nil {
		t.Fatalf("DiffWorktree: %v", err)
	}
	if !strings.Contains(out, "Binary files a/blob.bin and b/blob.bin differ") {
		t.Errorf("binary diff = %q", out)
	}
}
