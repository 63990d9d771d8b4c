package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/odvcencio/guts/pkg/object"
)

// DefaultBranch is the branch HEAD points at in a fresh repository.
const DefaultBranch = "main"

// Init creates a new repository at path: the .git/ directory with HEAD,
// config, objects/, and refs/heads/. Fails if .git/ already exists.
func Init(path string) (*Repo, error) {
	gitDir := filepath.Join(path, ".git")

	if _, err := os.Stat(gitDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", gitDir)
	}

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(gitDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: refs/heads/"+DefaultBranch+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	cfg := ini.Empty()
	core, err := cfg.NewSection("core")
	if err != nil {
		return nil, fmt.Errorf("init: config: %w", err)
	}
	core.Key("repositoryformatversion").SetValue("0")
	core.Key("filemode").SetValue("true")
	core.Key("bare").SetValue("false")
	if err := cfg.SaveTo(filepath.Join(gitDir, "config")); err != nil {
		return nil, fmt.Errorf("init: write config: %w", err)
	}

	return &Repo{
		RootDir: path,
		GitDir:  gitDir,
		Store:   object.NewStore(gitDir),
		log:     traceLogger(),
	}, nil
}
