package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIdentity_EnvironmentWins(t *testing.T) {
	r := newTestRepo(t)
	if err := r.SetUserConfig("Config Name", "config@example.com"); err != nil {
		t.Fatalf("SetUserConfig: %v", err)
	}

	id, err := r.Identity()
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if id.Name != "Test User" || id.Email != "test@example.com" {
		t.Errorf("identity = %+v, want the environment values", id)
	}
}

func TestIdentity_FallsBackToRepoConfig(t *testing.T) {
	r := newTestRepo(t)
	t.Setenv("GUTS_AUTHOR_NAME", "")
	t.Setenv("GUTS_AUTHOR_EMAIL", "")

	if err := r.SetUserConfig("Config Name", "config@example.com"); err != nil {
		t.Fatalf("SetUserConfig: %v", err)
	}

	id, err := r.Identity()
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if id.Name != "Config Name" || id.Email != "config@example.com" {
		t.Errorf("identity = %+v, want the .git/config values", id)
	}
}

func TestIdentity_FallsBackToUserConfig(t *testing.T) {
	r := newTestRepo(t)
	t.Setenv("GUTS_AUTHOR_NAME", "")
	t.Setenv("GUTS_AUTHOR_EMAIL", "")

	cfgDir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "guts")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	toml := "[user]\nname = \"Global Name\"\nemail = \"global@example.com\"\n\n[signing]\nkey = \"~/.ssh/id_ed25519\"\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatalf("write config.toml: %v", err)
	}

	id, err := r.Identity()
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if id.Name != "Global Name" || id.Email != "global@example.com" {
		t.Errorf("identity = %+v, want the user-global values", id)
	}
	if id.SigningKey != "~/.ssh/id_ed25519" {
		t.Errorf("SigningKey = %q", id.SigningKey)
	}
}

func TestIdentity_MissingEverywhere(t *testing.T) {
	r := newTestRepo(t)
	t.Setenv("GUTS_AUTHOR_NAME", "")
	t.Setenv("GUTS_AUTHOR_EMAIL", "")

	if _, err := r.Identity(); !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("Identity = %v, want ErrMissingIdentity", err)
	}
}

func TestSignature_StampsTimeAndZone(t *testing.T) {
	id := Identity{Name: "A", Email: "a@b.c"}
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.FixedZone("", -5*3600))

	sig := id.Signature(now)
	if sig.When != now.Unix() {
		t.Errorf("When = %d, want %d", sig.When, now.Unix())
	}
	if sig.TZ != "-0500" {
		t.Errorf("TZ = %q, want -0500", sig.TZ)
	}
	if sig.Name != "A" || sig.Email != "a@b.c" {
		t.Errorf("signature = %+v", sig)
	}
}
