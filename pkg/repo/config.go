package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"

	"github.com/odvcencio/guts/pkg/object"
)

// Identity is the resolved author/committer identity plus signing
// configuration.
type Identity struct {
	Name       string
	Email      string
	SigningKey string // path to an SSH private key; empty disables signing
}

// userConfig is the optional user-global config file at
// ~/.config/guts/config.toml.
type userConfig struct {
	User struct {
		Name  string `toml:"name"`
		Email string `toml:"email"`
	} `toml:"user"`
	Signing struct {
		Key string `toml:"key"`
	} `toml:"signing"`
}

// Identity resolves the author identity. Sources, in order of
// precedence: GUTS_AUTHOR_NAME / GUTS_AUTHOR_EMAIL environment
// variables, the [user] section of .git/config, then the user-global
// config file. Missing name or email after all sources fails with
// ErrMissingIdentity.
func (r *Repo) Identity() (Identity, error) {
	id := Identity{
		Name:  os.Getenv("GUTS_AUTHOR_NAME"),
		Email: os.Getenv("GUTS_AUTHOR_EMAIL"),
	}
	id.SigningKey = os.Getenv("GUTS_SIGNING_KEY")

	if id.Name == "" || id.Email == "" || id.SigningKey == "" {
		if cfg, err := ini.Load(filepath.Join(r.GitDir, "config")); err == nil {
			user := cfg.Section("user")
			if id.Name == "" {
				id.Name = user.Key("name").String()
			}
			if id.Email == "" {
				id.Email = user.Key("email").String()
			}
			if id.SigningKey == "" {
				id.SigningKey = user.Key("signingkey").String()
			}
		}
	}

	if id.Name == "" || id.Email == "" || id.SigningKey == "" {
		if ucfg, ok := loadUserConfig(); ok {
			if id.Name == "" {
				id.Name = ucfg.User.Name
			}
			if id.Email == "" {
				id.Email = ucfg.User.Email
			}
			if id.SigningKey == "" {
				id.SigningKey = ucfg.Signing.Key
			}
		}
	}

	if id.Name == "" || id.Email == "" {
		return Identity{}, ErrMissingIdentity
	}
	return id, nil
}

func loadUserConfig() (userConfig, bool) {
	var ucfg userConfig
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return ucfg, false
	}
	path := filepath.Join(cfgDir, "guts", "config.toml")
	if _, err := toml.DecodeFile(path, &ucfg); err != nil {
		return ucfg, false
	}
	return ucfg, true
}

// Signature stamps the identity with the current local time.
func (id Identity) Signature(now time.Time) object.Signature {
	return object.Signature{
		Name:  id.Name,
		Email: id.Email,
		When:  now.Unix(),
		TZ:    now.Format("-0700"),
	}
}

// SetUserConfig writes the [user] section of .git/config, preserving the
// rest of the file.
func (r *Repo) SetUserConfig(name, email string) error {
	path := filepath.Join(r.GitDir, "config")
	cfg, err := ini.Load(path)
	if err != nil {
		cfg = ini.Empty()
	}
	user := cfg.Section("user")
	if name != "" {
		user.Key("name").SetValue(name)
	}
	if email != "" {
		user.Key("email").SetValue(email)
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
