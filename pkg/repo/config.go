package repo

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the repository's .fvt/config file. It is stored as TOML, which
// keeps it to one key = value pair per line.
type Config struct {
	Name        string    `toml:"name"`
	Created     time.Time `toml:"created"`
	Root        string    `toml:"root"`
	Hash        string    `toml:"hash"`
	Compression string    `toml:"compression"`
}

func (r *Repo) configPath() string {
	return r.metaPath("config")
}

func readConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("read config: decode: %w", err)
	}
	return &cfg, nil
}

// ReadConfig reads .fvt/config.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg, err := readConfig(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ioErr("read", r.configPath(), err)
		}
		return nil, err
	}
	return cfg, nil
}

// WriteConfig atomically writes .fvt/config.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := writeFileAtomic(r.configPath(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	r.Config = cfg
	return nil
}
