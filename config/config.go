package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"cryptopage/native/fees"
)

const (
	DefaultDataDir     = "./page-data"
	DefaultNetworkName = "cryptopage-local"
	DefaultBaseURI     = "ipfs://"
)

type Config struct {
	NetworkName string    `toml:"NetworkName" yaml:"network_name"`
	DataDir     string    `toml:"DataDir" yaml:"data_dir"`
	Owner       string    `toml:"Owner" yaml:"owner"`
	Treasury    string    `toml:"Treasury" yaml:"treasury"`
	Storage     Storage   `toml:"storage" yaml:"storage"`
	Token       Token     `toml:"token" yaml:"token"`
	Content     Content   `toml:"content" yaml:"content"`
	Comments    Comments  `toml:"comments" yaml:"comments"`
	Oracle      Oracle    `toml:"oracle" yaml:"oracle"`
	Log         Log       `toml:"log" yaml:"log"`
	Telemetry   Telemetry `toml:"telemetry" yaml:"telemetry"`
}

// Default returns the configuration written when no file exists.
func Default() *Config {
	return &Config{
		NetworkName: DefaultNetworkName,
		DataDir:     DefaultDataDir,
		Content: Content{
			BaseURI:       DefaultBaseURI,
			MintFeeBps:    fees.DefaultMintFeeBps,
			BurnFeeBps:    fees.DefaultBurnFeeBps,
			CommentFeeBps: fees.DefaultCommentFeeBps,
		},
		Log: Log{Env: "dev"},
	}
}

// Load loads the configuration from the given path. Files ending in .yaml or
// .yml are decoded as YAML, everything else as TOML. A missing file is created
// with defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path required")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	} else if err != nil {
		return nil, err
	}

	cfg := Default()
	if isYAML(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	} else {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config file %s has unknown key %s", path, undecoded[0].String())
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func (cfg *Config) normalize() {
	cfg.NetworkName = strings.TrimSpace(cfg.NetworkName)
	if cfg.NetworkName == "" {
		cfg.NetworkName = DefaultNetworkName
	}
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	cfg.Owner = strings.TrimSpace(cfg.Owner)
	cfg.Treasury = strings.TrimSpace(cfg.Treasury)
	cfg.Log.Env = strings.TrimSpace(cfg.Log.Env)
	if cfg.Log.Env == "" {
		cfg.Log.Env = "dev"
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		defer enc.Close()
		return enc.Encode(cfg)
	}
	return toml.NewEncoder(f).Encode(cfg)
}
