package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	pageerrors "cryptopage/core/errors"
)

func TestLoadCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != DefaultDataDir || cfg.Content.MintFeeBps != 1000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.NetworkName != DefaultNetworkName {
		t.Fatalf("unexpected network name %q", reloaded.NetworkName)
	}
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `NetworkName = "page-test"
DataDir = "./data"
Owner = "0x1000000000000000000000000000000000000001"

[token]
InitialSupply = "1000"
RewardPerHourDivisor = 500

[content]
BaseURI = "ipfs://page/"
MintFeeBps = 250
BurnFeeBps = 0
CommentFeeBps = 3000

[oracle]
StaticWETHUSDT = "2000000000000000000000"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	params, err := cfg.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if params.Owner != common.HexToAddress("0x1000000000000000000000000000000000000001") {
		t.Fatalf("unexpected owner %s", params.Owner.Hex())
	}
	if params.InitialSupply.Int64() != 1000 || params.RewardPerHourDivisor != 500 {
		t.Fatalf("unexpected token params %+v", params)
	}
	if params.MintFeeBps != 250 || params.CommentFeeBps != 3000 || params.BaseURI != "ipfs://page/" {
		t.Fatalf("unexpected content params %+v", params)
	}
	if params.StaticWETHUSDT.String() != "2000000000000000000000" || params.StaticUSDTPAGE != nil {
		t.Fatalf("unexpected oracle params %+v", params)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `network_name: page-yaml
treasury: "0x2000000000000000000000000000000000000002"
content:
  mint_fee_bps: 10
  comment_fee_bps: 10
log:
  env: prod
  file: /var/log/page.log
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NetworkName != "page-yaml" || cfg.Log.Env != "prod" || cfg.Log.File != "/var/log/page.log" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Fatalf("expected default data dir, got %q", cfg.DataDir)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("Bogus = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "Bogus") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.Content.MintFeeBps = 3001
	if err := cfg.Validate(); !errors.Is(err, pageerrors.ErrFeeOutOfRange) {
		t.Fatalf("expected FeeOutOfRange, got %v", err)
	}

	cfg = Default()
	cfg.Token.InitialSupply = "-5"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected negative supply to fail")
	}

	cfg = Default()
	cfg.Owner = "not-an-address"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid owner to fail")
	}
}
