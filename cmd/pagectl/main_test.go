package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfig = `DataDir = "%s"
Owner = "0x1000000000000000000000000000000000000001"

[token]
InitialSupply = "1000000000000000000000"

[content]
BaseURI = "ipfs://"
MintFeeBps = 1000
CommentFeeBps = 1000

[log]
Env = "test"
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := strings.Replace(testConfig, "%s", filepath.Join(dir, "data"), 1)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunLifecycle(t *testing.T) {
	path := writeConfig(t)

	var out bytes.Buffer
	if err := run([]string{"-config", path, "status"}, &out); err == nil {
		t.Fatalf("expected status before init to fail")
	}
	if err := run([]string{"-config", path, "init"}, &out); err != nil {
		t.Fatalf("init: %v", err)
	}
	out.Reset()
	if err := run([]string{"-config", path, "mint", "-collection", "art", "0x3000000000000000000000000000000000000003", "ipfs://x"}, &out); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if !strings.Contains(out.String(), "minted item 0") {
		t.Fatalf("unexpected mint output %q", out.String())
	}
	out.Reset()
	if err := run([]string{"-config", path, "-from", "0x4000000000000000000000000000000000000004", "comment", "0", "nice"}, &out); err != nil {
		t.Fatalf("comment: %v", err)
	}
	out.Reset()
	if err := run([]string{"-config", path, "status"}, &out); err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"items:     1", "comments:  1 (1 likes, 0 dislikes)", "version:   3"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("status output %q missing %q", out.String(), want)
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	path := writeConfig(t)
	var out bytes.Buffer
	if err := run([]string{"-config", path}, &out); err != errUsage {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run([]string{"-config", path, "init"}, &out); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := run([]string{"-config", path, "stake", "-1"}, &out); err == nil {
		t.Fatalf("expected negative stake to fail")
	}
	if err := run([]string{"-config", path, "-from", "nope", "status"}, &out); err == nil {
		t.Fatalf("expected bad -from to fail")
	}
}

func TestRunPriceFromConfiguredPools(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `DataDir = "` + filepath.Join(dir, "data") + `"
Owner = "0x1000000000000000000000000000000000000001"

[oracle]
WETHUSDTPool = "0x5000000000000000000000000000000000000005"
USDTPAGEPool = "0x6000000000000000000000000000000000000006"
WETHUSDTSqrtPriceX96 = "79228162514264337593543950336"
USDTPAGESqrtPriceX96 = "79228162514264337593543950336"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var out bytes.Buffer
	if err := run([]string{"-config", path, "init"}, &out); err != nil {
		t.Fatalf("init: %v", err)
	}
	out.Reset()
	if err := run([]string{"-config", path, "price"}, &out); err != nil {
		t.Fatalf("price: %v", err)
	}
	if !strings.Contains(out.String(), "PAGE/WETH: 1000000000000000000") {
		t.Fatalf("unexpected price output %q", out.String())
	}
}
