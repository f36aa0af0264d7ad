package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fnt.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8080" {
		t.Fatalf("default rpc address: %s", cfg.RPCAddress)
	}
	if cfg.NetworkName != "fnt-local" {
		t.Fatalf("default network: %s", cfg.NetworkName)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not persisted: %v", err)
	}

	// A second load round-trips the persisted file.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.RPCAddress != cfg.RPCAddress || again.DataDir != cfg.DataDir {
		t.Fatalf("round trip mismatch: %+v vs %+v", again, cfg)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fnt.toml")
	if err := os.WriteFile(path, []byte("DataDir = \"/tmp/fnt\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8080" {
		t.Fatalf("rpc default: %s", cfg.RPCAddress)
	}
	if cfg.DataDir != "/tmp/fnt" {
		t.Fatalf("explicit value lost: %s", cfg.DataDir)
	}
}

func TestExistentialDepositParsing(t *testing.T) {
	cfg := &Config{RPCAddress: ":1", DataDir: "d", ExistentialDeposit: "2500000000000000000"}
	amount, err := cfg.ExistentialDepositAmount()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want, _ := new(big.Int).SetString("2500000000000000000", 10)
	if amount.Cmp(want) != 0 {
		t.Fatalf("amount: %s", amount)
	}

	cfg.ExistentialDeposit = ""
	if amount, err := cfg.ExistentialDepositAmount(); err != nil || amount != nil {
		t.Fatalf("empty threshold: %v %v", amount, err)
	}

	cfg.ExistentialDeposit = "not-a-number"
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid threshold accepted")
	}
	cfg.ExistentialDeposit = "-5"
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative threshold accepted")
	}
}

func TestValidateRejectsEmptyAddress(t *testing.T) {
	cfg := &Config{DataDir: "d"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty rpc address accepted")
	}
}
