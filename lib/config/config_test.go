// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glasspane.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CallTimeout.Std() != 60*time.Second {
		t.Errorf("expected call_timeout=60s, got %v", cfg.CallTimeout.Std())
	}
	if cfg.PrefetchRate != 10 {
		t.Errorf("expected prefetch_rate=10, got %v", cfg.PrefetchRate)
	}
	if cfg.CacheLines != 1000 {
		t.Errorf("expected cache_lines=1000, got %d", cfg.CacheLines)
	}
	if cfg.PollInterval.Std() != 20*time.Millisecond {
		t.Errorf("expected poll_interval=20ms, got %v", cfg.PollInterval.Std())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, strings.TrimSpace(`
socket_path: /run/glasspane/daemon.sock
call_timeout: 5s
prefetch_rate: 2.5
local_echo_threshold: 250ms
poll_interval: 50ms
cache_lines: 200
tls:
  address: daemon.example.com:4733
  server_name: daemon.example.com
`))
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SocketPath != "/run/glasspane/daemon.sock" {
		t.Errorf("socket_path = %q", cfg.SocketPath)
	}
	if cfg.CallTimeout.Std() != 5*time.Second {
		t.Errorf("call_timeout = %v", cfg.CallTimeout.Std())
	}
	if cfg.LocalEchoThreshold.Std() != 250*time.Millisecond {
		t.Errorf("local_echo_threshold = %v", cfg.LocalEchoThreshold.Std())
	}
	if cfg.PrefetchRate != 2.5 || cfg.CacheLines != 200 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.TLS.Address != "daemon.example.com:4733" {
		t.Errorf("tls address = %q", cfg.TLS.Address)
	}
	// Untouched keys keep their defaults.
	if cfg.DiscoveryMaxAge.Std() != 5*time.Minute {
		t.Errorf("discovery_max_age = %v", cfg.DiscoveryMaxAge.Std())
	}
}

func TestInvalidDuration(t *testing.T) {
	path := writeConfig(t, "call_timeout: not-a-duration\n")
	if _, err := Load(path); err == nil {
		t.Fatal("invalid duration accepted")
	}
}

func TestNegativeRateRejected(t *testing.T) {
	path := writeConfig(t, "prefetch_rate: -1\n")
	if _, err := Load(path); err == nil {
		t.Fatal("negative prefetch_rate accepted")
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing config file accepted")
	}
}

func TestProxyCommandList(t *testing.T) {
	path := writeConfig(t, "proxy_command: [ssh, host, glasspane-daemon, --proxy]\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.ProxyCommand) != 4 || cfg.ProxyCommand[0] != "ssh" {
		t.Errorf("proxy_command = %v", cfg.ProxyCommand)
	}
}
