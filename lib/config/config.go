// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for glasspane
// clients.
//
// Configuration is loaded from a single file specified by:
//   - GLASSPANE_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery of config files. This
// keeps configuration deterministic and auditable with no hidden
// overrides.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "250ms" or "1m30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// TLS configures the TLS transport to a daemon listening on a TCP
// address.
type TLS struct {
	// Address is the daemon's host:port.
	Address string `yaml:"address"`

	// CAFile is a PEM bundle trusted to sign the daemon's
	// certificate. Empty means the system roots.
	CAFile string `yaml:"ca_file"`

	// CertFile and KeyFile are the client's keypair for mutual TLS.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// ServerName overrides the name verified against the daemon's
	// certificate. Empty means the host from Address.
	ServerName string `yaml:"server_name"`
}

// ClientConfig builds the tls.Config for dialing.
func (t TLS) ClientConfig() (*tls.Config, error) {
	cfg := &tls.Config{ServerName: t.ServerName, MinVersion: tls.VersionTLS12}
	if t.CAFile != "" {
		pem, err := os.ReadFile(t.CAFile)
		if err != nil {
			return nil, fmt.Errorf("config: read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("config: no certificates in %s", t.CAFile)
		}
		cfg.RootCAs = pool
	}
	if t.CertFile != "" || t.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("config: load client keypair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// Config is the client configuration. Exactly one of SocketPath,
// DiscoveryPath, ProxyCommand, or TLS.Address selects the transport;
// when several are set the most direct one wins in that order.
type Config struct {
	// SocketPath is the daemon's unix socket.
	SocketPath string `yaml:"socket_path"`

	// DiscoveryPath is a daemon advertisement record to resolve the
	// socket from.
	DiscoveryPath string `yaml:"discovery_path"`

	// DiscoveryMaxAge bounds how stale an advertisement may be.
	// Default: 5m
	DiscoveryMaxAge Duration `yaml:"discovery_max_age"`

	// ProxyCommand runs a subprocess (typically ssh) whose stdio is
	// the byte stream to a remote daemon.
	ProxyCommand []string `yaml:"proxy_command"`

	// TLS configures the TCP+TLS transport.
	TLS TLS `yaml:"tls"`

	// CallTimeout bounds each request/response call. How long an
	// unanswered call may wait is a deployment choice, so it is a
	// knob here rather than a constant in code.
	// Default: 60s
	CallTimeout Duration `yaml:"call_timeout"`

	// PrefetchRate is the stale-row refetch budget in requests per
	// second. Default: 10
	PrefetchRate float64 `yaml:"prefetch_rate"`

	// LocalEchoThreshold gates predictive echo: predictions engage
	// once the measured round trip reaches it. Zero predicts
	// always. Default: 10ms
	LocalEchoThreshold Duration `yaml:"local_echo_threshold"`

	// PollInterval is the base render poll period. Default: 20ms
	PollInterval Duration `yaml:"poll_interval"`

	// CacheLines bounds the per-pane row cache. Default: 1000
	CacheLines int `yaml:"cache_lines"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DiscoveryMaxAge:    Duration(5 * time.Minute),
		CallTimeout:        Duration(60 * time.Second),
		PrefetchRate:       10,
		LocalEchoThreshold: Duration(10 * time.Millisecond),
		PollInterval:       Duration(20 * time.Millisecond),
		CacheLines:         1000,
	}
}

// Load reads path over the defaults. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PrefetchRate < 0 {
		return errors.New("config: prefetch_rate must not be negative")
	}
	if c.CacheLines < 0 {
		return errors.New("config: cache_lines must not be negative")
	}
	if c.CallTimeout < 0 {
		return errors.New("config: call_timeout must not be negative")
	}
	return nil
}
