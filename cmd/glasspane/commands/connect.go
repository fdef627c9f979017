// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/glasspane/glasspane/discovery"
	"github.com/glasspane/glasspane/lib/config"
	"github.com/glasspane/glasspane/session"
)

// dialTimeout bounds transport establishment, not calls. DialUnix
// retries until its context expires, so without this a wrong socket
// path would spin forever.
const dialTimeout = 10 * time.Second

// clientFlags carries the flags shared by every command that talks to
// a daemon.
type clientFlags struct {
	configPath string
	socket     string
	timeout    time.Duration
	verbose    bool
}

func (f *clientFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", os.Getenv("GLASSPANE_CONFIG"),
		"path to the config file (default $GLASSPANE_CONFIG)")
	fs.StringVar(&f.socket, "socket", "",
		"daemon unix socket, overriding the config transport")
	fs.DurationVar(&f.timeout, "timeout", 0,
		"per-call timeout, overriding the config")
	fs.BoolVar(&f.verbose, "verbose", false,
		"log protocol events to stderr")
}

func (f *clientFlags) logger() *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// connect loads the config, dials the daemon, and completes the
// version handshake. The caller owns the returned client and must
// Close it.
func (f *clientFlags) connect(ctx context.Context) (*session.Client, config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	if f.socket != "" {
		cfg.SocketPath = f.socket
		cfg.DiscoveryPath = ""
		cfg.ProxyCommand = nil
		cfg.TLS = config.TLS{}
	}
	timeout := cfg.CallTimeout.Std()
	if f.timeout > 0 {
		timeout = f.timeout
	}

	conn, err := dialDaemon(ctx, cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	client, err := session.New(session.Config{
		Conn:        conn,
		Logger:      f.logger(),
		CallTimeout: timeout,
	})
	if err != nil {
		conn.Close()
		return nil, config.Config{}, err
	}
	if err := client.Handshake(ctx); err != nil {
		client.Close()
		return nil, config.Config{}, fmt.Errorf("handshake: %w", err)
	}
	return client, cfg, nil
}

// dialDaemon selects the transport: an explicit socket wins, then a
// discovery record, then a proxy command, then TLS.
func dialDaemon(ctx context.Context, cfg config.Config) (io.ReadWriteCloser, error) {
	switch {
	case cfg.SocketPath != "":
		dctx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		return session.DialUnix(dctx, cfg.SocketPath)
	case cfg.DiscoveryPath != "":
		rec, err := discovery.Resolve(cfg.DiscoveryPath, cfg.DiscoveryMaxAge.Std(), time.Now())
		if err != nil {
			return nil, err
		}
		dctx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		return session.DialUnix(dctx, rec.SocketPath)
	case len(cfg.ProxyCommand) > 0:
		return session.DialProxyCommand(ctx, cfg.ProxyCommand)
	case cfg.TLS.Address != "":
		tlsCfg, err := cfg.TLS.ClientConfig()
		if err != nil {
			return nil, err
		}
		dctx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		return session.DialTLS(dctx, cfg.TLS.Address, tlsCfg)
	default:
		return nil, errors.New("no transport configured: set --socket or a transport in the config file")
	}
}
