// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os/exec"
	"time"
)

// DialUnix connects to the daemon's unix socket. It retries with
// backoff until ctx expires, since the daemon may still be coming up
// when the client launches it.
func DialUnix(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	backoff := 10 * time.Millisecond
	for {
		conn, err := d.DialContext(ctx, "unix", path)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("session: dial %s: %w (last error: %v)", path, ctx.Err(), err)
		case <-time.After(backoff):
		}
		if backoff < time.Second {
			backoff *= 2
		}
	}
}

// DialTLS connects to a daemon listening behind TLS.
func DialTLS(ctx context.Context, addr string, cfg *tls.Config) (net.Conn, error) {
	d := &tls.Dialer{Config: cfg}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("session: dial tls %s: %w", addr, err)
	}
	return conn, nil
}

// DialProxyCommand starts argv (typically an ssh invocation that
// execs the daemon's proxy mode on the remote host) and returns its
// stdio as the byte stream. Closing the stream terminates the
// subprocess.
func DialProxyCommand(ctx context.Context, argv []string) (io.ReadWriteCloser, error) {
	if len(argv) == 0 {
		return nil, errors.New("session: proxy command is empty")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("session: proxy command stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("session: proxy command stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("session: start proxy command %q: %w", argv[0], err)
	}
	return &proxyConn{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}

type proxyConn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (p *proxyConn) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *proxyConn) Write(b []byte) (int, error) { return p.stdin.Write(b) }

func (p *proxyConn) Close() error {
	p.stdin.Close()
	p.stdout.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	// Reap; the error is uninteresting after a deliberate kill.
	p.cmd.Wait()
	return nil
}
