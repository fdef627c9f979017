// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/glasspane/glasspane/lib/clock"
	"github.com/glasspane/glasspane/pane"
	"github.com/glasspane/glasspane/protocol"
)

// DefaultCallTimeout bounds a single call when the configuration does
// not say otherwise. How long an unmatched response may linger is a
// deployment choice, so it is a knob rather than a constant baked
// into the transport.
const DefaultCallTimeout = 60 * time.Second

// Config configures a Client.
type Config struct {
	// Conn is the established byte stream to the daemon. Required.
	Conn io.ReadWriteCloser

	// Logger receives drop-and-log events. nil means slog.Default().
	Logger *slog.Logger

	// Clock drives call timeouts. nil means the real clock.
	Clock clock.Clock

	// CallTimeout bounds each call. Zero means DefaultCallTimeout.
	CallTimeout time.Duration
}

type callResult struct {
	msg protocol.Message
	err error
}

// Client multiplexes calls and push subscriptions over one
// connection.
type Client struct {
	conn        io.ReadWriteCloser
	logger      *slog.Logger
	clock       clock.Clock
	callTimeout time.Duration

	// writeMu serializes whole frames onto the connection.
	writeMu sync.Mutex

	mu       sync.Mutex
	serial   uint64
	pending  map[uint64]chan callResult
	handlers map[pane.PaneID]func(protocol.Message)
	closed   bool
	cause    error

	done chan struct{}
}

// New starts a Client over an established connection. The reader
// goroutine runs until the connection fails or Close is called.
func New(cfg Config) (*Client, error) {
	if cfg.Conn == nil {
		return nil, errors.New("session: Config.Conn is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	c := &Client{
		conn:        cfg.Conn,
		logger:      logger,
		clock:       clk,
		callTimeout: timeout,
		pending:     make(map[uint64]chan callResult),
		handlers:    make(map[pane.PaneID]func(protocol.Message)),
		done:        make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close tears down the connection. Every pending call fails with
// ErrTransportClosed.
func (c *Client) Close() error {
	c.fail(ErrTransportClosed)
	return nil
}

// Done is closed when the connection is no longer usable.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns why the connection failed, or nil while it is healthy.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cause
}

// Attach registers handler for pushes addressed to id. The handler is
// invoked from the reader goroutine, so pushes for one pane arrive in
// order and never interleave; it must not block.
func (c *Client) Attach(id pane.PaneID, handler func(protocol.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[id] = handler
}

// Detach drops the push handler for id. Later pushes for the pane are
// dropped and logged.
func (c *Client) Detach(id pane.PaneID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, id)
}

// Call sends req and waits for its correlated response. An
// ErrorResponse comes back as *RemoteError. Abandoning the call (ctx
// or timeout) does not retract the request; the eventual response is
// dropped on arrival.
func (c *Client) Call(ctx context.Context, req protocol.Message) (protocol.Message, error) {
	ch := make(chan callResult, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrTransportClosed
	}
	c.serial++
	serial := c.serial
	c.pending[serial] = ch
	c.mu.Unlock()

	if err := c.send(serial, req); err != nil {
		c.forget(serial)
		return nil, err
	}

	timer := c.clock.After(c.callTimeout)
	select {
	case res := <-ch:
		return res.msg, res.err
	case <-ctx.Done():
		c.forget(serial)
		return nil, ctx.Err()
	case <-timer:
		c.forget(serial)
		return nil, fmt.Errorf("%w after %s", ErrCallTimeout, c.callTimeout)
	}
}

func (c *Client) send(serial uint64, msg protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := protocol.WritePdu(c.conn, serial, msg); err != nil {
		c.fail(fmt.Errorf("session: send: %w", err))
		return ErrTransportClosed
	}
	return nil
}

func (c *Client) forget(serial uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, serial)
}

func (c *Client) readLoop() {
	r := bufio.NewReader(c.conn)
	for {
		pdu, err := protocol.ReadPdu(r)
		if err != nil {
			if err == io.EOF {
				err = ErrTransportClosed
			}
			c.fail(err)
			return
		}
		c.dispatch(pdu)
	}
}

func (c *Client) dispatch(pdu protocol.Pdu) {
	if inv, ok := pdu.Message.(*protocol.Invalid); ok {
		c.logger.Debug("dropping frame with unknown ident",
			"ident", uint64(inv.RawIdent), "serial", pdu.Serial)
		return
	}

	if pdu.Serial == 0 {
		c.dispatchPush(pdu.Message)
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[pdu.Serial]
	delete(c.pending, pdu.Serial)
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("dropping response for unknown serial",
			"serial", pdu.Serial, "ident", uint64(pdu.Message.Ident()))
		return
	}

	res := callResult{msg: pdu.Message}
	if er, ok := pdu.Message.(*protocol.ErrorResponse); ok {
		res = callResult{err: &RemoteError{Reason: er.Reason}}
	}
	ch <- res
}

func (c *Client) dispatchPush(msg protocol.Message) {
	scoped, ok := msg.(protocol.PaneScoped)
	if !ok {
		c.logger.Debug("dropping push with no pane address",
			"ident", uint64(msg.Ident()))
		return
	}
	c.mu.Lock()
	handler := c.handlers[scoped.Pane()]
	c.mu.Unlock()
	if handler == nil {
		c.logger.Debug("dropping push for detached pane",
			"pane", uint64(scoped.Pane()), "ident", uint64(msg.Ident()))
		return
	}
	handler(msg)
}

// fail is idempotent; the first cause wins.
func (c *Client) fail(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cause = cause
	pending := c.pending
	c.pending = make(map[uint64]chan callResult)
	c.mu.Unlock()

	c.conn.Close()
	for _, ch := range pending {
		ch <- callResult{err: ErrTransportClosed}
	}
	close(c.done)
}
