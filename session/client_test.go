// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/glasspane/glasspane/lib/clock"
	"github.com/glasspane/glasspane/lib/testutil"
	"github.com/glasspane/glasspane/protocol"
)

// fakeDaemon reads frames off the server half of a pipe and hands
// them to the test's handler, which replies through reply or push.
type fakeDaemon struct {
	t    *testing.T
	conn net.Conn
}

func startClient(t *testing.T, clk clock.Clock, timeout time.Duration, handle func(d *fakeDaemon, pdu protocol.Pdu)) (*Client, *fakeDaemon) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	d := &fakeDaemon{t: t, conn: serverConn}
	go func() {
		for {
			pdu, err := protocol.ReadPdu(serverConn)
			if err != nil {
				return
			}
			handle(d, pdu)
		}
	}()
	c, err := New(Config{
		Conn:        clientConn,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:       clk,
		CallTimeout: timeout,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		c.Close()
		serverConn.Close()
	})
	return c, d
}

func (d *fakeDaemon) reply(serial uint64, msg protocol.Message) {
	if err := protocol.WritePdu(d.conn, serial, msg); err != nil {
		d.t.Errorf("daemon write: %v", err)
	}
}

func (d *fakeDaemon) push(msg protocol.Message) { d.reply(0, msg) }

func echoDaemon(d *fakeDaemon, pdu protocol.Pdu) {
	switch pdu.Message.(type) {
	case *protocol.Ping:
		d.reply(pdu.Serial, &protocol.Pong{})
	case *protocol.GetCodecVersion:
		d.reply(pdu.Serial, &protocol.GetCodecVersionResponse{
			CodecVersion:  protocol.Version,
			VersionString: "fake daemon",
		})
	default:
		d.reply(pdu.Serial, &protocol.UnitResponse{})
	}
}

func TestCallResponse(t *testing.T) {
	c, _ := startClient(t, nil, 0, echoDaemon)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := c.WriteToPane(context.Background(), 1, []byte("ls\r")); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestHandshake(t *testing.T) {
	c, _ := startClient(t, nil, 0, echoDaemon)
	if err := c.Handshake(context.Background()); err != nil {
		t.Fatalf("handshake: %v", err)
	}
}

func TestHandshakeVersionMismatch(t *testing.T) {
	c, _ := startClient(t, nil, 0, func(d *fakeDaemon, pdu protocol.Pdu) {
		d.reply(pdu.Serial, &protocol.GetCodecVersionResponse{
			CodecVersion:  protocol.Version + 5,
			VersionString: "future daemon",
		})
	})
	err := c.Handshake(context.Background())
	var mismatch *VersionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want VersionMismatchError", err)
	}
	if mismatch.Daemon != protocol.Version+5 {
		t.Fatalf("daemon version = %d", mismatch.Daemon)
	}
}

func TestRemoteError(t *testing.T) {
	c, _ := startClient(t, nil, 0, func(d *fakeDaemon, pdu protocol.Pdu) {
		d.reply(pdu.Serial, &protocol.ErrorResponse{Reason: "no such pane"})
	})
	err := c.KillPane(context.Background(), 42)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("got %v, want RemoteError", err)
	}
	if remote.Reason != "no such pane" {
		t.Fatalf("reason = %q", remote.Reason)
	}
}

func TestPushRouting(t *testing.T) {
	c, d := startClient(t, nil, 0, echoDaemon)

	got := make(chan protocol.Message, 1)
	c.Attach(7, func(msg protocol.Message) { got <- msg })

	d.push(&protocol.GetPaneRenderChangesResponse{PaneID: 7, Title: "bash"})
	msg := testutil.RequireReceive(t, got, 5*time.Second, "waiting for pushed message")
	delta, ok := msg.(*protocol.GetPaneRenderChangesResponse)
	if !ok || delta.Title != "bash" {
		t.Fatalf("got %+v", msg)
	}

	// After Detach the push is dropped; the connection stays usable.
	c.Detach(7)
	d.push(&protocol.PaneFocused{PaneID: 7})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping after dropped push: %v", err)
	}
	select {
	case msg := <-got:
		t.Fatalf("handler invoked after detach: %+v", msg)
	default:
	}
}

func TestUnknownSerialDropped(t *testing.T) {
	c, _ := startClient(t, nil, 0, func(d *fakeDaemon, pdu protocol.Pdu) {
		if _, ok := pdu.Message.(*protocol.Ping); ok {
			// A response the client never asked for, then the real one.
			d.reply(pdu.Serial+1000, &protocol.Pong{})
			d.reply(pdu.Serial, &protocol.Pong{})
		}
	})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestUnknownIdentDropped(t *testing.T) {
	c, _ := startClient(t, nil, 0, func(d *fakeDaemon, pdu protocol.Pdu) {
		// A frame from a newer daemon, then the real answer.
		d.conn.Write([]byte("\x08\x00\xad\x02hello"))
		echoDaemon(d, pdu)
	})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestCancelledCallResponseDropped(t *testing.T) {
	release := make(chan struct{})
	c, _ := startClient(t, nil, 0, func(d *fakeDaemon, pdu protocol.Pdu) {
		switch pdu.Message.(type) {
		case *protocol.ListPanes:
			go func() {
				<-release
				d.reply(pdu.Serial, &protocol.ListPanesResponse{})
			}()
		default:
			echoDaemon(d, pdu)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.ListPanes(ctx)
		errCh <- err
	}()
	cancel()
	if err := testutil.RequireReceive(t, errCh, 5*time.Second, "waiting for call error"); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}

	// The late response must be dropped without disturbing later calls.
	close(release)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping after abandoned call: %v", err)
	}
}

func TestTransportClosedFailsPending(t *testing.T) {
	c, d := startClient(t, nil, 0, func(d *fakeDaemon, pdu protocol.Pdu) {
		// Never reply.
	})

	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errCh <- c.Ping(context.Background())
		}()
	}
	// Let both requests reach the daemon before cutting the link.
	time.Sleep(10 * time.Millisecond)
	d.conn.Close()

	for i := 0; i < 2; i++ {
		if err := testutil.RequireReceive(t, errCh, 5*time.Second, "waiting for call error"); !errors.Is(err, ErrTransportClosed) {
			t.Fatalf("got %v, want ErrTransportClosed", err)
		}
	}
	testutil.RequireClosed(t, c.Done(), 5*time.Second, "waiting for client done")

	if _, err := c.ListPanes(context.Background()); !errors.Is(err, ErrTransportClosed) {
		t.Fatalf("call after close: got %v, want ErrTransportClosed", err)
	}
}

func TestCallTimeout(t *testing.T) {
	fc := clock.Fake(time.Unix(1000, 0))
	c, _ := startClient(t, fc, 5*time.Second, func(d *fakeDaemon, pdu protocol.Pdu) {
		// Never reply.
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Ping(context.Background())
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		fc.Advance(6 * time.Second)
		select {
		case err := <-errCh:
			if !errors.Is(err, ErrCallTimeout) {
				t.Fatalf("got %v, want ErrCallTimeout", err)
			}
			// Timeout of one call must not kill the connection.
			select {
			case <-c.Done():
				t.Fatal("connection closed by call timeout")
			default:
			}
			return
		default:
			time.Sleep(time.Millisecond)
		}
	}
	t.Fatal("call never timed out")
}

func TestProxyConnInterface(t *testing.T) {
	// The proxy dialer's stream must satisfy the session's needs.
	var _ io.ReadWriteCloser = (*proxyConn)(nil)
}

func TestDialUnixContextExpiry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := DialUnix(ctx, "/nonexistent/glasspane.sock"); err == nil {
		t.Fatal("dial to nonexistent socket succeeded")
	}
}
