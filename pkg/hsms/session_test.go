package hsms

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolimst/lib-secs2-hsms-go/pkg/secs2"
)

func testTimeouts() Timeouts {
	return Timeouts{T3: 200 * time.Millisecond, T5: 200 * time.Millisecond, T6: 200 * time.Millisecond, T7: 300 * time.Millisecond}
}

// A PASSIVE session receiving SELECT_REQ replies SELECT_RSP and moves to
// SELECTED.
func TestSession_PassiveAcceptsSelectReq(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	cfg := NewConfig("", 0, WithConnectMode(ConnectModePassive), WithTimeouts(testTimeouts()))
	session := NewPassiveSession(serverConn, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- session.Enable(ctx) }()

	clientFramer := NewFramer(clientConn, 0)
	defer clientFramer.Close()

	req := NewSelectReq(ControlSessionID, 1)
	require.NoError(t, clientFramer.WriteMessage(req))

	header, _, err := clientFramer.ReadBlock()
	require.NoError(t, err)
	assert.Equal(t, STypeSelectRsp, header.SType)
	assert.Equal(t, SelectStatusOK, header.Function)

	require.NoError(t, <-errCh)
	assert.Equal(t, StateSelected, session.State())
}

// An ACTIVE session dials out, sends SELECT_REQ, and reaches SELECTED
// once the peer replies SELECT_RSP with status OK.
func TestSession_ActiveNegotiatesSelect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		framer := NewFramer(conn, 0)
		defer framer.Close()

		_, _, err = framer.ReadBlock() // SELECT_REQ
		if err != nil {
			return
		}
		_ = framer.WriteMessage(&Message{Header: Header{SessionID: ControlSessionID, Function: SelectStatusOK, SType: STypeSelectRsp, System: 1}})
	}()

	addr := ln.Addr().(*net.TCPAddr)
	cfg := NewConfig("127.0.0.1", addr.Port, WithConnectMode(ConnectModeActive), WithTimeouts(testTimeouts()))
	session := NewActiveSession(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = session.Enable(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateSelected, session.State())

	<-serverDone
}

// An ACTIVE session whose peer never replies to SELECT_REQ times out on
// T6 and falls back to NOT_CONNECTED with the socket closed.
func TestSession_ActiveSelectTimeoutDisablesSession(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	cfg := NewConfig("127.0.0.1", addr.Port, WithConnectMode(ConnectModeActive), WithTimeouts(testTimeouts()))
	session := NewActiveSession(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = session.Enable(ctx)
	require.Error(t, err)
	assert.IsType(t, &ErrTimeout{}, err)
	assert.Equal(t, StateNotConnected, session.State())

	conn := <-accepted
	conn.Close()
}

// A PASSIVE session whose peer never sends SELECT_REQ times out on T7
// and falls back to NOT_CONNECTED with the socket closed.
func TestSession_PassiveSelectTimeoutDisablesSession(t *testing.T) {
	_, serverConn := net.Pipe()
	cfg := NewConfig("", 0, WithConnectMode(ConnectModePassive), WithTimeouts(testTimeouts()))
	session := NewPassiveSession(serverConn, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- session.Enable(ctx) }()

	err := <-errCh
	require.Error(t, err)
	assert.IsType(t, &ErrTimeout{}, err)
	assert.Equal(t, StateNotConnected, session.State())
}

func TestSession_SendBeforeSelectedFails(t *testing.T) {
	_, serverConn := net.Pipe()
	defer serverConn.Close()
	cfg := NewConfig("", 0, WithTimeouts(testTimeouts()))
	session := NewPassiveSession(serverConn, cfg, nil)

	err := session.SendStreamFunction(1, 1, false, secs2.NewU1())
	require.Error(t, err)
	assert.IsType(t, &ErrNotSelected{}, err)
}
