package hsms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolimst/lib-secs2-hsms-go/pkg/secs2"
)

func TestCallbackRegistry_RegisterLookupUnregister(t *testing.T) {
	r := NewCallbackRegistry()
	assert.False(t, r.Contains(1, 1))

	called := false
	r.Register(1, 1, func(ctx context.Context, msg *Message) (*Message, error) {
		called = true
		return nil, nil
	})
	assert.True(t, r.Contains(1, 1))

	h, ok := r.Lookup(1, 1)
	require.True(t, ok)
	_, _ = h(context.Background(), &Message{})
	assert.True(t, called)

	r.Unregister(1, 1)
	assert.False(t, r.Contains(1, 1))
}

func TestDispatcher_NextSystemWrapsFromMaxToZero(t *testing.T) {
	d := NewDispatcher(func(*Message) error { return nil }, nil)
	d.counter = 1<<32 - 1
	assert.Equal(t, uint32(0), d.NextSystem())
	assert.Equal(t, uint32(1), d.NextSystem())
}

func TestDispatcher_SendAndWaitFulfilledByReply(t *testing.T) {
	var sent *Message
	var mu sync.Mutex
	d := NewDispatcher(func(m *Message) error {
		mu.Lock()
		sent = m
		mu.Unlock()
		return nil
	}, nil)

	go func() {
		for {
			mu.Lock()
			m := sent
			mu.Unlock()
			if m != nil {
				reply := NewDataMessage(m.Header.SessionID, m.Header.Stream, m.Header.Function+1, false, m.Header.System, nil)
				d.Dispatch(context.Background(), reply)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	reply, err := d.SendAndWait(context.Background(), 1, 1, 1, secs2.NewU1(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(2), reply.Header.Function)
}

func TestDispatcher_SendAndWaitTimesOut(t *testing.T) {
	d := NewDispatcher(func(*Message) error { return nil }, nil)
	_, err := d.SendAndWait(context.Background(), 1, 1, 1, secs2.NewU1(), 20*time.Millisecond)
	require.Error(t, err)
	assert.IsType(t, &ErrTimeout{}, err)
}

func TestDispatcher_SendAndWaitReturnsSendFailed(t *testing.T) {
	boom := assert.AnError
	d := NewDispatcher(func(*Message) error { return boom }, nil)
	_, err := d.SendAndWait(context.Background(), 1, 1, 1, secs2.NewU1(), time.Second)
	require.Error(t, err)
	assert.IsType(t, &ErrSendFailed{}, err)
}

func TestDispatcher_DispatchInvokesRegisteredHandler(t *testing.T) {
	var got *Message
	var sentReply *Message
	d := NewDispatcher(func(m *Message) error {
		sentReply = m
		return nil
	}, nil)
	d.Registry().Register(1, 1, func(ctx context.Context, msg *Message) (*Message, error) {
		got = msg
		reply := NewDataMessage(msg.Header.SessionID, 1, 2, false, 0, nil)
		return reply, nil
	})

	req := NewDataMessage(1, 1, 1, true, 55, nil)
	d.Dispatch(context.Background(), req)

	require.NotNil(t, got)
	require.NotNil(t, sentReply)
	assert.Equal(t, uint32(55), sentReply.Header.System)
	assert.Equal(t, byte(2), sentReply.Header.Function)
}

func TestDispatcher_DispatchRepliesUnknownFunction(t *testing.T) {
	var sentReply *Message
	d := NewDispatcher(func(m *Message) error {
		sentReply = m
		return nil
	}, nil)

	req := NewDataMessage(1, 9, 99, true, 1, nil)
	d.Dispatch(context.Background(), req)

	require.NotNil(t, sentReply)
	assert.Equal(t, byte(9), sentReply.Header.Stream)
	assert.Equal(t, byte(5), sentReply.Header.Function)
}

func TestDispatcher_DispatchRepliesAbortOnHandlerError(t *testing.T) {
	var sentReply *Message
	d := NewDispatcher(func(m *Message) error {
		sentReply = m
		return nil
	}, nil)
	d.Registry().Register(1, 1, func(ctx context.Context, msg *Message) (*Message, error) {
		panic("boom")
	})

	req := NewDataMessage(1, 1, 1, true, 1, nil)
	d.Dispatch(context.Background(), req)

	require.NotNil(t, sentReply)
	assert.Equal(t, byte(0), sentReply.Header.Function)
}
