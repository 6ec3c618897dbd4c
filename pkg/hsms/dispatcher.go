package hsms

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-collections/collections/set"
	"github.com/sirupsen/logrus"
	"github.com/wolimst/lib-secs2-hsms-go/pkg/secs2"
)

// HandlerFunc services an inbound data message for a registered
// (stream, function). A non-nil returned Message is sent as the reply;
// its Header.System and Header.SessionID are filled in by the
// dispatcher and need not be set by the handler.
type HandlerFunc func(ctx context.Context, msg *Message) (*Message, error)

func sfKey(stream, function byte) string { return fmt.Sprintf("s%df%d", stream, function) }

// CallbackRegistry maps (stream, function) pairs to handlers. Contains
// uses a parallel set for cheap membership queries independent of
// holding the handler map's lock longer than necessary.
type CallbackRegistry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	keys     *set.Set
}

// NewCallbackRegistry creates an empty registry.
func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{handlers: make(map[string]HandlerFunc), keys: set.New()}
}

// Register binds h to (stream, function), replacing any prior handler.
func (r *CallbackRegistry) Register(stream, function byte, h HandlerFunc) {
	key := sfKey(stream, function)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key] = h
	r.keys.Insert(key)
}

// Unregister removes the handler for (stream, function), if any.
func (r *CallbackRegistry) Unregister(stream, function byte) {
	key := sfKey(stream, function)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, key)
	r.keys.Remove(key)
}

// Contains reports whether a handler is registered for (stream, function).
func (r *CallbackRegistry) Contains(stream, function byte) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keys.Has(sfKey(stream, function))
}

// Lookup returns the handler bound to (stream, function), if any.
func (r *CallbackRegistry) Lookup(stream, function byte) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[sfKey(stream, function)]
	return h, ok
}

// pendingResult is delivered to a waiter blocked on a correlated reply.
type pendingResult struct {
	msg *Message
	err error
}

// PendingTable correlates outbound W-bit messages and control requests
// with their eventual replies by system id.
type PendingTable struct {
	mu      sync.Mutex
	entries map[uint32]chan pendingResult
}

// NewPendingTable creates an empty table.
func NewPendingTable() *PendingTable {
	return &PendingTable{entries: make(map[uint32]chan pendingResult)}
}

// Insert registers system as awaiting a reply and returns the channel
// that will receive it.
func (t *PendingTable) Insert(system uint32) chan pendingResult {
	ch := make(chan pendingResult, 1)
	t.mu.Lock()
	t.entries[system] = ch
	t.mu.Unlock()
	return ch
}

// Fulfill delivers msg to the waiter for system, if one is registered.
func (t *PendingTable) Fulfill(system uint32, msg *Message) bool {
	t.mu.Lock()
	ch, ok := t.entries[system]
	if ok {
		delete(t.entries, system)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	ch <- pendingResult{msg: msg}
	return true
}

// FulfillError delivers err to the waiter for system, if one is registered.
func (t *PendingTable) FulfillError(system uint32, err error) bool {
	t.mu.Lock()
	ch, ok := t.entries[system]
	if ok {
		delete(t.entries, system)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	ch <- pendingResult{err: err}
	return true
}

// Remove drops system without delivering anything, e.g. after a timeout.
func (t *PendingTable) Remove(system uint32) {
	t.mu.Lock()
	delete(t.entries, system)
	t.mu.Unlock()
}

// FailAll delivers err to every outstanding waiter, e.g. on disconnect.
func (t *PendingTable) FailAll(err error) {
	t.mu.Lock()
	entries := t.entries
	t.entries = make(map[uint32]chan pendingResult)
	t.mu.Unlock()
	for _, ch := range entries {
		ch <- pendingResult{err: err}
	}
}

// Dispatcher owns the system counter, the pending-reply table, and the
// stream/function callback registry for a single session. It does not
// own the connection: Send is supplied by the Session so the dispatcher
// can be tested without a real socket.
type Dispatcher struct {
	counter  uint32
	pending  *PendingTable
	registry *CallbackRegistry
	send     func(*Message) error
	logger   *logrus.Logger
}

// NewDispatcher creates a Dispatcher that writes outbound messages with send.
func NewDispatcher(send func(*Message) error, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Dispatcher{
		pending:  NewPendingTable(),
		registry: NewCallbackRegistry(),
		send:     send,
		logger:   logger,
	}
}

// Registry exposes the callback registry for Register/Unregister calls.
func (d *Dispatcher) Registry() *CallbackRegistry { return d.registry }

// NextSystem returns the next system id, wrapping from 2^32-1 to 0.
func (d *Dispatcher) NextSystem() uint32 {
	return atomic.AddUint32(&d.counter, 1)
}

// SendAndWait sends a W-bit data message and blocks for its correlated
// reply, a T3 timeout, disconnect, or ctx cancellation, whichever first.
func (d *Dispatcher) SendAndWait(ctx context.Context, sessionID uint16, stream, function byte, item secs2.Item, t3 time.Duration) (*Message, error) {
	system := d.NextSystem()
	msg := NewDataMessage(sessionID, stream, function, true, system, item)
	ch := d.pending.Insert(system)

	if err := d.send(msg); err != nil {
		d.pending.Remove(system)
		return nil, &ErrSendFailed{Cause: err}
	}

	timer := time.NewTimer(t3)
	defer timer.Stop()
	select {
	case result := <-ch:
		if result.err != nil {
			return nil, result.err
		}
		return result.msg, nil
	case <-timer.C:
		d.pending.Remove(system)
		return nil, &ErrTimeout{System: system, Timer: "T3"}
	case <-ctx.Done():
		d.pending.Remove(system)
		return nil, ctx.Err()
	}
}

// Dispatch routes one inbound data message: correlating it with a
// pending reply, invoking a registered handler, or replying S9F5/SxF0
// per spec §4.5.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *Message) {
	h := msg.Header

	if h.Function == 0 {
		d.pending.FulfillError(h.System, &ErrAborted{Stream: h.Stream, System: h.System})
		return
	}
	if h.Function%2 == 0 {
		if d.pending.Fulfill(h.System, msg) {
			return
		}
	}

	handler, ok := d.registry.Lookup(h.Stream, h.Function)
	if !ok {
		if h.WBit {
			d.replyUnknown(msg)
		}
		d.logger.WithFields(logrus.Fields{"stream": h.Stream, "function": h.Function}).Warn("hsms: no handler registered")
		return
	}

	reply, err := d.safeInvoke(ctx, handler, msg)
	if err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{"stream": h.Stream, "function": h.Function}).Error("hsms: handler failed")
		d.replyAbort(msg)
		return
	}
	if reply != nil {
		reply.Header.System = h.System
		reply.Header.SessionID = h.SessionID
		if err := d.send(reply); err != nil {
			d.logger.WithError(err).Error("hsms: failed to send reply")
		}
	}
}

func (d *Dispatcher) safeInvoke(ctx context.Context, h HandlerFunc, msg *Message) (reply *Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hsms: handler panic: %v", r)
		}
	}()
	return h(ctx, msg)
}

func (d *Dispatcher) replyUnknown(msg *Message) {
	header := msg.Header.Encode()
	payload := secs2.NewBinary()
	if err := payload.Set(header); err != nil {
		return
	}
	reply := NewDataMessage(msg.Header.SessionID, 9, 5, false, msg.Header.System, payload)
	_ = d.send(reply)
}

func (d *Dispatcher) replyAbort(msg *Message) {
	reply := NewDataMessage(msg.Header.SessionID, msg.Header.Stream, 0, false, msg.Header.System, nil)
	_ = d.send(reply)
}
