package hsms

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wolimst/lib-secs2-hsms-go/pkg/secs2"
)

// State is one of the HSMS connection states from spec §4.1. Go's
// implementation consolidates CONNECTED_NOT_SELECTED into NotSelected:
// a Session enters NotSelected as soon as its socket is up and stays
// there until SELECT succeeds.
type State int

const (
	StateNotConnected State = iota
	StateNotSelected
	StateSelected
)

func (s State) String() string {
	switch s {
	case StateNotConnected:
		return "NOT_CONNECTED"
	case StateNotSelected:
		return "NOT_SELECTED"
	case StateSelected:
		return "SELECTED"
	default:
		return "UNKNOWN"
	}
}

// Role is which side of the connection a Session represents.
type Role int

const (
	RoleActive Role = iota
	RolePassive
)

// Events are optional callbacks a caller can set before Enable to
// observe session lifecycle transitions and inbound traffic.
type Events struct {
	OnConnected       func()
	OnDisconnected    func(error)
	OnStateChanged    func(State)
	OnMessageReceived func(*Message)
}

// Session drives one HSMS connection through its state machine: framing,
// SELECT/DESELECT/LINKTEST control handshakes, the timers of spec §4.4,
// and dispatch of data messages to registered stream/function handlers.
type Session struct {
	cfg    *Config
	role   Role
	logger *logrus.Logger

	mu     sync.RWMutex
	state  State
	conn   net.Conn
	framer *Framer

	dispatcher *Dispatcher

	cancel  context.CancelFunc
	stopped chan struct{}

	Events Events
}

// NewActiveSession creates a Session that will dial out when Enable is called.
func NewActiveSession(cfg *Config, logger *logrus.Logger) *Session {
	return newSession(cfg, RoleActive, nil, logger)
}

// NewPassiveSession wraps an already-accepted connection as a Session
// ready for Enable. Use with a Listener (see listener.go).
func NewPassiveSession(conn net.Conn, cfg *Config, logger *logrus.Logger) *Session {
	return newSession(cfg, RolePassive, conn, logger)
}

func newSession(cfg *Config, role Role, conn net.Conn, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{
		cfg:    cfg,
		role:   role,
		conn:   conn,
		logger: logger,
		state:  StateNotConnected,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logger.WithField("state", state).Debug("hsms: state changed")
	if s.Events.OnStateChanged != nil {
		s.Events.OnStateChanged(state)
	}
}

// RegisterStreamFunction binds a handler to (stream, function) for
// inbound data messages.
func (s *Session) RegisterStreamFunction(stream, function byte, h HandlerFunc) {
	s.dispatcher.Registry().Register(stream, function, h)
}

// UnregisterStreamFunction removes a previously registered handler.
func (s *Session) UnregisterStreamFunction(stream, function byte) {
	s.dispatcher.Registry().Unregister(stream, function)
}

// Enable establishes the connection (dialing for ACTIVE, using the
// already-accepted conn for PASSIVE), negotiates SELECT, and starts the
// read loop and linktest goroutine. It returns once negotiation settles
// into SELECTED, or with an error if the socket or T6/T7 negotiation fails.
func (s *Session) Enable(ctx context.Context) error {
	if s.role == RoleActive {
		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port))
		if err != nil {
			return err
		}
		s.conn = conn
	}

	s.framer = NewFramer(s.conn, s.cfg.MaxFrame)
	s.dispatcher = NewDispatcher(s.framer.WriteMessage, s.logger)
	s.setState(StateNotSelected)
	if s.Events.OnConnected != nil {
		s.Events.OnConnected()
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopped = make(chan struct{})

	go s.readLoop(runCtx)
	if s.cfg.Timeouts.Linktest > 0 {
		go s.linktestLoop(runCtx)
	}

	if s.role == RoleActive {
		return s.negotiateSelect(runCtx)
	}

	return s.awaitSelect(runCtx)
}

func (s *Session) negotiateSelect(ctx context.Context) error {
	system := s.dispatcher.NextSystem()
	req := NewSelectReq(ControlSessionID, system)
	ch := s.dispatcher.pending.Insert(system)
	if err := s.framer.WriteMessage(req); err != nil {
		s.dispatcher.pending.Remove(system)
		return &ErrSendFailed{Cause: err}
	}

	timer := time.NewTimer(s.cfg.Timeouts.T6)
	defer timer.Stop()
	select {
	case result := <-ch:
		if result.err != nil {
			return result.err
		}
		if result.msg.Header.Function != SelectStatusOK {
			return &ErrProtocolViolation{Reason: fmt.Sprintf("select rejected, status %d", result.msg.Header.Function)}
		}
		s.setState(StateSelected)
		return nil
	case <-timer.C:
		s.dispatcher.pending.Remove(system)
		s.Disable()
		return &ErrTimeout{System: system, Timer: "T6"}
	case <-ctx.Done():
		s.dispatcher.pending.Remove(system)
		return ctx.Err()
	}
}

func (s *Session) awaitSelect(ctx context.Context) error {
	timer := time.NewTimer(s.cfg.Timeouts.T7)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			s.Disable()
			return &ErrTimeout{Timer: "T7"}
		case <-ctx.Done():
			return ctx.Err()
		default:
			if s.State() == StateSelected {
				return nil
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// SendStreamFunction sends a data message without waiting for a reply.
func (s *Session) SendStreamFunction(stream, function byte, wbit bool, item secs2.Item) error {
	if s.State() != StateSelected {
		return &ErrNotSelected{State: s.State()}
	}
	system := s.dispatcher.NextSystem()
	msg := NewDataMessage(s.cfg.SessionID, stream, function, wbit, system, item)
	if err := s.framer.WriteMessage(msg); err != nil {
		return &ErrSendFailed{Cause: err}
	}
	return nil
}

// SendAndWaitForResponse sends a W-bit data message and blocks for its
// correlated reply subject to the T3 timer.
func (s *Session) SendAndWaitForResponse(ctx context.Context, stream, function byte, item secs2.Item) (*Message, error) {
	if s.State() != StateSelected {
		return nil, &ErrNotSelected{State: s.State()}
	}
	return s.dispatcher.SendAndWait(ctx, s.cfg.SessionID, stream, function, item, s.cfg.Timeouts.T3)
}

// SendResponse replies to a previously received request carrying
// system/stream, with the reply's own function and item.
func (s *Session) SendResponse(system uint32, stream, function byte, item secs2.Item) error {
	if s.State() != StateSelected {
		return &ErrNotSelected{State: s.State()}
	}
	msg := NewDataMessage(s.cfg.SessionID, stream, function, false, system, item)
	if err := s.framer.WriteMessage(msg); err != nil {
		return &ErrSendFailed{Cause: err}
	}
	return nil
}

// Disable tears down the connection, fails every pending reply with
// ErrDisconnected, and returns the session to NOT_CONNECTED.
func (s *Session) Disable() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.dispatcher != nil {
		s.dispatcher.pending.FailAll(&ErrDisconnected{})
	}
	if s.framer != nil {
		_ = s.framer.Close()
	}
	s.setState(StateNotConnected)
	if s.Events.OnDisconnected != nil {
		s.Events.OnDisconnected(nil)
	}
}

// Run drives an ACTIVE session through repeated Enable/Disable cycles,
// waiting T5 between a drop and the next reconnect attempt, per spec
// §4.4's "any | TCP drop | NOT_CONNECTED ... start T5 before reconnect
// (active)". It returns when ctx is done. A PASSIVE session has no
// reconnect of its own; its Listener re-accepts instead, so Run just
// calls Enable once.
func (s *Session) Run(ctx context.Context) error {
	if s.role == RolePassive {
		return s.Enable(ctx)
	}
	for {
		err := s.Enable(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			s.logger.WithError(err).Warn("hsms: enable failed, waiting T5 before retry")
		} else {
			<-s.stopped
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.Timeouts.T5):
		}
	}
}

func (s *Session) readLoop(ctx context.Context) {
	defer close(s.stopped)
	for {
		header, payload, err := s.framer.ReadBlock()
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				s.logger.WithError(err).Warn("hsms: read loop ended")
			}
			if s.dispatcher != nil {
				s.dispatcher.pending.FailAll(&ErrDisconnected{})
			}
			s.setState(StateNotConnected)
			if s.Events.OnDisconnected != nil {
				s.Events.OnDisconnected(err)
			}
			return
		}

		msg, err := DecodeMessage(header, payload)
		if err != nil {
			s.logger.WithError(err).Warn("hsms: failed to decode message payload")
			continue
		}

		if s.Events.OnMessageReceived != nil {
			s.Events.OnMessageReceived(msg)
		}

		if header.IsControl() {
			s.handleControl(msg)
			continue
		}

		if s.State() != StateSelected {
			s.logger.Warn("hsms: data message received outside SELECTED state")
			continue
		}
		s.dispatcher.Dispatch(ctx, msg)
	}
}

func (s *Session) handleControl(msg *Message) {
	switch msg.Header.SType {
	case STypeSelectReq:
		status := SelectStatusOK
		if s.State() == StateSelected {
			status = SelectStatusAlreadySelected
		}
		_ = s.framer.WriteMessage(NewSelectRsp(msg, byte(status)))
		if status == SelectStatusOK {
			s.setState(StateSelected)
		}
	case STypeSelectRsp, STypeDeselectRsp, STypeLinktestRsp:
		s.dispatcher.pending.Fulfill(msg.Header.System, msg)
	case STypeDeselectReq:
		_ = s.framer.WriteMessage(NewDeselectRsp(msg, DeselectStatusOK))
		s.setState(StateNotSelected)
	case STypeLinktestReq:
		_ = s.framer.WriteMessage(NewLinktestRsp(msg))
	case STypeRejectReq:
		s.logger.WithFields(logrus.Fields{
			"offending": msg.Header.Stream,
			"reason":    msg.Header.Function,
		}).Warn("hsms: received REJECT_REQ")
	case STypeSeparateReq:
		s.logger.Info("hsms: received SEPARATE_REQ, disconnecting")
		go s.Disable()
	default:
		s.logger.WithField("stype", msg.Header.SType).Warn("hsms: unrecognized control message")
	}
}

func (s *Session) linktestLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Timeouts.Linktest)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.State() != StateSelected {
				continue
			}
			system := s.dispatcher.NextSystem()
			req := NewLinktestReq(system)
			ch := s.dispatcher.pending.Insert(system)
			if err := s.framer.WriteMessage(req); err != nil {
				s.dispatcher.pending.Remove(system)
				continue
			}
			timer := time.NewTimer(s.cfg.Timeouts.T6)
			select {
			case <-ch:
			case <-timer.C:
				s.dispatcher.pending.Remove(system)
				s.logger.Warn("hsms: linktest timed out, disconnecting")
				timer.Stop()
				go s.Disable()
				return
			case <-ctx.Done():
			}
			timer.Stop()
		}
	}
}
