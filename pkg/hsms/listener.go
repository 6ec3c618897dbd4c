package hsms

import (
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
)

// Listener accepts PASSIVE-role connections, hands each one to
// OnSession as a new Session, and then calls Enable on it in its own
// goroutine.
type Listener struct {
	cfg       *Config
	logger    *logrus.Logger
	OnSession func(*Session)

	ln net.Listener
}

// NewListener creates a Listener bound to cfg.Address:cfg.Port once
// Serve is called.
func NewListener(cfg *Config, logger *logrus.Logger) *Listener {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Listener{cfg: cfg, logger: logger}
}

// Serve accepts connections until ctx is cancelled or Accept fails.
func (l *Listener) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", l.cfg.Address, l.cfg.Port))
	if err != nil {
		return err
	}
	l.ln = ln
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		session := NewPassiveSession(conn, l.cfg, l.logger)
		if l.OnSession != nil {
			l.OnSession(session)
		}
		go func() {
			if err := session.Enable(ctx); err != nil {
				l.logger.WithError(err).Warn("hsms: passive session negotiation failed")
			}
		}()
	}
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}
