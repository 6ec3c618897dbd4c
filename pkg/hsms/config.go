package hsms

import "time"

// ConnectMode selects which side of the TCP connection this session takes:
// ACTIVE dials out and sends SELECT_REQ, PASSIVE accepts and waits for one.
type ConnectMode int

const (
	ConnectModeActive ConnectMode = iota
	ConnectModePassive
)

func (m ConnectMode) String() string {
	if m == ConnectModeActive {
		return "active"
	}
	return "passive"
}

// DeviceType affects default W-bit expectations of a higher layer; the
// core protocol treats both the same way.
type DeviceType int

const (
	DeviceTypeHost DeviceType = iota
	DeviceTypeEquipment
)

func (d DeviceType) String() string {
	if d == DeviceTypeHost {
		return "host"
	}
	return "equipment"
}

// Timeouts holds the durations of the five HSMS timers plus the linktest
// interval, per spec §4.4.
type Timeouts struct {
	T3       time.Duration // reply timeout for W-bit data messages
	T5       time.Duration // reconnect delay (active)
	T6       time.Duration // control-message reply timeout
	T7       time.Duration // NOT_SELECTED residency limit
	T8       time.Duration // inter-character timeout (SECS-I; unused here)
	Linktest time.Duration // periodic LINKTEST_REQ interval; 0 disables it
}

// DefaultTimeouts returns the commonly used SEMI E37 timer defaults.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		T3:       45 * time.Second,
		T5:       10 * time.Second,
		T6:       5 * time.Second,
		T7:       10 * time.Second,
		T8:       5 * time.Second,
		Linktest: 120 * time.Second,
	}
}

// Config is the settings object of spec §6: TCP endpoint, role, the
// session id placed in data-message headers, and the timer durations.
type Config struct {
	Address     string
	Port        int
	ConnectMode ConnectMode
	SessionID   uint16
	DeviceType  DeviceType
	Timeouts    Timeouts
	MaxFrame    uint32 // largest accepted frame length field; 0 means DefaultMaxFrame
}

// ConfigOption mutates a Config being built by NewConfig.
type ConfigOption func(*Config)

// NewConfig creates a Config for address:port, PASSIVE/HOST by default,
// with SEMI E37 default timeouts, then applies opts in order.
func NewConfig(address string, port int, opts ...ConfigOption) *Config {
	cfg := &Config{
		Address:     address,
		Port:        port,
		ConnectMode: ConnectModePassive,
		DeviceType:  DeviceTypeHost,
		Timeouts:    DefaultTimeouts(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithConnectMode sets ACTIVE or PASSIVE.
func WithConnectMode(mode ConnectMode) ConfigOption {
	return func(c *Config) { c.ConnectMode = mode }
}

// WithSessionID sets the equipment session id placed in data-message headers.
func WithSessionID(id uint16) ConfigOption {
	return func(c *Config) { c.SessionID = id }
}

// WithDeviceType sets HOST or EQUIPMENT.
func WithDeviceType(t DeviceType) ConfigOption {
	return func(c *Config) { c.DeviceType = t }
}

// WithTimeouts replaces the whole Timeouts struct.
func WithTimeouts(t Timeouts) ConfigOption {
	return func(c *Config) { c.Timeouts = t }
}

// WithMaxFrame sets the largest frame length field this session will
// accept before treating it as ProtocolViolation.
func WithMaxFrame(max uint32) ConfigOption {
	return func(c *Config) { c.MaxFrame = max }
}
