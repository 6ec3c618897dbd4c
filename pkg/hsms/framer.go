package hsms

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/golang-collections/collections/queue"
)

// DefaultMaxFrame bounds the accepted frame length field when a Config
// leaves MaxFrame unset.
const DefaultMaxFrame uint32 = 4 << 20 // 4 MiB

// block is one (header, payload) unit read off the wire as a single frame.
type block struct {
	header  Header
	payload []byte
}

// Framer turns a net.Conn into a stream of HSMS blocks. Reads happen on
// a background goroutine that appends to an internal buffer and pushes
// each complete frame onto a queue for ReadBlock to drain at its own
// pace; writes are serialized under a mutex so concurrent senders never
// interleave partial frames on the wire.
type Framer struct {
	conn     net.Conn
	maxFrame uint32

	writeMu sync.Mutex

	blocksMu   sync.Mutex
	blocksCond *sync.Cond
	blocks     *queue.Queue
	readErr    error
	closed     bool
}

// NewFramer wraps conn and starts its background read pump. maxFrame of
// 0 uses DefaultMaxFrame.
func NewFramer(conn net.Conn, maxFrame uint32) *Framer {
	if maxFrame == 0 {
		maxFrame = DefaultMaxFrame
	}
	f := &Framer{conn: conn, maxFrame: maxFrame, blocks: queue.New()}
	f.blocksCond = sync.NewCond(&f.blocksMu)
	go f.readPump()
	return f
}

func (f *Framer) readPump() {
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 8192)
	for {
		n, err := f.conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			for {
				b, rest, ok, perr := splitFrame(buf, f.maxFrame)
				if perr != nil {
					f.fail(perr)
					return
				}
				if !ok {
					break
				}
				f.pushBlock(b)
				buf = rest
			}
		}
		if err != nil {
			f.fail(err)
			return
		}
	}
}

// splitFrame extracts one complete frame from the front of buf, if
// present. It returns ok=false when buf holds an incomplete frame.
func splitFrame(buf []byte, maxFrame uint32) (b block, rest []byte, ok bool, err error) {
	if len(buf) < 4 {
		return block{}, buf, false, nil
	}
	length := binary.BigEndian.Uint32(buf[:4])
	if length < 10 {
		return block{}, nil, false, &ErrProtocolViolation{Reason: fmt.Sprintf("frame length %d shorter than header", length)}
	}
	if length > maxFrame {
		return block{}, nil, false, &ErrProtocolViolation{Reason: fmt.Sprintf("frame length %d exceeds max %d", length, maxFrame)}
	}
	if uint32(len(buf)) < 4+length {
		return block{}, buf, false, nil
	}

	header, err := DecodeHeader(buf[4:14])
	if err != nil {
		return block{}, nil, false, err
	}
	payload := make([]byte, length-10)
	copy(payload, buf[14:4+length])
	return block{header: header, payload: payload}, buf[4+length:], true, nil
}

func (f *Framer) pushBlock(b block) {
	f.blocksMu.Lock()
	f.blocks.Enqueue(b)
	f.blocksCond.Signal()
	f.blocksMu.Unlock()
}

func (f *Framer) fail(err error) {
	f.blocksMu.Lock()
	if !f.closed {
		f.readErr = err
		f.closed = true
		f.blocksCond.Broadcast()
	}
	f.blocksMu.Unlock()
}

// ReadBlock blocks until a complete frame is available, or returns the
// error that ended the read pump (io.EOF on a clean peer close).
func (f *Framer) ReadBlock() (Header, []byte, error) {
	f.blocksMu.Lock()
	defer f.blocksMu.Unlock()
	for f.blocks.Len() == 0 && !f.closed {
		f.blocksCond.Wait()
	}
	if f.blocks.Len() > 0 {
		b := f.blocks.Dequeue().(block)
		return b.header, b.payload, nil
	}
	return Header{}, nil, f.readErr
}

// WriteMessage serializes msg and writes it to the connection as a
// single frame, holding the write lock for the whole write so that
// concurrent callers never interleave partial frames.
func (f *Framer) WriteMessage(msg *Message) error {
	frame := msg.Encode()
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	_, err := f.conn.Write(frame)
	return err
}

// Close stops the read pump and closes the underlying connection. Once
// any already-queued blocks are drained, ReadBlock returns
// ErrDisconnected, or the read pump's own error if it stopped first.
func (f *Framer) Close() error {
	f.blocksMu.Lock()
	f.closed = true
	if f.readErr == nil {
		f.readErr = &ErrDisconnected{}
	}
	f.blocksCond.Broadcast()
	f.blocksMu.Unlock()
	return f.conn.Close()
}
