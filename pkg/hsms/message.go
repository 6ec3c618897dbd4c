// Package hsms implements the SEMI E37 High-Speed SECS Message Services
// session layer: TCP framing, the connection state machine, and the
// stream/function dispatcher, carrying SECS-II items encoded by the
// sibling secs2 package.
package hsms

import (
	"encoding/binary"
	"fmt"

	"github.com/wolimst/lib-secs2-hsms-go/pkg/secs2"
)

// Session-type byte values, carried in header byte 5.
const (
	STypeDataMessage  byte = 0
	STypeSelectReq    byte = 1
	STypeSelectRsp    byte = 2
	STypeDeselectReq  byte = 3
	STypeDeselectRsp  byte = 4
	STypeLinktestReq  byte = 5
	STypeLinktestRsp  byte = 6
	STypeRejectReq    byte = 7
	STypeSeparateReq  byte = 9
)

// ControlSessionID is the session id placed in every control message's
// header, per SEMI E37.
const ControlSessionID uint16 = 0xFFFF

// Select/deselect status codes, carried in a response's Function byte.
const (
	SelectStatusOK                  byte = 0
	SelectStatusAlreadyActive       byte = 1
	SelectStatusNotReady            byte = 2
	SelectStatusAlreadySelected     byte = 3
	DeselectStatusOK                byte = 0
	DeselectStatusNotEstablished    byte = 1
	DeselectStatusBusy              byte = 2
)

// Reject reason codes, carried in a REJECT_REQ's Function byte.
const (
	RejectReasonSTypeNotSupported byte = 1
	RejectReasonPTypeNotSupported byte = 2
	RejectReasonTransactionNotOpen byte = 3
	RejectReasonEntitiesNotSelected byte = 4
)

// Header is the 10-byte HSMS message header described in spec §3. For
// data messages, Stream/Function carry the SECS-II stream and function
// numbers and WBit marks whether a reply is required. For control
// messages, Stream and Function are overloaded to carry message-specific
// status/reason bytes (documented per constructor below) and WBit is
// unused; SType always identifies the message kind.
type Header struct {
	SessionID uint16
	WBit      bool
	Stream    byte
	Function  byte
	PType     byte
	SType     byte
	System    uint32
}

// IsControl reports whether this header belongs to a control message
// (anything other than a data message).
func (h Header) IsControl() bool { return h.SType != STypeDataMessage }

// Encode serializes the header to its 10-byte wire form.
func (h Header) Encode() []byte {
	b := make([]byte, 10)
	binary.BigEndian.PutUint16(b[0:2], h.SessionID)
	byte2 := h.Stream & 0x7F
	if h.WBit {
		byte2 |= 0x80
	}
	b[2] = byte2
	b[3] = h.Function
	b[4] = h.PType
	b[5] = h.SType
	binary.BigEndian.PutUint32(b[6:10], h.System)
	return b
}

// DecodeHeader parses a 10-byte HSMS header.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) != 10 {
		return Header{}, &ErrProtocolViolation{Reason: fmt.Sprintf("header must be 10 bytes, got %d", len(b))}
	}
	return Header{
		SessionID: binary.BigEndian.Uint16(b[0:2]),
		WBit:      b[2]&0x80 != 0,
		Stream:    b[2] & 0x7F,
		Function:  b[3],
		PType:     b[4],
		SType:     b[5],
		System:    binary.BigEndian.Uint32(b[6:10]),
	}, nil
}

// Message is a complete HSMS message: a header plus, for data messages,
// a decoded SECS-II item. Item is nil for control messages and for empty
// (header-only) data messages such as an SxF0 abort reply.
type Message struct {
	Header Header
	Item   secs2.Item
}

// NewDataMessage builds a data message (SType 0).
func NewDataMessage(sessionID uint16, stream, function byte, wbit bool, system uint32, item secs2.Item) *Message {
	return &Message{
		Header: Header{
			SessionID: sessionID,
			WBit:      wbit,
			Stream:    stream,
			Function:  function,
			System:    system,
		},
		Item: item,
	}
}

// NewSelectReq builds a SELECT_REQ. The active side sends this to move a
// connection from NOT_SELECTED to SELECTED.
func NewSelectReq(sessionID uint16, system uint32) *Message {
	return &Message{Header: Header{SessionID: sessionID, SType: STypeSelectReq, System: system}}
}

// NewSelectRsp builds a SELECT_RSP in reply to req, carrying status.
func NewSelectRsp(req *Message, status byte) *Message {
	return &Message{Header: Header{
		SessionID: req.Header.SessionID,
		Function:  status,
		SType:     STypeSelectRsp,
		System:    req.Header.System,
	}}
}

// NewDeselectReq builds a DESELECT_REQ.
func NewDeselectReq(sessionID uint16, system uint32) *Message {
	return &Message{Header: Header{SessionID: sessionID, SType: STypeDeselectReq, System: system}}
}

// NewDeselectRsp builds a DESELECT_RSP in reply to req, carrying status.
func NewDeselectRsp(req *Message, status byte) *Message {
	return &Message{Header: Header{
		SessionID: req.Header.SessionID,
		Function:  status,
		SType:     STypeDeselectRsp,
		System:    req.Header.System,
	}}
}

// NewLinktestReq builds a LINKTEST_REQ.
func NewLinktestReq(system uint32) *Message {
	return &Message{Header: Header{SessionID: ControlSessionID, SType: STypeLinktestReq, System: system}}
}

// NewLinktestRsp builds a LINKTEST_RSP in reply to req.
func NewLinktestRsp(req *Message) *Message {
	return &Message{Header: Header{SessionID: ControlSessionID, SType: STypeLinktestRsp, System: req.Header.System}}
}

// NewRejectReq builds a REJECT_REQ describing why the message with the
// given header was refused: Stream carries the offending header's SType
// (its PType for a data message) and Function carries reason, one of the
// RejectReason constants.
func NewRejectReq(offending Header, reason byte) *Message {
	offendingType := offending.SType
	if offendingType == STypeDataMessage {
		offendingType = offending.PType
	}
	return &Message{Header: Header{
		SessionID: offending.SessionID,
		Stream:    offendingType,
		Function:  reason,
		SType:     STypeRejectReq,
		System:    offending.System,
	}}
}

// NewSeparateReq builds a SEPARATE_REQ, requesting the peer tear down
// the connection without further negotiation.
func NewSeparateReq(sessionID uint16, system uint32) *Message {
	return &Message{Header: Header{SessionID: sessionID, SType: STypeSeparateReq, System: system}}
}

// Encode serializes the message to a full HSMS frame: 4-byte big-endian
// length, 10-byte header, payload.
func (m *Message) Encode() []byte {
	var payload []byte
	if m.Item != nil {
		payload = m.Item.Encode()
	}
	header := m.Header.Encode()
	length := uint32(len(header) + len(payload))

	frame := make([]byte, 0, 4+length)
	lenBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBytes, length)
	frame = append(frame, lenBytes...)
	frame = append(frame, header...)
	frame = append(frame, payload...)
	return frame
}

// DecodeMessage builds a Message from a header already parsed off the
// wire and its corresponding payload bytes. An empty payload yields a
// Message with a nil Item.
func DecodeMessage(header Header, payload []byte) (*Message, error) {
	if len(payload) == 0 {
		return &Message{Header: header}, nil
	}
	item, _, err := secs2.Decode(payload, 0)
	if err != nil {
		return nil, err
	}
	return &Message{Header: header, Item: item}, nil
}
