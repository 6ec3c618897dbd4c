package hsms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolimst/lib-secs2-hsms-go/pkg/secs2"
)

func TestHeader_EncodeDecodeRoundTrip(t *testing.T) {
	h := Header{SessionID: 7, WBit: true, Stream: 1, Function: 13, PType: 0, SType: STypeDataMessage, System: 12345}
	encoded := h.Encode()
	assert.Len(t, encoded, 10)

	decoded, err := DecodeHeader(encoded)
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func TestDecodeHeader_RejectsWrongLength(t *testing.T) {
	_, err := DecodeHeader([]byte{1, 2, 3})
	require.Error(t, err)
	assert.IsType(t, &ErrProtocolViolation{}, err)
}

// SELECT_REQ(system=123) on session 0xFFFF must encode to the wire bytes.
func TestNewSelectReq_EncodesControlSessionAndSystem(t *testing.T) {
	req := NewSelectReq(ControlSessionID, 123)
	assert.Equal(t, []byte{
		0xFF, 0xFF, // session id
		0x00,       // byte2
		0x00,       // byte3
		0x00,       // ptype
		0x01,       // stype = SELECT_REQ
		0x00, 0x00, 0x00, 0x7B, // system = 123
	}, req.Header.Encode())
}

func TestNewRejectReq_EncodesOffendingTypeAndReason(t *testing.T) {
	offending := Header{SessionID: ControlSessionID, SType: STypeSelectReq, System: 123}
	reject := NewRejectReq(offending, RejectReasonSTypeNotSupported)
	assert.Equal(t, []byte{
		0xFF, 0xFF,
		0x01, // offending s_type
		0x01, // reason
		0x00,
		STypeRejectReq,
		0x00, 0x00, 0x00, 0x7B,
	}, reject.Header.Encode())
}

func TestMessage_EncodeDecodeRoundTrip(t *testing.T) {
	item := secs2.NewASCIIString("hello")
	msg := NewDataMessage(1, 1, 1, true, 42, item)
	frame := msg.Encode()

	header, err := DecodeHeader(frame[4:14])
	require.NoError(t, err)
	payload := frame[14:]

	decoded, err := DecodeMessage(header, payload)
	require.NoError(t, err)
	assert.Equal(t, msg.Header, decoded.Header)
	assert.True(t, item.Equal(decoded.Item))
}

func TestDecodeMessage_EmptyPayloadYieldsNilItem(t *testing.T) {
	header := Header{SessionID: 1, SType: STypeDataMessage, Function: 0}
	decoded, err := DecodeMessage(header, nil)
	require.NoError(t, err)
	assert.Nil(t, decoded.Item)
}

func TestHeader_IsControl(t *testing.T) {
	assert.False(t, Header{SType: STypeDataMessage}.IsControl())
	assert.True(t, Header{SType: STypeLinktestReq}.IsControl())
}
