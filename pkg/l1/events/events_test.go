package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	ev := &LineEchoed{}
	ev.Line = []byte("Hi")
	env, err := Wrap(ev)
	require.NoError(t, err)
	env.HostId, env.Sequence, env.Timestamp = "host", 7, 1234
	data, err := env.Encode()
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(data)
	require.NoError(t, err)
	require.Equal(t, LineEchoedTypeID, decoded.TypeId)
	require.Equal(t, "host", decoded.HostId)
	require.Equal(t, uint64(7), decoded.Sequence)
	require.Equal(t, int64(1234), decoded.Timestamp)

	out, err := decoded.Unwrap()
	require.NoError(t, err)
	echoed, ok := out.(*LineEchoed)
	require.True(t, ok)
	require.Equal(t, []byte("Hi"), echoed.Line)
}

func TestEnvelopeTypes(t *testing.T) {
	dropped := &LineDropped{}
	dropped.Line = []byte("xxx")
	recvErr := &ReceiveError{}
	recvErr.Message = "framing error"
	for _, ev := range []Event{dropped, recvErr} {
		env, err := Wrap(ev)
		require.NoError(t, err)
		require.Equal(t, ev.TypeID(), env.TypeId)
		out, err := env.Unwrap()
		require.NoError(t, err)
		require.IsType(t, ev, out)
	}
}

func TestUnknownType(t *testing.T) {
	env := &Envelope{TypeId: 0x7f}
	_, err := env.Unwrap()
	require.Equal(t, &ErrUnknownType{TypeID: 0x7f}, err)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := DecodeEnvelope([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}

func TestEventNames(t *testing.T) {
	names := make(map[uint32]string)
	for id, ev := range EventTypes {
		names[id] = ev.NewEvent().Name()
	}
	require.Equal(t, map[uint32]string{
		LineEchoedTypeID:   "LineEchoed",
		LineDroppedTypeID:  "LineDropped",
		ReceiveErrorTypeID: "ReceiveError",
	}, names)
}
