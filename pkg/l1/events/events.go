// Package events defines the events published by an echo host.
package events

import (
	"fmt"

	"github.com/golang/protobuf/proto"
)

// Event is a message which can be carried in an Envelope.
type Event interface {
	// NewEvent creates an empty event of the same type.
	NewEvent() Event
	TypeID() uint32
	// Name is the event type name for display.
	Name() string
	Serializable() proto.Message
}

// TypeIDs
const (
	GroupLine    uint32 = 0x00010000
	GroupReceive uint32 = 0x00020000

	LineEchoedTypeID   uint32 = GroupLine | 0x0001
	LineDroppedTypeID  uint32 = GroupLine | 0x0002
	ReceiveErrorTypeID uint32 = GroupReceive | 0x0001
)

// EventTypes maps type ID to events.
var EventTypes = map[uint32]Event{
	LineEchoedTypeID:   (*LineEchoed)(nil),
	LineDroppedTypeID:  (*LineDropped)(nil),
	ReceiveErrorTypeID: (*ReceiveError)(nil),
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// LineEchoed is published after a line is echoed.
type LineEchoed struct {
	LineEchoedPb
}

// NewEvent implements Event.
func (e *LineEchoed) NewEvent() Event { return &LineEchoed{} }

// Name implements Event.
func (e *LineEchoed) Name() string { return "LineEchoed" }

// TypeID implements Event.
func (e *LineEchoed) TypeID() uint32 { return LineEchoedTypeID }

// Serializable implements Event.
func (e *LineEchoed) Serializable() proto.Message { return &e.LineEchoedPb }

// LineDropped is published when a line overflows the buffer.
type LineDropped struct {
	LineDroppedPb
}

// NewEvent implements Event.
func (e *LineDropped) NewEvent() Event { return &LineDropped{} }

// Name implements Event.
func (e *LineDropped) Name() string { return "LineDropped" }

// TypeID implements Event.
func (e *LineDropped) TypeID() uint32 { return LineDroppedTypeID }

// Serializable implements Event.
func (e *LineDropped) Serializable() proto.Message { return &e.LineDroppedPb }

// ReceiveError is published when a receive error is surfaced.
type ReceiveError struct {
	ReceiveErrorPb
}

// NewEvent implements Event.
func (e *ReceiveError) NewEvent() Event { return &ReceiveError{} }

// Name implements Event.
func (e *ReceiveError) Name() string { return "ReceiveError" }

// TypeID implements Event.
func (e *ReceiveError) TypeID() uint32 { return ReceiveErrorTypeID }

// Serializable implements Event.
func (e *ReceiveError) Serializable() proto.Message { return &e.ReceiveErrorPb }

// Wrap creates an Envelope from an event.
func Wrap(ev Event) (*Envelope, error) {
	data, err := proto.Marshal(ev.Serializable())
	if err != nil {
		return nil, err
	}
	return &Envelope{TypeId: ev.TypeID(), Message: data}, nil
}

// Unwrap decodes the event in the envelope.
func (m *Envelope) Unwrap() (Event, error) {
	evType, ok := EventTypes[m.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: m.TypeId}
	}
	ev := evType.NewEvent()
	if err := proto.Unmarshal(m.Message, ev.Serializable()); err != nil {
		return nil, err
	}
	return ev, nil
}

// Encode encodes the envelope to bytes.
func (m *Envelope) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeEnvelope decodes bytes into an Envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := proto.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
