package events

import "github.com/golang/protobuf/proto"

// Wire messages. Field numbers are part of the event topic contract.

// Envelope wraps an encoded event with its type.
type Envelope struct {
	TypeId               uint32   `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	HostId               string   `protobuf:"bytes,2,opt,name=host_id,json=hostId,proto3" json:"host_id,omitempty"`
	Sequence             uint64   `protobuf:"varint,3,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Timestamp            int64    `protobuf:"varint,4,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Message              []byte   `protobuf:"bytes,5,opt,name=message,proto3" json:"message,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Envelope) Reset()         { *m = Envelope{} }
func (m *Envelope) String() string { return proto.CompactTextString(m) }
func (*Envelope) ProtoMessage()    {}

// LineEchoedPb is the payload of LineEchoed.
type LineEchoedPb struct {
	Line                 []byte   `protobuf:"bytes,1,opt,name=line,proto3" json:"line,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *LineEchoedPb) Reset()         { *m = LineEchoedPb{} }
func (m *LineEchoedPb) String() string { return proto.CompactTextString(m) }
func (*LineEchoedPb) ProtoMessage()    {}

// LineDroppedPb is the payload of LineDropped.
type LineDroppedPb struct {
	Line                 []byte   `protobuf:"bytes,1,opt,name=line,proto3" json:"line,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *LineDroppedPb) Reset()         { *m = LineDroppedPb{} }
func (m *LineDroppedPb) String() string { return proto.CompactTextString(m) }
func (*LineDroppedPb) ProtoMessage()    {}

// ReceiveErrorPb is the payload of ReceiveError.
type ReceiveErrorPb struct {
	Message              string   `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *ReceiveErrorPb) Reset()         { *m = ReceiveErrorPb{} }
func (m *ReceiveErrorPb) String() string { return proto.CompactTextString(m) }
func (*ReceiveErrorPb) ProtoMessage()    {}

func init() {
	proto.RegisterType((*Envelope)(nil), "uartecho.events.v1.Envelope")
	proto.RegisterType((*LineEchoedPb)(nil), "uartecho.events.v1.LineEchoed")
	proto.RegisterType((*LineDroppedPb)(nil), "uartecho.events.v1.LineDropped")
	proto.RegisterType((*ReceiveErrorPb)(nil), "uartecho.events.v1.ReceiveError")
}
