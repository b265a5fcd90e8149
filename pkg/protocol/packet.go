package protocol

import (
	"bytes"
	"fmt"
	"io"
)

// Connection states
const (
	StateHandshaking = 0
	StateStatus      = 1
	StateLogin       = 2
	StatePlay        = 3
)

// Protocol version for Minecraft 1.8.x
const ProtocolVersion = 47

// maxPacketLength caps the body of an incoming packet at the largest value
// a 3-byte VarInt length prefix can carry.
const maxPacketLength = 1<<21 - 1

// Packet represents a Minecraft protocol packet with an ID and payload.
type Packet struct {
	ID   int32
	Data []byte
}

// ReadPacket reads one length-prefixed packet from the reader.
func ReadPacket(r io.Reader) (*Packet, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if length < 1 || length > maxPacketLength {
		return nil, fmt.Errorf("bad packet length: %d", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	packetID, idLen, err := ReadVarInt(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("reading packet id: %w", err)
	}
	return &Packet{ID: packetID, Data: payload[idLen:]}, nil
}

// WritePacket writes a full packet to the writer as one buffered write, so
// concurrent writers on the same connection never interleave partial
// packets.
func WritePacket(w io.Writer, p *Packet) error {
	bodyLen := int32(VarIntSize(p.ID) + len(p.Data))

	buf := bytes.NewBuffer(make([]byte, 0, VarIntSize(bodyLen)+int(bodyLen)))
	WriteVarInt(buf, bodyLen)
	WriteVarInt(buf, p.ID)
	buf.Write(p.Data)

	_, err := w.Write(buf.Bytes())
	return err
}

// MarshalPacket creates a Packet from a packet ID and a builder function.
func MarshalPacket(id int32, builder func(w *bytes.Buffer)) *Packet {
	var buf bytes.Buffer
	builder(&buf)
	return &Packet{ID: id, Data: buf.Bytes()}
}
