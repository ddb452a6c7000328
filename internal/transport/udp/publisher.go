// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"mirage/internal/spectrogram"
	"mirage/internal/transport"
)

// HeaderSize is the fixed prefix of every packet.
const HeaderSize = 4 + 4 + 2

// MaxValues is the largest column a single packet can carry.
const MaxValues = math.MaxUint16

var ErrMalformedPacket = errors.New("malformed packet")

/*
Packet layout (BigEndian):

|<- 4 Bytes ->|<- 4 Bytes ->|<- 2 Bytes ->|<----- N * 4 Bytes ----->|
+-------------+-------------+-------------+-------------------------+
|  Sequence   |     Hop     |    Count    |      Power values       |
|  (uint32)   |  (uint32)   |  (uint16)   |     (N * float32)       |
+-------------+-------------+-------------+-------------------------+
*/

// Packet is one decoded spectrogram column.
type Packet struct {
	Sequence uint32
	Hop      uint32
	Power    []float32
}

// Publisher is a transport.Transport that packs every spectrogram column it
// is given into one datagram and sends it through a UDPSender.
type Publisher struct {
	sender *UDPSender

	mu          sync.Mutex
	sequenceNum uint32
	f32Buffer   []float32
	packet      *bytes.Buffer
}

// NewPublisher creates a Publisher for columns of up to bins values.
func NewPublisher(sender *UDPSender, bins int) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if bins < 1 || bins > MaxValues {
		return nil, fmt.Errorf("UDPPublisher: bin count %d outside [1, %d]", bins, MaxValues)
	}
	logger.Infof("publisher initialised (bins: %d, packet: %d bytes)", bins, HeaderSize+4*bins)
	return &Publisher{
		sender:    sender,
		f32Buffer: make([]float32, bins),
		packet:    bytes.NewBuffer(make([]byte, 0, HeaderSize+4*bins)),
	}, nil
}

// Send implements transport.Transport. Only spectrogram.Column values are
// accepted.
func (p *Publisher) Send(data any) error {
	col, ok := data.(spectrogram.Column)
	if !ok {
		return fmt.Errorf("UDPPublisher: unsupported message type %T", data)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(col.Power) > MaxValues {
		return fmt.Errorf("UDPPublisher: column of %d values exceeds %d", len(col.Power), MaxValues)
	}
	if cap(p.f32Buffer) < len(col.Power) {
		p.f32Buffer = make([]float32, len(col.Power))
	}
	values := p.f32Buffer[:len(col.Power)]
	for i, v := range col.Power {
		values[i] = float32(v)
	}

	p.sequenceNum++
	p.packet.Reset()
	if err := encode(p.packet, p.sequenceNum, uint32(col.Hop), values); err != nil {
		return fmt.Errorf("UDPPublisher: packing column %d: %w", col.Hop, err)
	}

	if err := p.sender.Send(p.packet.Bytes()); err != nil {
		return err
	}
	logger.Debugf("sent packet %d (hop %d, %d bytes)", p.sequenceNum, col.Hop, p.packet.Len())
	return nil
}

// Sequence returns the number of packets built so far.
func (p *Publisher) Sequence() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sequenceNum
}

// Close closes the underlying sender.
func (p *Publisher) Close() error {
	return p.sender.Close()
}

func encode(buf *bytes.Buffer, seq, hop uint32, values []float32) error {
	err := binary.Write(buf, binary.BigEndian, seq)
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, hop)
	}
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, uint16(len(values)))
	}
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, values)
	}
	return err
}

// DecodePacket parses a datagram produced by Publisher.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformedPacket, len(b))
	}
	pkt := Packet{
		Sequence: binary.BigEndian.Uint32(b[0:4]),
		Hop:      binary.BigEndian.Uint32(b[4:8]),
	}
	n := int(binary.BigEndian.Uint16(b[8:10]))
	if len(b) != HeaderSize+4*n {
		return Packet{}, fmt.Errorf("%w: count %d does not match %d payload bytes", ErrMalformedPacket, n, len(b)-HeaderSize)
	}
	pkt.Power = make([]float32, n)
	if err := binary.Read(bytes.NewReader(b[HeaderSize:]), binary.BigEndian, pkt.Power); err != nil {
		return Packet{}, fmt.Errorf("%w: %w", ErrMalformedPacket, err)
	}
	return pkt, nil
}

var _ transport.Transport = (*Publisher)(nil)
