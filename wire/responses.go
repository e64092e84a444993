package wire

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Device is the duplex byte channel a CommandLayer drives: one Write call
// transmits one encoded frame (or, during the handshake, the raw probe
// bytes); one Read call returns up to one frame.
type Device interface {
	Write(buf []byte, timeout time.Duration) (int, error)
	Read(buf []byte, timeout time.Duration) (int, error)
}

// maxResponseSize bounds the read buffer allocated for a single response;
// the device never sends a frame larger than this.
const maxResponseSize = 65536

// CommandLayer drives the request/response command set over a Device,
// validating every response frame and checking it carries ResponseACK.
type CommandLayer struct {
	device Device
}

// NewCommandLayer wraps dev for typed command exchanges.
func NewCommandLayer(dev Device) *CommandLayer {
	return &CommandLayer{device: dev}
}

// Handshake sends the raw, unframed probe bytes and waits for a response
// frame whose UTF-8 payload contains want (e.g. "romcode", "fdl1").
func (c *CommandLayer) Handshake(want string, timeout time.Duration) error {
	if _, err := c.device.Write(HandshakeProbe[:], timeout); err != nil {
		return &TransportError{Op: "handshake write", Cause: err}
	}

	buf := make([]byte, 64)
	n, err := c.device.Read(buf, timeout)
	if err != nil {
		return &TransportError{Op: "handshake read", Cause: err}
	}

	view := NewFrameView(buf[:n])
	if !view.IsValid() {
		return &InvalidFrameError{Reason: "handshake response failed validation"}
	}
	payload, ok := view.Payload()
	if !ok || len(payload) == 0 {
		return &NoPayloadError{Op: "handshake"}
	}
	if !utf8.Valid(payload) {
		return &HandshakeDecodeError{Cause: errors.New("payload is not valid UTF-8")}
	}

	banner := string(payload)
	if !strings.Contains(banner, want) {
		return &UnexpectedHandshakeError{Received: banner}
	}
	return nil
}

// Exchange writes request and waits for one response frame, returning its
// payload once the response has been validated and confirmed as ACK.
func (c *CommandLayer) Exchange(request []byte, timeout time.Duration) ([]byte, error) {
	if _, err := c.device.Write(request, timeout); err != nil {
		return nil, &TransportError{Op: "write", Cause: err}
	}

	buf := make([]byte, maxResponseSize)
	n, err := c.device.Read(buf, timeout)
	if err != nil {
		return nil, &TransportError{Op: "read", Cause: err}
	}

	cmd, payload, err := Decode(buf[:n])
	if err != nil {
		return nil, err
	}
	if cmd != ResponseACK {
		return nil, &UnexpectedResponseError{Code: cmd}
	}
	return payload, nil
}

// StartRAMDownload issues start_ram_download and awaits its ACK.
func (c *CommandLayer) StartRAMDownload(timeout time.Duration) error {
	_, err := c.Exchange(BuildStartRAMDownload(), timeout)
	return err
}

// StartPartitionAbsolute32 issues a 32-bit-addressed start_partition.
func (c *CommandLayer) StartPartitionAbsolute32(addr, length uint32, timeout time.Duration) error {
	_, err := c.Exchange(BuildStartPartitionAbsolute32(addr, length), timeout)
	return err
}

// StartPartitionAbsolute64 issues a 64-bit-addressed start_partition.
func (c *CommandLayer) StartPartitionAbsolute64(addr, length uint64, timeout time.Duration) error {
	_, err := c.Exchange(BuildStartPartitionAbsolute64(addr, length), timeout)
	return err
}

// StartPartitionID issues a named-partition start_partition.
func (c *CommandLayer) StartPartitionID(name string, totalLength uint64, timeout time.Duration) error {
	request, err := BuildStartPartitionID(name, totalLength)
	if err != nil {
		return err
	}
	_, err = c.Exchange(request, timeout)
	return err
}

// EndPartition issues end_partition. Its timeout varies by image class:
// short for FDL stages, long for CODE images (§4.6).
func (c *CommandLayer) EndPartition(timeout time.Duration) error {
	_, err := c.Exchange(BuildEndPartition(), timeout)
	return err
}

// EndRAMDownload issues end_ram_download and awaits its ACK.
func (c *CommandLayer) EndRAMDownload(timeout time.Duration) error {
	_, err := c.Exchange(BuildEndRAMDownload(), timeout)
	return err
}

// SetPartitionTable issues set_partition_table with the already-serialized
// table bytes.
func (c *CommandLayer) SetPartitionTable(table []byte, timeout time.Duration) error {
	_, err := c.Exchange(BuildSetPartitionTable(table), timeout)
	return err
}

// WriteChunk announces and transmits one raw chunk of an image being
// streamed into the currently open partition: start_block(len(chunk)) and
// its ACK, the chunk itself unframed, then one more ACK for the chunk.
func (c *CommandLayer) WriteChunk(chunk []byte, timeout time.Duration) error {
	if _, err := c.Exchange(BuildStartBlock(uint16(len(chunk))), timeout); err != nil {
		return err
	}
	if _, err := c.device.Write(chunk, timeout); err != nil {
		return &TransportError{Op: "chunk write", Cause: err}
	}

	buf := make([]byte, maxResponseSize)
	n, err := c.device.Read(buf, timeout)
	if err != nil {
		return &TransportError{Op: "chunk ack read", Cause: err}
	}
	cmd, _, err := Decode(buf[:n])
	if err != nil {
		return err
	}
	if cmd != ResponseACK {
		return &UnexpectedResponseError{Code: cmd}
	}
	return nil
}
