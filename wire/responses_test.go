package wire

import (
	"errors"
	"testing"
	"time"
)

// scriptedDevice plays back a fixed sequence of reads while recording
// every write it observes, for exercising CommandLayer without real I/O.
type scriptedDevice struct {
	reads   [][]byte
	readErr error
	writes  [][]byte
	writeN  int
}

func (d *scriptedDevice) Write(buf []byte, _ time.Duration) (int, error) {
	cp := append([]byte(nil), buf...)
	d.writes = append(d.writes, cp)
	return len(buf), nil
}

func (d *scriptedDevice) Read(buf []byte, _ time.Duration) (int, error) {
	if d.readErr != nil {
		return 0, d.readErr
	}
	if d.writeN >= len(d.reads) {
		return 0, errors.New("scriptedDevice: no more scripted reads")
	}
	next := d.reads[d.writeN]
	d.writeN++
	n := copy(buf, next)
	return n, nil
}

func ackFrame() []byte {
	return Encode(ResponseACK, nil)
}

func TestCommandLayerHandshake(t *testing.T) {
	banner := Encode(ResponseACK, []byte("romcode v1.0;raw"))
	dev := &scriptedDevice{reads: [][]byte{banner}}
	layer := NewCommandLayer(dev)

	if err := layer.Handshake("romcode", time.Second); err != nil {
		t.Fatalf("Handshake() error = %v", err)
	}
	if len(dev.writes) != 1 || string(dev.writes[0]) != string(HandshakeProbe[:]) {
		t.Errorf("writes = %v, want one write of %v", dev.writes, HandshakeProbe)
	}
}

func TestCommandLayerHandshakeUnexpectedBanner(t *testing.T) {
	banner := Encode(ResponseACK, []byte("fdl1 v2.0;raw"))
	dev := &scriptedDevice{reads: [][]byte{banner}}
	layer := NewCommandLayer(dev)

	err := layer.Handshake("romcode", time.Second)
	if err == nil {
		t.Fatal("Handshake() error = nil, want error")
	}
	var want *UnexpectedHandshakeError
	if !errors.As(err, &want) {
		t.Errorf("error type = %T, want *UnexpectedHandshakeError", err)
	}
}

func TestCommandLayerExchangeRejectsNonACK(t *testing.T) {
	dev := &scriptedDevice{reads: [][]byte{Encode(0x0001, nil)}}
	layer := NewCommandLayer(dev)

	_, err := layer.Exchange(BuildStartRAMDownload(), time.Second)
	var want *UnexpectedResponseError
	if !errors.As(err, &want) {
		t.Fatalf("error type = %T, want *UnexpectedResponseError", err)
	}
	if want.Code != 0x0001 {
		t.Errorf("Code = 0x%04X, want 0x0001", want.Code)
	}
}

func TestCommandLayerStagedRequests(t *testing.T) {
	dev := &scriptedDevice{reads: [][]byte{ackFrame(), ackFrame(), ackFrame(), ackFrame()}}
	layer := NewCommandLayer(dev)

	if err := layer.StartRAMDownload(time.Second); err != nil {
		t.Fatalf("StartRAMDownload() error = %v", err)
	}
	if err := layer.StartPartitionAbsolute32(0x1000, 0x200, time.Second); err != nil {
		t.Fatalf("StartPartitionAbsolute32() error = %v", err)
	}
	if err := layer.EndPartition(EndPartitionTimeoutRAM); err != nil {
		t.Fatalf("EndPartition() error = %v", err)
	}
	if err := layer.EndRAMDownload(time.Second); err != nil {
		t.Fatalf("EndRAMDownload() error = %v", err)
	}

	if len(dev.writes) != 4 {
		t.Fatalf("len(writes) = %d, want 4", len(dev.writes))
	}
	cmd, _, _ := Decode(dev.writes[0])
	if cmd != CmdStartRAMDownload {
		t.Errorf("writes[0] cmd = 0x%04X, want 0x%04X", cmd, CmdStartRAMDownload)
	}
	cmd, _, _ = Decode(dev.writes[1])
	if cmd != CmdStartPartition {
		t.Errorf("writes[1] cmd = 0x%04X, want 0x%04X", cmd, CmdStartPartition)
	}
}

func TestCommandLayerWriteChunk(t *testing.T) {
	dev := &scriptedDevice{reads: [][]byte{ackFrame(), ackFrame()}}
	layer := NewCommandLayer(dev)

	chunk := []byte{0x01, 0x02, 0x03, 0x04}
	if err := layer.WriteChunk(chunk, time.Second); err != nil {
		t.Fatalf("WriteChunk() error = %v", err)
	}

	if len(dev.writes) != 2 {
		t.Fatalf("len(writes) = %d, want 2 (start_block, raw chunk)", len(dev.writes))
	}
	cmd, payload, err := Decode(dev.writes[0])
	if err != nil {
		t.Fatalf("decoding start_block frame: %v", err)
	}
	if cmd != CmdStartBlock {
		t.Errorf("writes[0] cmd = 0x%04X, want 0x%04X", cmd, CmdStartBlock)
	}
	if payload[0] != 4 || payload[1] != 0 {
		t.Errorf("start_block size = % X, want 04 00", payload[0:2])
	}

	// The second write is the raw chunk, unframed.
	if string(dev.writes[1]) != string(chunk) {
		t.Errorf("writes[1] = % X, want raw chunk % X", dev.writes[1], chunk)
	}
}

func TestCommandLayerWriteChunkRejectsNonACK(t *testing.T) {
	dev := &scriptedDevice{reads: [][]byte{ackFrame(), Encode(0x0099, nil)}}
	layer := NewCommandLayer(dev)

	err := layer.WriteChunk([]byte{0xAA}, time.Second)
	var want *UnexpectedResponseError
	if !errors.As(err, &want) {
		t.Fatalf("error type = %T, want *UnexpectedResponseError", err)
	}
}

func TestCommandLayerSetPartitionTable(t *testing.T) {
	dev := &scriptedDevice{reads: [][]byte{ackFrame()}}
	layer := NewCommandLayer(dev)

	table := []byte{'p', 'a', 'r', ':', 0x01, 0x00, 0x00, 0x00}
	if err := layer.SetPartitionTable(table, time.Second); err != nil {
		t.Fatalf("SetPartitionTable() error = %v", err)
	}
	cmd, payload, _ := Decode(dev.writes[0])
	if cmd != CmdSetPartitionTable {
		t.Errorf("cmd = 0x%04X, want 0x%04X", cmd, CmdSetPartitionTable)
	}
	if string(payload) != string(table) {
		t.Errorf("payload = % X, want % X", payload, table)
	}
}
