package wire

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuildStartRAMDownload(t *testing.T) {
	frame := BuildStartRAMDownload()
	if !NewFrameView(frame).IsValid() {
		t.Fatal("frame is not valid")
	}
	cmd, payload, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cmd != CmdStartRAMDownload {
		t.Errorf("cmd = 0x%04X, want 0x%04X", cmd, CmdStartRAMDownload)
	}
	if len(payload) != 0 {
		t.Errorf("payload = %v, want empty", payload)
	}
}

func TestBuildStartPartitionAbsolute32(t *testing.T) {
	frame := BuildStartPartitionAbsolute32(0x10000000, 0x2000)
	cmd, payload, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cmd != CmdStartPartition {
		t.Errorf("cmd = 0x%04X, want 0x%04X", cmd, CmdStartPartition)
	}
	want := []byte{0x00, 0x00, 0x00, 0x10, 0x00, 0x20, 0x00, 0x00}
	if !bytes.Equal(payload, want) {
		t.Errorf("payload = % X, want % X", payload, want)
	}
}

func TestBuildStartPartitionAbsolute64(t *testing.T) {
	frame := BuildStartPartitionAbsolute64(0x100000000, 0x123456789)
	cmd, payload, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cmd != CmdStartPartition {
		t.Errorf("cmd = 0x%04X, want 0x%04X", cmd, CmdStartPartition)
	}
	if len(payload) != 16 {
		t.Fatalf("len(payload) = %d, want 16", len(payload))
	}
}

func TestBuildStartPartitionID(t *testing.T) {
	frame, err := BuildStartPartitionID("APP", 1048576)
	if err != nil {
		t.Fatalf("BuildStartPartitionID() error = %v", err)
	}
	cmd, payload, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cmd != CmdStartPartition {
		t.Errorf("cmd = 0x%04X, want 0x%04X", cmd, CmdStartPartition)
	}
	if len(payload) != 88 {
		t.Fatalf("len(payload) = %d, want 88", len(payload))
	}
	if !bytes.Equal(payload[0:6], []byte{'A', 0, 'P', 0, 'P', 0}) {
		t.Errorf("name field = % X", payload[0:6])
	}
	if !bytes.Equal(payload[6:72], make([]byte, 66)) {
		t.Error("name field padding is not zero")
	}
	if !bytes.Equal(payload[72:80], []byte{0, 0, 0x10, 0, 0, 0, 0, 0}) {
		t.Errorf("total_length field = % X", payload[72:80])
	}
	if !bytes.Equal(payload[80:88], make([]byte, 8)) {
		t.Error("reserved tail is not zero")
	}
}

func TestBuildStartPartitionIDNameTooLong(t *testing.T) {
	_, err := BuildStartPartitionID(strings.Repeat("x", 37), 0)
	if err == nil {
		t.Fatal("error = nil, want error for over-long partition name")
	}
}

func TestBuildStartBlock(t *testing.T) {
	frame := BuildStartBlock(1000)
	cmd, payload, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cmd != CmdStartBlock {
		t.Errorf("cmd = 0x%04X, want 0x%04X", cmd, CmdStartBlock)
	}
	if len(payload) != 12 {
		t.Fatalf("len(payload) = %d, want 12", len(payload))
	}
	if payload[0] != 0xE8 || payload[1] != 0x03 {
		t.Errorf("block size bytes = % X, want E8 03", payload[0:2])
	}
	if !bytes.Equal(payload[2:], make([]byte, 10)) {
		t.Error("reserved bytes are not zero")
	}
}

func TestBuildEndPartition(t *testing.T) {
	cmd, payload, err := Decode(BuildEndPartition())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cmd != CmdEndPartition || len(payload) != 0 {
		t.Errorf("cmd = 0x%04X, payload = %v", cmd, payload)
	}
}

func TestBuildEndRAMDownload(t *testing.T) {
	cmd, payload, err := Decode(BuildEndRAMDownload())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cmd != CmdEndRAMDownload || len(payload) != 0 {
		t.Errorf("cmd = 0x%04X, payload = %v", cmd, payload)
	}
}

func TestBuildSetPartitionTable(t *testing.T) {
	table := []byte{'p', 'a', 'r', ':', 0x01, 0x00, 0x00, 0x00}
	cmd, payload, err := Decode(BuildSetPartitionTable(table))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if cmd != CmdSetPartitionTable {
		t.Errorf("cmd = 0x%04X, want 0x%04X", cmd, CmdSetPartitionTable)
	}
	if !bytes.Equal(payload, table) {
		t.Errorf("payload = % X, want % X", payload, table)
	}
}
