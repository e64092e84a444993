package flash

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/axflash/axdl-go/axpkg"
	"github.com/axflash/axdl-go/wire"
)

const dryRunManifest = `<?xml version="1.0" encoding="UTF-8"?>
<Config>
  <Project alias="t" name="t" version="t">
    <FDLLevel>2</FDLLevel>
    <Partitions strategy="1" unit="2">
      <Partition gap="0" id="spl" size="100" />
    </Partitions>
    <ImgList>
      <Img flag="0" name="FDL1" select="0">
        <ID>FDL1</ID><Type>FDL1</Type>
        <Block><Base>0x1000</Base><Size>0x0</Size></Block>
        <File>fdl1.bin</File><Auth algo="0" /><Description>d</Description>
      </Img>
      <Img flag="0" name="FDL2" select="0">
        <ID>FDL2</ID><Type>FDL2</Type>
        <Block><Base>0x200000000</Base><Size>0x0</Size></Block>
        <File>fdl2.bin</File><Auth algo="0" /><Description>d</Description>
      </Img>
      <Img flag="0" name="APP" select="0">
        <ID>APP</ID><Type>CODE</Type>
        <Block id="spl"><Base>0x0</Base><Size>0x0</Size></Block>
        <File>app.bin</File><Auth algo="0" /><Description>d</Description>
      </Img>
    </ImgList>
  </Project>
</Config>
`

func buildDryRunPackage(t *testing.T) *axpkg.Package {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := map[string]string{
		"manifest.xml": dryRunManifest,
		"fdl1.bin":     "AAAAA",
		"fdl2.bin":     "BBB",
		"app.bin":      "CCCC",
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}

	pkg, err := axpkg.ParseReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	return pkg
}

// scriptedDevice plays back scripted reads while recording every write,
// for exercising Programmer.Program without real transport.
type scriptedDevice struct {
	reads  [][]byte
	writes [][]byte
	n      int
}

func (d *scriptedDevice) Write(buf []byte, _ time.Duration) (int, error) {
	d.writes = append(d.writes, append([]byte(nil), buf...))
	return len(buf), nil
}

func (d *scriptedDevice) Read(buf []byte, _ time.Duration) (int, error) {
	if d.n >= len(d.reads) {
		return 0, errors.New("scriptedDevice: no more scripted reads")
	}
	next := d.reads[d.n]
	d.n++
	return copy(buf, next), nil
}

func ackFrame() []byte { return wire.Encode(wire.ResponseACK, nil) }

func bannerFrame(banner string) []byte {
	return wire.Encode(wire.ResponseACK, []byte(banner))
}

func scriptedAcks(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = ackFrame()
	}
	return out
}

func TestProgramDryRunFrameSequence(t *testing.T) {
	pkg := buildDryRunPackage(t)
	defer pkg.Close()

	var reads [][]byte
	reads = append(reads, bannerFrame("romcode v1.0"))
	reads = append(reads, scriptedAcks(6)...) // FDL1: start_ram, start_partition, start_block, chunk ack, end_partition, end_ram
	reads = append(reads, bannerFrame("fdl1 v1.0"))
	reads = append(reads, scriptedAcks(6)...) // FDL2
	reads = append(reads, scriptedAcks(1)...) // set_partition_table
	reads = append(reads, scriptedAcks(4)...) // APP: start_partition_id, start_block, chunk ack, end_partition

	dev := &scriptedDevice{reads: reads}
	prog := New(dev)

	if err := prog.Program(context.Background(), pkg); err != nil {
		t.Fatalf("Program() error = %v", err)
	}

	if len(dev.writes) != 19 {
		t.Fatalf("len(writes) = %d, want 19", len(dev.writes))
	}

	wantCmd := map[int]uint16{
		1:  wire.CmdStartRAMDownload,
		2:  wire.CmdStartPartition,
		3:  wire.CmdStartBlock,
		5:  wire.CmdEndPartition,
		6:  wire.CmdEndRAMDownload,
		8:  wire.CmdStartRAMDownload,
		9:  wire.CmdStartPartition,
		10: wire.CmdStartBlock,
		12: wire.CmdEndPartition,
		13: wire.CmdEndRAMDownload,
		14: wire.CmdSetPartitionTable,
		15: wire.CmdStartPartition,
		16: wire.CmdStartBlock,
		18: wire.CmdEndPartition,
	}
	for i, want := range wantCmd {
		cmd, _, err := wire.Decode(dev.writes[i])
		if err != nil {
			t.Fatalf("writes[%d]: Decode() error = %v", i, err)
		}
		if cmd != want {
			t.Errorf("writes[%d] cmd = 0x%04X, want 0x%04X", i, cmd, want)
		}
	}

	// Raw probe and raw chunk writes are unframed.
	if string(dev.writes[0]) != string(wire.HandshakeProbe[:]) {
		t.Errorf("writes[0] = % X, want handshake probe", dev.writes[0])
	}
	if string(dev.writes[4]) != "AAAAA" {
		t.Errorf("writes[4] = %q, want raw FDL1 chunk", dev.writes[4])
	}
	if string(dev.writes[11]) != "BBB" {
		t.Errorf("writes[11] = %q, want raw FDL2 chunk", dev.writes[11])
	}
	if string(dev.writes[17]) != "CCCC" {
		t.Errorf("writes[17] = %q, want raw APP chunk", dev.writes[17])
	}
}

func TestProgramCancelMidImage(t *testing.T) {
	pkg := buildDryRunPackage(t)
	defer pkg.Close()

	reads := [][]byte{bannerFrame("romcode v1.0")}
	reads = append(reads, scriptedAcks(2)...) // start_ram_download, start_partition ack
	dev := &scriptedDevice{reads: reads}

	prog := New(dev, WithCancelFunc(func() bool {
		return true // cancel at the first opportunity: inside FDL1's writeImage loop
	}))

	err := prog.Program(context.Background(), pkg)
	if err == nil {
		t.Fatal("Program() error = nil, want cancellation error")
	}
	var want *wire.UserCancelledError
	if !errors.As(err, &want) {
		t.Errorf("error type = %T, want *wire.UserCancelledError", err)
	}
}

func TestProgramMissingFDL1(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("manifest.xml")
	_, _ = w.Write([]byte(`<Config><Project alias="t" name="t" version="t">
<FDLLevel>1</FDLLevel><Partitions strategy="0" unit="0"></Partitions><ImgList></ImgList>
</Project></Config>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}

	pkg, err := axpkg.ParseReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	defer pkg.Close()

	dev := &scriptedDevice{reads: [][]byte{bannerFrame("romcode v1.0")}}
	prog := New(dev)

	err = prog.Program(context.Background(), pkg)
	var want *ImageNotFoundError
	if !errors.As(err, &want) {
		t.Fatalf("error type = %T, want *ImageNotFoundError", err)
	}
	if want.Name != "FDL1" {
		t.Errorf("Name = %q, want FDL1", want.Name)
	}
}

func TestNewPanicsOnNilDevice(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New(nil) did not panic")
		}
	}()
	New(nil)
}
