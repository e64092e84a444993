package flash

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/axflash/axdl-go/axpkg"
	"github.com/axflash/axdl-go/internal/obsmetrics"
	"github.com/axflash/axdl-go/wire"
)

// Programmer drives a single device through the full flashing sequence:
// handshake with the mask-ROM loader, stage FDL1 and FDL2 into RAM,
// install the partition table, then stream every CODE image into its
// named partition.
//
// Programmer holds no locks: its configuration is read-only after New, but
// every Program call drives the same device, so calls on one instance must
// not overlap.
type Programmer struct {
	commands *wire.CommandLayer
	config   Config
}

// New creates a Programmer bound to device.
//
// Example:
//
//	prog := flash.New(device,
//	    flash.WithProgressCallback(progressFunc),
//	    flash.WithCancelFunc(func() bool { return ctx.Err() != nil }),
//	)
func New(device wire.Device, opts ...Option) *Programmer {
	if device == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Programmer{
		commands: wire.NewCommandLayer(device),
		config:   cfg,
	}
}

// Program runs the complete flashing sequence against an already-opened
// package: handshake with romcode, stage FDL1, handshake with fdl1, stage
// FDL2, install the partition table, then stream every CODE image.
//
// Errors abort immediately; there is no rollback of partially written
// partitions.
func (p *Programmer) Program(ctx context.Context, pkg *axpkg.Package) error {
	if pkg == nil || pkg.Project == nil {
		return &wire.PackageManifestError{Detail: "no package loaded"}
	}

	p.reportProgress(StagePkgLoad, "Loading the AXP image configuration", nil)
	if err := ctx.Err(); err != nil {
		return err
	}

	p.reportProgress(StageAwaitRom, "Handshaking with the device", nil)
	obsmetrics.HandshakeAttempts.WithLabelValues("romcode").Inc()
	if err := p.commands.Handshake("romcode", wire.HandshakeTimeout); err != nil {
		return err
	}

	p.reportProgress(StageSendFDL1, "Sending FDL1", nil)
	if err := p.sendFDLImage(ctx, pkg, "FDL1", false, StageSendFDL1); err != nil {
		return fmt.Errorf("send FDL1: %w", err)
	}
	obsmetrics.ImagesCompleted.WithLabelValues("FDL1").Inc()

	p.reportProgress(StageAwaitFDL1, "Handshaking with FDL1", nil)
	obsmetrics.HandshakeAttempts.WithLabelValues("fdl1").Inc()
	if err := p.commands.Handshake("fdl1", wire.HandshakeTimeout); err != nil {
		return err
	}

	p.reportProgress(StageSendFDL2, "Sending FDL2", nil)
	if err := p.sendFDLImage(ctx, pkg, "FDL2", true, StageSendFDL2); err != nil {
		return fmt.Errorf("send FDL2: %w", err)
	}
	obsmetrics.ImagesCompleted.WithLabelValues("FDL2").Inc()

	p.reportProgress(StageSetPartitionTable, "Writing the partition table", nil)
	table, err := pkg.Project.PartitionTable.Serialize()
	if err != nil {
		return err
	}
	if err := p.commands.SetPartitionTable(table, wire.ControlTimeout); err != nil {
		return err
	}

	for _, img := range pkg.Project.Images {
		if img.Type != axpkg.ImageCode {
			continue
		}
		if p.config.ExcludeRootfs && img.Name == "ROOTFS" {
			continue
		}

		if err := p.checkCancel(); err != nil {
			return err
		}

		p.reportProgress(StageSendCodeImage, "Sending "+img.Name, nil)
		if err := p.sendCodeImage(ctx, pkg, img); err != nil {
			return fmt.Errorf("send code image %s: %w", img.Name, err)
		}
		obsmetrics.ImagesCompleted.WithLabelValues("CODE").Inc()
	}

	p.reportProgress(StageDone, "Flashing complete", nil)
	return nil
}

// sendFDLImage stages an absolute-addressed FDL image into RAM: it wraps
// the image in a RAM-download session, announces its address and size,
// streams it in chunks, then closes the session.
func (p *Programmer) sendFDLImage(ctx context.Context, pkg *axpkg.Package, name string, use64 bool, stage Stage) error {
	img, ok := pkg.Project.ImageByName(name)
	if !ok {
		return &ImageNotFoundError{Name: name}
	}

	block, ok := img.Block.(axpkg.AbsoluteBlock)
	if !ok {
		return &UnexpectedBlockError{Image: name, Want: "absolute"}
	}

	size, err := pkg.ImageSize(img)
	if err != nil {
		return err
	}

	if err := p.commands.StartRAMDownload(wire.ControlTimeout); err != nil {
		return err
	}

	if use64 {
		if err := p.commands.StartPartitionAbsolute64(uint64(block), size, wire.ControlTimeout); err != nil {
			return err
		}
	} else {
		if uint64(block) > math.MaxUint32 || size > math.MaxUint32 {
			return &wire.UnsupportedError{Feature: name + " exceeds 32-bit addressing"}
		}
		if err := p.commands.StartPartitionAbsolute32(uint32(block), uint32(size), wire.ControlTimeout); err != nil {
			return err
		}
	}

	if _, err := p.writeImage(ctx, pkg, img, wire.ImageClassFDL, stage); err != nil {
		return err
	}

	if err := p.commands.EndPartition(wire.ImageClassFDL.EndPartitionTimeout()); err != nil {
		return err
	}
	return p.commands.EndRAMDownload(wire.ControlTimeout)
}

// sendCodeImage streams one CODE image into its named flash partition.
func (p *Programmer) sendCodeImage(ctx context.Context, pkg *axpkg.Package, img axpkg.Image) error {
	block, ok := img.Block.(axpkg.PartitionBlock)
	if !ok {
		return &UnexpectedBlockError{Image: img.Name, Want: "partition"}
	}

	size, err := pkg.ImageSize(img)
	if err != nil {
		return err
	}

	if err := p.commands.StartPartitionID(string(block), size, wire.ControlTimeout); err != nil {
		return err
	}

	if _, err := p.writeImage(ctx, pkg, img, wire.ImageClassCode, StageSendCodeImage); err != nil {
		return err
	}

	return p.commands.EndPartition(wire.ImageClassCode.EndPartitionTimeout())
}

// writeImage streams img's file in chunks sized for class, checking for
// cancellation before each chunk and reporting progress every
// config.ProgressEvery chunks.
func (p *Programmer) writeImage(ctx context.Context, pkg *axpkg.Package, img axpkg.Image, class wire.ImageClass, stage Stage) (int64, error) {
	rc, err := pkg.OpenImage(img)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	total, err := pkg.ImageSize(img)
	if err != nil {
		return 0, err
	}

	buf := make([]byte, class.ChunkSize())
	var written int64
	var chunks int

	for {
		if err := p.checkCancel(); err != nil {
			return written, err
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, rerr := readChunk(rc, buf)
		if n == 0 {
			break
		}

		if err := p.commands.WriteChunk(buf[:n], wire.ChunkTimeout); err != nil {
			return written, err
		}
		written += int64(n)
		chunks++
		obsmetrics.BytesWritten.Add(float64(n))
		obsmetrics.ChunksWritten.Inc()

		if chunks%p.config.ProgressEvery == 0 {
			p.reportProgress(stage, "writing "+img.Name, fractionOf(written, total))
		}

		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, &wire.IOError{Context: "reading image " + img.Name, Cause: rerr}
		}
	}

	return written, nil
}

// readChunk fills buf as much as possible, treating a short final read as
// a successful chunk followed by io.EOF rather than an error.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.ErrUnexpectedEOF {
		return n, io.EOF
	}
	return n, err
}

func fractionOf(written int64, total uint64) *float64 {
	if total == 0 {
		return nil
	}
	f := float64(written) / float64(total)
	return &f
}

func (p *Programmer) checkCancel() error {
	if p.config.CancelFunc != nil && p.config.CancelFunc() {
		return &wire.UserCancelledError{}
	}
	return nil
}

func (p *Programmer) reportProgress(stage Stage, description string, fraction *float64) {
	if p.config.Logger != nil {
		p.config.Logger.Debug("progress", "stage", string(stage), "description", description)
	}
	if fraction != nil {
		obsmetrics.StageProgress.WithLabelValues(string(stage)).Set(*fraction)
	}
	if p.config.ProgressCallback != nil {
		p.config.ProgressCallback(Progress{Stage: stage, Description: description, Fraction: fraction})
	}
}
