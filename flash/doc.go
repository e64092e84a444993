// Package flash orchestrates the device bring-up and firmware flashing
// sequence against an AXP package.
//
// # Overview
//
// Program drives a device through the full sequence:
//   - Handshake with the mask-ROM loader ("romcode")
//   - Stage FDL1 into RAM at its absolute address, handshake with it
//   - Stage FDL2 into RAM at its absolute address
//   - Install the partition table
//   - Stream every CODE image into its named partition
//
// # Basic Usage
//
//	pkg, err := axpkg.Open("firmware.axp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pkg.Close()
//
//	prog := flash.New(device)
//	err = prog.Program(context.Background(), pkg)
//
// # Progress Tracking
//
//	prog := flash.New(device,
//	    flash.WithProgressCallback(func(p flash.Progress) {
//	        fmt.Printf("[%s] %s\n", p.Stage, p.Description)
//	    }),
//	)
//
// # Cancellation
//
// CancelFunc is polled at chunk and image boundaries; there is no
// rollback once a partition has begun streaming.
//
//	ctx, cancel := context.WithCancel(context.Background())
//	prog := flash.New(device, flash.WithCancelFunc(func() bool {
//	    return ctx.Err() != nil
//	}))
//
// # Hardware Independence
//
// This package does not implement transport. New accepts anything
// satisfying wire.Device (read/write with a timeout); USB and serial
// backends live in internal/transport.
package flash
