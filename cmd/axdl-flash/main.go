// Command axdl-flash drives a single device through the full firmware
// flashing sequence described by an AXP package.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/axflash/axdl-go/axpkg"
	"github.com/axflash/axdl-go/flash"
	"github.com/axflash/axdl-go/internal/obslog"
	"github.com/axflash/axdl-go/internal/obsmetrics"
	"github.com/axflash/axdl-go/internal/transport"
	"github.com/axflash/axdl-go/wire"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, showVersion, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if showVersion {
		fmt.Printf("axdl-flash %s (commit %s, built %s)\n", version, commit, date)
		return 0
	}

	logger := setupLogger(cfg.logFormat, cfg.logLevel)

	if cfg.metricsAddr != "" {
		srv := obsmetrics.StartHTTP(cfg.metricsAddr)
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	pkg, err := axpkg.Open(cfg.file)
	if err != nil {
		logger.Error("package_open_error", "error", err)
		return 1
	}
	defer func() { _ = pkg.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t, err := selectTransport(cfg.transport)
	if err != nil {
		logger.Error("transport_error", "error", err)
		return 1
	}

	dev, err := openDevice(ctx, t, cfg)
	if err != nil {
		logger.Error("device_open_error", "error", err)
		return deviceErrorExitCode(err)
	}
	defer func() { _ = dev.Close() }()

	cancelled := false
	opts := []flash.Option{
		flash.WithLogger(obslog.FlashLogger{Logger: logger}),
		flash.WithProgressCallback(newProgressPrinter(os.Stderr)),
		flash.WithExcludeRootfs(cfg.excludeRootfs),
		flash.WithCancelFunc(func() bool {
			if ctx.Err() != nil {
				cancelled = true
			}
			return cancelled
		}),
	}
	if cfg.progressEvery > 0 {
		opts = append(opts, flash.WithProgressEvery(cfg.progressEvery))
	}

	prog := flash.New(deviceAdapter{dev}, opts...)

	obsmetrics.SetReadinessFunc(func() bool { return dev != nil })

	start := time.Now()
	err = prog.Program(ctx, pkg)
	obsmetrics.RunDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error("flash_failed", "error", err, "duration", time.Since(start))
		obsmetrics.Errors.WithLabelValues(fmt.Sprintf("%T", err)).Inc()
		return 1
	}

	logger.Info("flash_complete", "duration", time.Since(start))
	return 0
}

func setupLogger(format, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	l := obslog.New(format, lvl, os.Stderr).With("app", "axdl-flash")
	obslog.Set(l)
	return l
}

func selectTransport(kind string) (transport.Transport, error) {
	switch kind {
	case "usb":
		return transport.USBTransport{}, nil
	case "serial":
		return transport.SerialTransport{}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}

func openDevice(ctx context.Context, t transport.Transport, cfg *appConfig) (transport.Device, error) {
	if !cfg.waitForDevice {
		return transport.OpenFirst(t)
	}
	timeout := time.Duration(cfg.waitForDeviceSecs) * time.Second
	return transport.WaitForDevice(ctx, t, cfg.pollInterval, timeout)
}

func deviceErrorExitCode(err error) int {
	if err == transport.ErrDeviceNotFound {
		return 3
	}
	return 1
}

// deviceAdapter adapts transport.Device (which also exposes Close) to
// wire.Device, the narrower interface the command layer drives.
type deviceAdapter struct {
	transport.Device
}

var _ wire.Device = deviceAdapter{}
