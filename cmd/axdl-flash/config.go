package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type appConfig struct {
	file               string
	excludeRootfs      bool
	waitForDevice      bool
	waitForDeviceSecs  uint64
	transport          string
	logFormat          string
	logLevel           string
	metricsAddr        string
	pollInterval       time.Duration
	progressEvery      int
}

func parseFlags(args []string) (*appConfig, bool, error) {
	fs := flag.NewFlagSet("axdl-flash", flag.ContinueOnError)
	cfg := &appConfig{}

	file := fs.String("file", "", "Path to the AXP firmware package (required)")
	excludeRootfs := fs.Bool("exclude-rootfs", false, "Skip the ROOTFS partition image")
	waitForDevice := fs.Bool("wait-for-device", false, "Poll for the device to appear instead of failing immediately")
	waitForDeviceSecs := fs.Uint64("wait-for-device-timeout-secs", 0, "Give up waiting after this many seconds (0 = wait indefinitely)")
	transportKind := fs.String("transport", "usb", "Transport backend: usb|serial")
	logFormat := fs.String("log-format", "text", "Log format: text|json")
	logLevel := fs.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := fs.String("metrics-addr", "", "Metrics HTTP listen address (e.g. :9100); empty disables")
	pollInterval := fs.Duration("poll-interval", 500*time.Millisecond, "Device discovery poll interval when --wait-for-device is set")
	progressEvery := fs.Int("progress-every", 0, "Report progress every N chunks (0 = library default)")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	setFlags := map[string]struct{}{}
	fs.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })

	cfg.file = *file
	cfg.excludeRootfs = *excludeRootfs
	cfg.waitForDevice = *waitForDevice
	cfg.waitForDeviceSecs = *waitForDeviceSecs
	cfg.transport = *transportKind
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	cfg.pollInterval = *pollInterval
	cfg.progressEvery = *progressEvery

	if *showVersion {
		return cfg, true, nil
	}

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		return nil, false, err
	}
	if err := cfg.validate(); err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

// validate checks cross-field invariants before a run starts; it does not
// touch the filesystem or open any device.
func (c *appConfig) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.file == "" {
		return errors.New("-file is required")
	}
	switch c.transport {
	case "usb", "serial":
	default:
		return fmt.Errorf("invalid -transport: %s", c.transport)
	}
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid -log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid -log-level: %s", c.logLevel)
	}
	if c.pollInterval <= 0 {
		return errors.New("-poll-interval must be > 0")
	}
	if c.progressEvery < 0 {
		return errors.New("-progress-every must be >= 0")
	}
	return nil
}

// applyEnvOverrides maps AXDL_FLASH_* environment variables onto cfg,
// unless the corresponding flag was explicitly set (flags win).
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }
	var firstErr error

	if _, ok := set["file"]; !ok {
		if v, ok := get("AXDL_FLASH_FILE"); ok && v != "" {
			c.file = v
		}
	}
	if _, ok := set["transport"]; !ok {
		if v, ok := get("AXDL_FLASH_TRANSPORT"); ok && v != "" {
			c.transport = v
		}
	}
	if _, ok := set["log-format"]; !ok {
		if v, ok := get("AXDL_FLASH_LOG_FORMAT"); ok && v != "" {
			c.logFormat = v
		}
	}
	if _, ok := set["log-level"]; !ok {
		if v, ok := get("AXDL_FLASH_LOG_LEVEL"); ok && v != "" {
			c.logLevel = v
		}
	}
	if _, ok := set["metrics-addr"]; !ok {
		if v, ok := get("AXDL_FLASH_METRICS_ADDR"); ok {
			c.metricsAddr = v
		}
	}
	if _, ok := set["exclude-rootfs"]; !ok {
		if v, ok := get("AXDL_FLASH_EXCLUDE_ROOTFS"); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				c.excludeRootfs = true
			case "0", "false", "no", "off":
				c.excludeRootfs = false
			}
		}
	}
	if _, ok := set["wait-for-device"]; !ok {
		if v, ok := get("AXDL_FLASH_WAIT_FOR_DEVICE"); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				c.waitForDevice = true
			case "0", "false", "no", "off":
				c.waitForDevice = false
			}
		}
	}
	if _, ok := set["wait-for-device-timeout-secs"]; !ok {
		if v, ok := get("AXDL_FLASH_WAIT_FOR_DEVICE_TIMEOUT_SECS"); ok && v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("invalid AXDL_FLASH_WAIT_FOR_DEVICE_TIMEOUT_SECS: %w", err)
				}
			} else {
				c.waitForDeviceSecs = n
			}
		}
	}
	return firstErr
}
