package flash

import "github.com/axflash/axdl-go/wire"

// Config holds the programmer configuration.
type Config struct {
	// ProgressCallback is called during flashing to report progress (optional).
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional).
	Logger Logger

	// CancelFunc is polled at chunk and image boundaries (optional). A nil
	// CancelFunc never cancels.
	CancelFunc CancelFunc

	// ExcludeRootfs skips the CODE image named "ROOTFS" when set.
	ExcludeRootfs bool

	// ProgressEvery is how many chunks elapse between progress callbacks
	// while streaming an image.
	ProgressEvery int
}

func defaultConfig() Config {
	return Config{
		ProgressEvery: wire.DefaultProgressEvery,
	}
}

// Option is a functional option for configuring the Programmer.
type Option func(*Config)

// WithProgressCallback sets a callback invoked as flashing proceeds.
//
// Example:
//
//	prog := flash.New(device,
//	    flash.WithProgressCallback(func(p flash.Progress) {
//	        fmt.Println(p.Description)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the programmer's internal operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithCancelFunc sets the function polled to detect caller-requested
// cancellation.
func WithCancelFunc(fn CancelFunc) Option {
	return func(c *Config) {
		c.CancelFunc = fn
	}
}

// WithExcludeRootfs skips the ROOTFS CODE image when set.
func WithExcludeRootfs(exclude bool) Option {
	return func(c *Config) {
		c.ExcludeRootfs = exclude
	}
}

// WithProgressEvery sets how many streamed chunks elapse between progress
// callbacks.
func WithProgressEvery(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ProgressEvery = n
		}
	}
}
