package flash

// Stage identifies where in the flashing sequence a progress report was
// emitted.
type Stage string

// Stages of the flashing sequence, in the order they execute.
const (
	StagePkgLoad           Stage = "pkg_load"
	StageAwaitRom          Stage = "await_rom"
	StageSendFDL1          Stage = "send_fdl1"
	StageAwaitFDL1         Stage = "await_fdl1"
	StageSendFDL2          Stage = "send_fdl2"
	StageSetPartitionTable Stage = "set_partition_table"
	StageSendCodeImage     Stage = "send_code_image"
	StageDone              Stage = "done"
)

// Progress reports forward momentum through the flashing sequence.
type Progress struct {
	// Stage is the sequence step this report belongs to.
	Stage Stage

	// Description is a short human-readable summary of what is happening.
	Description string

	// Fraction is the stage's completion fraction (0.0 to 1.0), or nil
	// when the stage has no meaningful fractional progress (handshakes,
	// table writes).
	Fraction *float64
}

// ProgressCallback is called periodically during Program to report
// progress. Implementations should return quickly to avoid blocking the
// flashing operation.
//
// Example:
//
//	prog := flash.New(device,
//	    flash.WithProgressCallback(func(p flash.Progress) {
//	        fmt.Printf("[%s] %s\n", p.Stage, p.Description)
//	    }),
//	)
type ProgressCallback func(Progress)

// CancelFunc is polled at chunk and image boundaries; once it returns
// true, Program aborts with UserCancelledError.
type CancelFunc func() bool

// Logger is an optional logging interface that can be provided to the
// programmer. This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	prog := flash.New(device, flash.WithLogger(&StdLogger{}))
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
