package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/pedalbridge/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of the Uber zap logger.
// The underlying logger is swapped atomically, so destination changes are
// safe while other goroutines keep logging.
type ZapLogger struct {
	logger atomic.Pointer[zap.Logger]
	level  zap.AtomicLevel

	mu   sync.Mutex // serializes destination changes
	sink io.Closer  // open log file, nil for stderr
}

// NewZapLogger creates a production zap logger writing JSON to stderr.
func NewZapLogger() contracts.Logger {
	return newZapLogger()
}

func newZapLogger() *ZapLogger {
	z := &ZapLogger{level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}
	z.logger.Store(newCore(z.level, zapcore.Lock(os.Stderr)))
	return z
}

// New creates a logger at the given level. A non-empty filePath sends output
// to that file instead of stderr.
func New(level contracts.LogLevel, filePath string) (contracts.Logger, error) {
	z := newZapLogger()
	z.SetLevel(level)
	if filePath == "" {
		return z, nil
	}
	if err := z.useFile(filePath); err != nil {
		return nil, err
	}
	return z, nil
}

// NewNop returns a logger that discards everything.
func NewNop() contracts.Logger {
	z := &ZapLogger{level: zap.NewAtomicLevel()}
	z.logger.Store(zap.NewNop())
	return z
}

func newCore(level zap.AtomicLevel, sink zapcore.WriteSyncer) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// toZapLevel maps contracts levels onto zapcore levels.
func toZapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// useFile points the logger at path and closes the previous file, if any.
func (z *ZapLogger) useFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %q: %w", path, err)
	}
	z.swap(newCore(z.level, zapcore.AddSync(f)), f)
	return nil
}

func (z *ZapLogger) swap(next *zap.Logger, sink io.Closer) {
	z.mu.Lock()
	defer z.mu.Unlock()

	prev := z.logger.Swap(next)
	_ = prev.Sync()
	if z.sink != nil {
		_ = z.sink.Close()
	}
	z.sink = sink
}

// Close flushes the logger and closes the log file, if any.
func (z *ZapLogger) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()

	_ = z.logger.Load().Sync()
	if z.sink == nil {
		return nil
	}
	err := z.sink.Close()
	z.sink = nil
	return err
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.logger.Load().Info(msg, toZap(fields)...)
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.logger.Load().Error(msg, toZap(fields)...)
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.logger.Load().Debug(msg, toZap(fields)...)
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.logger.Load().Warn(msg, toZap(fields)...)
}

// Fatal logs a message at the FATAL level and terminates the application
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.logger.Load().Fatal(msg, toZap(fields)...)
}

// Field returns a new field builder.
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// SetLevel sets the logging level
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(toZapLevel(level))
}

// SetDestination redirects output. FileLog requires a path; on failure the
// current destination is kept.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
	switch dest {
	case contracts.ConsoleLog:
		z.swap(newCore(z.level, zapcore.Lock(os.Stderr)), nil)
	case contracts.FileLog:
		if len(filePath) == 0 || filePath[0] == "" {
			z.Warn("file log destination requested without a path")
			return
		}
		if err := z.useFile(filePath[0]); err != nil {
			z.Error("failed to switch log destination", z.Field().Error("error", err))
		}
	}
}

func toZap(fields []contracts.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		if f, ok := field.(zapField); ok && f.field.Key != "" {
			out = append(out, f.field)
		}
	}
	return out
}

// zapField implements contracts.Field
type zapField struct {
	field zap.Field
}

func (zapField) Bool(key string, val bool) contracts.Field {
	return zapField{zap.Bool(key, val)}
}

func (zapField) Int(key string, val int) contracts.Field {
	return zapField{zap.Int(key, val)}
}

func (zapField) Float64(key string, val float64) contracts.Field {
	return zapField{zap.Float64(key, val)}
}

func (zapField) String(key string, val string) contracts.Field {
	return zapField{zap.String(key, val)}
}

func (zapField) Time(key string, val time.Time) contracts.Field {
	return zapField{zap.Time(key, val)}
}

func (zapField) Duration(key string, val time.Duration) contracts.Field {
	return zapField{zap.Duration(key, val)}
}

func (zapField) Int64(key string, val int64) contracts.Field {
	return zapField{zap.Int64(key, val)}
}

func (zapField) Error(key string, val error) contracts.Field {
	return zapField{zap.NamedError(key, val)}
}

func (zapField) Uint64(key string, val uint64) contracts.Field {
	return zapField{zap.Uint64(key, val)}
}

func (zapField) Uint8(key string, val uint8) contracts.Field {
	return zapField{zap.Uint8(key, val)}
}

func (zapField) Stringer(key string, val interface{ String() string }) contracts.Field {
	return zapField{zap.Stringer(key, val)}
}
