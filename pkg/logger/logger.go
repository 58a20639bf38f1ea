package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled logger used across the service, backed by zap.
// - Debug/Info/Warn/Error/Fatal variants and Init(level)
// - optional rotated JSON file output via InitWithFile

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar  = newSugar(zapcore.AddSync(os.Stdout), nil)
	closer io.Closer
)

var encoderCfg = zapcore.EncoderConfig{
	TimeKey:      "time",
	LevelKey:     "level",
	MessageKey:   "message",
	CallerKey:    "caller",
	EncodeTime:   zapcore.ISO8601TimeEncoder,
	EncodeLevel:  zapcore.CapitalLevelEncoder,
	EncodeCaller: zapcore.ShortCallerEncoder,
}

func newSugar(console zapcore.WriteSyncer, file zapcore.WriteSyncer) *zap.SugaredLogger {
	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(console), level)}
	if file != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), file, level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	level.SetLevel(parseLevel(l))
}

// InitWithFile sets the level and additionally writes JSON lines to a
// rotated file at path. An empty path behaves like Init.
func InitWithFile(l, path string) {
	Init(l)
	if path == "" {
		return
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     7,
		Compress:   true,
	}
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	closer = lj
	sugar = newSugar(zapcore.AddSync(os.Stdout), zapcore.AddSync(lj))
}

// SetOutput redirects console output to w. Used by tests and by the CLI,
// which logs to stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	sugar = newSugar(zapcore.AddSync(w), nil)
}

// Sync flushes buffered entries.
func Sync() {
	_ = current().Sync()
}

func parseLevel(l string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Zap exposes the underlying logger for middleware that wants structured
// fields. The caller skip used by the package helpers is undone so the
// reported caller is the code calling Zap().
func Zap() *zap.Logger {
	return current().Desugar().WithOptions(zap.AddCallerSkip(-1))
}

func Debugf(format string, v ...interface{}) { current().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { current().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { current().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { current().Errorf(format, v...) }

func Fatalf(format string, v ...interface{}) {
	current().Errorf(format, v...)
	Sync()
	os.Exit(1)
}

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) {
	current().Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	switch level.Level() {
	case zapcore.DebugLevel:
		return "debug"
	case zapcore.WarnLevel:
		return "warn"
	case zapcore.ErrorLevel:
		return "error"
	case zapcore.FatalLevel:
		return "fatal"
	}
	return "info"
}
