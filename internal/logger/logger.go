package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	L       *zap.Logger
	S       *zap.SugaredLogger
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logFile *os.File
	nop     = zap.NewNop().Sugar()
)

// Options selects the log file and verbosity.
type Options struct {
	Debug bool
	// Path overrides the resolved log file location.
	Path string
	// Append keeps earlier runs in the file instead of truncating it.
	Append bool
}

// Init opens the log file and installs the global logger. Without a Path,
// logs go to qbuffer.log in the config directory.
func Init(opts Options) error {
	logPath := opts.Path
	if logPath == "" {
		var err error
		if logPath, err = defaultPath(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if opts.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(logPath, flags, 0o644)
	if err != nil {
		return err
	}
	logFile = f

	SetDebug(opts.Debug)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(f), level)
	Use(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)))

	Info("logger initialized", "path", logPath, "debug", opts.Debug, "append", opts.Append)
	return nil
}

// Use installs an already built logger, mostly for tests. nil installs a
// no-op logger.
func Use(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	L = l
	S = l.Sugar()
}

// SetDebug switches the file logger between debug and info level while it
// runs.
func SetDebug(on bool) {
	if on {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

func DebugEnabled() bool { return level.Enabled(zapcore.DebugLevel) }

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.FunctionKey = zapcore.OmitKey
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// Close flushes and closes the log file.
func Close() {
	if L != nil {
		_ = L.Sync()
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func defaultPath() (string, error) {
	if v := os.Getenv("QBUFFER_LOG_FILE"); v != "" {
		return v, nil
	}
	if v := os.Getenv("QBUFFER_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qbuffer.log"), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qbuffer", "qbuffer.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qbuffer", "qbuffer.log"), nil
}

func sugar() *zap.SugaredLogger {
	if S == nil {
		return nop
	}
	return S
}

func Debug(msg string, kv ...any) { sugar().Debugw(msg, kv...) }
func Info(msg string, kv ...any)  { sugar().Infow(msg, kv...) }
func Warn(msg string, kv ...any)  { sugar().Warnw(msg, kv...) }
func Error(msg string, kv ...any) { sugar().Errorw(msg, kv...) }
