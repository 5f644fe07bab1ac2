package logutil

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLogFile = "pack_manager.log"
	maxSizeMB      = 10
	maxArchives    = 3
	maxAgeDays     = 7
)

// Setup builds the process logger. With file logging enabled, debug output
// goes to a rolling file (10 MB, 3 archives); otherwise info and above go to
// stderr.
func Setup(enableFileLogging bool, filePath string) *zap.SugaredLogger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
		EncodeName:    zapcore.FullNameEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encCfg)

	var core zapcore.Core
	if enableFileLogging {
		if filePath == "" {
			filePath = DefaultLogFile
		}
		ws := zapcore.AddSync(newRotatingWriter(filePath))
		core = zapcore.NewCore(encoder, ws, zapcore.DebugLevel)
	} else {
		core = zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapcore.InfoLevel)
	}
	return zap.New(core, zap.AddCaller()).Sugar()
}

func newRotatingWriter(filePath string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    maxSizeMB,
		MaxBackups: maxArchives,
		MaxAge:     maxAgeDays,
	}
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync(log *zap.SugaredLogger) {
	if log != nil {
		_ = log.Sync()
	}
}

// RedactKey masks a secret, leaving first/last 4 chars: xxxx...yyyy
func RedactKey(k string) string {
	if len(k) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s...%s", k[:4], k[len(k)-4:])
}
