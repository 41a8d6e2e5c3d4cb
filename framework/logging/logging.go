package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/km-arc/go-singleton/framework/singleton"
)

// Config controls the application logger. Audit files are never written
// through this logger; they are append-only and not rotated.
type Config struct {
	Level      string // debug | info | warn | error
	Filename   string // optional rotating log file
	MaxSize    int    // megabytes
	MaxAge     int    // days
	MaxBackups int
}

// Key is the registry slot of the shared application logger.
var Key = singleton.TypeKey((*zap.Logger)(nil))

// New builds a zap logger writing to stderr and, when cfg.Filename is set,
// to a lumberjack-rotated file.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, err
		}
		level = l
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.TimeKey = "time"

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}
	if cfg.Filename != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// Shared returns the process logger held in r, building it from cfg on first
// use. Later calls return the same logger regardless of cfg.
func Shared(r *singleton.Registry, cfg Config) (*zap.Logger, error) {
	return singleton.Get(r, Key, func() (*zap.Logger, error) { return New(cfg) })
}
