// Package logsvc holds the core.Logger implementations.
package logsvc

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/assistant/core"
)

type ZapLogger struct {
	zl *zap.Logger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a zap logger from the log config (level: debug|info|warn|error, format: json|console).
func NewZapLogger(conf core.LogConfig, debug bool) (*ZapLogger, error) {
	level, err := zapcore.ParseLevel(conf.Level)
	if err != nil {
		return nil, errors.Wrap(err, "parsing log level")
	}

	zc := zap.NewProductionConfig()
	if debug {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if conf.Format != "" {
		zc.Encoding = conf.Format
	}

	zl, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return &ZapLogger{zl: zl}, nil
}

// NewZapLoggerFrom wraps an existing zap logger.
func NewZapLoggerFrom(zl *zap.Logger) *ZapLogger {
	return &ZapLogger{zl: zl}
}

func (l *ZapLogger) Zap() *zap.Logger { return l.zl }

func (l *ZapLogger) Sync() error { return l.zl.Sync() }

// fields converts the variadic args: errors, maps of fields, zap fields or anything printable.
func fields(args []interface{}) []zap.Field {
	flds := make([]zap.Field, 0, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
		case zap.Field:
			flds = append(flds, v)
		case error:
			flds = append(flds, zap.Error(v))
		case map[string]interface{}:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				flds = append(flds, zap.Any(k, v[k]))
			}
		default:
			flds = append(flds, zap.Any(fmt.Sprintf("arg%d", i), v))
		}
	}
	return flds
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) { l.zl.Debug(msg, fields(args)...) }
func (l *ZapLogger) Info(msg string, args ...interface{})  { l.zl.Info(msg, fields(args)...) }
func (l *ZapLogger) Warn(msg string, args ...interface{})  { l.zl.Warn(msg, fields(args)...) }
func (l *ZapLogger) Error(msg string, args ...interface{}) { l.zl.Error(msg, fields(args)...) }
func (l *ZapLogger) Fatal(msg string, args ...interface{}) { l.zl.Fatal(msg, fields(args)...) }
