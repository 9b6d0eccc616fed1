package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogOpts struct {
	Verbose bool
	// Encoding selects "console" (default) or "json" output.
	Encoding string
}

func (opts LogOpts) NewLogger() *zap.Logger {
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	switch opts.Encoding {
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !opts.Verbose {
			// keep terse output for normal runs
			cfg.EncodeTime = nil
			cfg.EncodeCaller = nil
		}
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

// Setup builds the logger and installs it as the process-wide default so that
// packages can use zap.L() and zap.S() without threading a logger through.
func Setup(opts LogOpts) *zap.Logger {
	logger := opts.NewLogger()
	zap.ReplaceGlobals(logger)
	return logger
}
