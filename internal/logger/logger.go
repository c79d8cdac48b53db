package logger

import "go.uber.org/zap"

// Log is the process-wide logger. It is a no-op until Initialize is called.
var Log = zap.NewNop()

// Initialize builds production logger with given log level and replaces Log.
func Initialize(level string) error {
	loggerLvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = loggerLvl

	logger, err := loggerCfg.Build()
	if err != nil {
		return err
	}

	Log = logger

	return nil
}
