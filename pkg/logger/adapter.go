package logger

import (
	"go.uber.org/zap"
)

// LoggerAdapter routes categorized events to a MultiLogger when one is
// configured and to a single console logger otherwise. The single logger
// always receives events too, so interactive runs keep their output.
type LoggerAdapter struct {
	multiLogger  *MultiLogger
	singleLogger *zap.Logger
}

// NewLoggerAdapter creates an adapter. multiLogger may be nil.
func NewLoggerAdapter(single *zap.Logger, multiLogger *MultiLogger) *LoggerAdapter {
	if single == nil {
		single = zap.NewNop()
	}
	return &LoggerAdapter{
		multiLogger:  multiLogger,
		singleLogger: single,
	}
}

// NewNopAdapter returns an adapter that discards everything
func NewNopAdapter() *LoggerAdapter {
	return NewLoggerAdapter(zap.NewNop(), nil)
}

// Logger returns the single console logger
func (la *LoggerAdapter) Logger() *zap.Logger {
	return la.singleLogger
}

// LogPipelineEvent logs a lifecycle event at debug on the console and info
// in the pipeline file
func (la *LoggerAdapter) LogPipelineEvent(event string, fields ...zap.Field) {
	la.singleLogger.Debug(event, fields...)
	if la.multiLogger != nil {
		la.multiLogger.LogPipelineEvent(event, fields...)
	}
}

// LogError logs an error to the console and the error file
func (la *LoggerAdapter) LogError(msg string, fields ...zap.Field) {
	la.singleLogger.Error(msg, fields...)
	if la.multiLogger != nil {
		la.multiLogger.LogAppError(msg, fields...)
	}
}

// Sync flushes all loggers
func (la *LoggerAdapter) Sync() error {
	if la.multiLogger != nil {
		if err := la.multiLogger.Sync(); err != nil {
			return err
		}
	}
	return la.singleLogger.Sync()
}

// GetMultiLogger returns the underlying multi-logger, nil when not configured
func (la *LoggerAdapter) GetMultiLogger() *MultiLogger {
	return la.multiLogger
}
