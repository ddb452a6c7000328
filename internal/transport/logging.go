// SPDX-License-Identifier: MIT
package transport

import (
	"sync/atomic"

	applog "mirage/internal/log"
	"mirage/internal/spectrogram"

	"gonum.org/v1/gonum/floats"
)

var logger = applog.New("transport")

// LoggingTransport writes a one-line digest of every column at debug level.
type LoggingTransport struct {
	sent atomic.Int64
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	logger.Debugf("using LoggingTransport")
	return &LoggingTransport{}
}

// Send implements Transport.
func (lt *LoggingTransport) Send(data any) error {
	lt.sent.Add(1)
	if !applog.Enabled(applog.LevelDebug) {
		return nil
	}
	switch v := data.(type) {
	case spectrogram.Column:
		if len(v.Power) == 0 {
			logger.Debugf("column %d: empty", v.Hop)
			return nil
		}
		logger.Debugf("column %d: peak bin %d, total power %.3g",
			v.Hop, floats.MaxIdx(v.Power), floats.Sum(v.Power))
	default:
		logger.Debugf("received %T", data)
	}
	return nil
}

// Sent returns how many messages have been received.
func (lt *LoggingTransport) Sent() int64 {
	return lt.sent.Load()
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	logger.Debugf("LoggingTransport closed after %d messages", lt.sent.Load())
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
