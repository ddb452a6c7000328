// SPDX-License-Identifier: MIT
package utils

import (
	"sync"

	"mirage/internal/spectrogram"
)

// MockTransport records everything sent to it. Columns are deep-copied so
// later writes by the sender do not show through.
type MockTransport struct {
	mu       sync.Mutex
	Messages []any
	Columns  []spectrogram.Column
	Err      error // returned from Send and Close when set
	Closed   bool
}

// Send stores the data for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if col, ok := data.(spectrogram.Column); ok {
		col.Power = append([]float64(nil), col.Power...)
		m.Columns = append(m.Columns, col)
		data = col
	}
	m.Messages = append(m.Messages, data)
	return m.Err
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return m.Err
}
