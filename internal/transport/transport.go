// SPDX-License-Identifier: MIT
package transport

// Transport receives spectrogram columns as they are written. Send is called
// from the analysis path, so implementations must not block for long and
// must not retain data they do not own. Implementations are safe for
// concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}

// Multi fans every message out to several transports. Send returns the
// first error but still delivers to every transport.
type Multi []Transport

// Send implements Transport.
func (m Multi) Send(data any) error {
	var first error
	for _, t := range m {
		if err := t.Send(data); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close implements Transport.
func (m Multi) Close() error {
	var first error
	for _, t := range m {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ Transport = Multi(nil)
