//go:build windows

// Package stderr is a no-op on Windows, where the audio backends do not
// write to the process stderr.
package stderr

// Redirect does nothing on Windows.
func Redirect(_ func(line string)) (restore func(), err error) {
	return func() {}, nil
}
