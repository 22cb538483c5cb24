//go:build !windows

// Package stderr captures output that C audio libraries (ALSA, PulseAudio)
// write straight to file descriptor 2, bypassing os.Stderr.
package stderr

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Redirect points file descriptor 2 at a pipe and hands every non-empty
// line written to it to fn. The returned restore function puts the
// original descriptor back and waits until every captured line has been
// delivered. fn must not write to stderr.
func Redirect(fn func(line string)) (restore func(), err error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	fd := int(os.Stderr.Fd())
	orig, err := unix.Dup(fd)
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := unix.Dup2(int(w.Fd()), fd); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				fn(line)
			}
		}
	}()

	restore = func() {
		_ = unix.Dup2(orig, fd)
		_ = unix.Close(orig)
		w.Close()
		<-done
		r.Close()
	}
	return restore, nil
}
