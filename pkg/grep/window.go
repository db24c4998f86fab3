package grep

import (
	"errors"
	"io"
	"os"
)

// window exposes a file one bounded view at a time. A view shorter than
// requested means the file ended early. The returned slice is only valid
// until the next call to view or close.
type window interface {
	view(off int64, n int) ([]byte, error)
	close() error
}

// readAtWindow copies each view into a reusable buffer
type readAtWindow struct {
	f   *os.File
	buf []byte
}

func newReadAtWindow(f *os.File) *readAtWindow {
	return &readAtWindow{f: f}
}

func (w *readAtWindow) view(off int64, n int) ([]byte, error) {
	if cap(w.buf) < n {
		w.buf = make([]byte, n)
	}
	buf := w.buf[:n]
	read, err := w.f.ReadAt(buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}

func (w *readAtWindow) close() error {
	w.buf = nil
	return nil
}
