//go:build linux || darwin || freebsd || netbsd || openbsd

package grep

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapWindow maps each view read-only. Offsets are aligned down to the page
// size and the slack is sliced off the returned view.
type mmapWindow struct {
	f        *os.File
	size     int64
	mapped   []byte
	fallback *readAtWindow
}

func newWindow(f *os.File) window {
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return newReadAtWindow(f)
	}
	return &mmapWindow{f: f, size: info.Size()}
}

func (w *mmapWindow) view(off int64, n int) ([]byte, error) {
	if w.fallback != nil {
		return w.fallback.view(off, n)
	}
	if err := w.unmap(); err != nil {
		return nil, err
	}

	if off >= w.size {
		return nil, nil
	}
	if rest := w.size - off; int64(n) > rest {
		n = int(rest)
	}
	if n == 0 {
		return nil, nil
	}

	page := int64(unix.Getpagesize())
	aligned := off &^ (page - 1)
	slack := int(off - aligned)

	data, err := unix.Mmap(int(w.f.Fd()), aligned, slack+n, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		// Some file systems cannot be mapped
		w.fallback = newReadAtWindow(w.f)
		return w.fallback.view(off, n)
	}
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
	w.mapped = data
	return data[slack:], nil
}

func (w *mmapWindow) unmap() error {
	if w.mapped == nil {
		return nil
	}
	err := unix.Munmap(w.mapped)
	w.mapped = nil
	return err
}

func (w *mmapWindow) close() error {
	if w.fallback != nil {
		w.fallback.close()
	}
	return w.unmap()
}
