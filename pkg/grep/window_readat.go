//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package grep

import "os"

func newWindow(f *os.File) window {
	return newReadAtWindow(f)
}
