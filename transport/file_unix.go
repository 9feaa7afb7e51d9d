//go:build unix

package transport

import (
	"os"

	"golang.org/x/sys/unix"
)

// pread reads len(p) bytes at offset, retrying short reads.
func pread(f *os.File, p []byte, offset int64) (int, error) {
	fd := int(f.Fd())
	total := 0
	for total < len(p) {
		n, err := unix.Pread(fd, p[total:], offset+int64(total))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, unix.EIO
		}
		total += n
	}
	return total, nil
}

// pwrite writes p at offset, retrying short writes.
func pwrite(f *os.File, p []byte, offset int64) (int, error) {
	fd := int(f.Fd())
	total := 0
	for total < len(p) {
		n, err := unix.Pwrite(fd, p[total:], offset+int64(total))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func fsync(f *os.File) error {
	return unix.Fsync(int(f.Fd()))
}
