//go:build !unix

package transport

import "os"

func pread(f *os.File, p []byte, offset int64) (int, error) {
	return f.ReadAt(p, offset)
}

func pwrite(f *os.File, p []byte, offset int64) (int, error) {
	return f.WriteAt(p, offset)
}

func fsync(f *os.File) error {
	return f.Sync()
}
