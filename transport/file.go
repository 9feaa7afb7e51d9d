package transport

import (
	"os"
	"sync"

	"github.com/ardnew/softxhdi/pkg"
)

// FileStorage implements Storage on a disk image file or raw block device.
type FileStorage struct {
	file      *os.File
	blockSize uint32
	size      uint64
	readOnly  bool
	mutex     sync.RWMutex
}

// NewFileStorage opens file-backed storage.
// If readOnly is true, the file is opened in read-only mode.
func NewFileStorage(path string, blockSize uint32, readOnly bool) (*FileStorage, error) {
	flags := os.O_RDWR
	if readOnly {
		flags = os.O_RDONLY
	}

	file, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	pkg.LogDebug(pkg.ComponentStorage, "image opened",
		"path", path,
		"size", stat.Size(),
		"readOnly", readOnly)

	return &FileStorage{
		file:      file,
		blockSize: blockSize,
		size:      uint64(stat.Size()),
		readOnly:  readOnly,
	}, nil
}

// BlockSize returns the block size.
func (f *FileStorage) BlockSize() uint32 {
	return f.blockSize
}

// BlockCount returns the number of blocks.
func (f *FileStorage) BlockCount() uint64 {
	return f.size / uint64(f.blockSize)
}

// Read reads blocks from the file.
func (f *FileStorage) Read(lba uint64, blocks uint32, buf []byte) (uint32, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	if f.file == nil {
		return 0, pkg.ErrMediumNotPresent
	}
	if err := checkRange(lba, blocks, f.blockSize, f.BlockCount(), buf); err != nil {
		return 0, err
	}

	length := int(blocks) * int(f.blockSize)
	n, err := pread(f.file, buf[:length], int64(lba)*int64(f.blockSize))
	if err != nil {
		return uint32(n) / f.blockSize, err
	}
	return uint32(n) / f.blockSize, nil
}

// Write writes blocks to the file.
func (f *FileStorage) Write(lba uint64, blocks uint32, buf []byte) (uint32, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.file == nil {
		return 0, pkg.ErrMediumNotPresent
	}
	if f.readOnly {
		return 0, pkg.ErrReadOnly
	}
	if err := checkRange(lba, blocks, f.blockSize, f.BlockCount(), buf); err != nil {
		return 0, err
	}

	length := int(blocks) * int(f.blockSize)
	n, err := pwrite(f.file, buf[:length], int64(lba)*int64(f.blockSize))
	if err != nil {
		return uint32(n) / f.blockSize, err
	}
	return uint32(n) / f.blockSize, nil
}

// Sync flushes file writes to disk.
func (f *FileStorage) Sync() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.readOnly || f.file == nil {
		return nil
	}
	return fsync(f.file)
}

// IsReadOnly returns whether the storage is read-only.
func (f *FileStorage) IsReadOnly() bool {
	return f.readOnly
}

// IsRemovable returns false (file storage is not removable).
func (f *FileStorage) IsRemovable() bool {
	return false
}

// Eject is not supported for file storage.
func (f *FileStorage) Eject() error {
	return pkg.ErrNotSupported
}

// Close closes the underlying file.
func (f *FileStorage) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.file != nil {
		err := f.file.Close()
		f.file = nil
		return err
	}
	return nil
}
