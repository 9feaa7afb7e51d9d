package transport

import (
	"fmt"
	"sync"

	"github.com/ardnew/softxhdi/pkg"
)

// Storage defines the interface for block storage backends attached to a Bus.
type Storage interface {
	// BlockSize returns the size of a storage block in bytes.
	BlockSize() uint32

	// BlockCount returns the total number of blocks.
	BlockCount() uint64

	// Read reads blocks starting at lba into buf.
	// Returns number of blocks read or error.
	Read(lba uint64, blocks uint32, buf []byte) (uint32, error)

	// Write writes blocks from buf starting at lba.
	// Returns number of blocks written or error.
	Write(lba uint64, blocks uint32, buf []byte) (uint32, error)

	// Sync flushes any cached writes to storage.
	Sync() error

	// IsReadOnly returns true if storage is read-only.
	IsReadOnly() bool

	// IsRemovable returns true if media is removable.
	IsRemovable() bool

	// Eject ejects removable media.
	Eject() error
}

// checkRange validates a block transfer against a storage of the given size.
func checkRange(lba uint64, blocks uint32, blockSize uint32, count uint64, buf []byte) error {
	if lba+uint64(blocks) > count || lba+uint64(blocks) < lba {
		return fmt.Errorf("%w: lba %d+%d of %d", pkg.ErrOutOfRange, lba, blocks, count)
	}
	if uint64(len(buf)) < uint64(blocks)*uint64(blockSize) {
		return fmt.Errorf("%w: %d bytes for %d blocks", pkg.ErrBufferTooSmall, len(buf), blocks)
	}
	return nil
}

// MemoryStorage implements Storage using an in-memory block array.
type MemoryStorage struct {
	data      []byte
	blockSize uint32
	readOnly  bool
	removable bool
	present   bool
	mutex     sync.RWMutex
}

// NewMemoryStorage creates an in-memory storage of blocks blocks.
func NewMemoryStorage(blocks uint64, blockSize uint32) *MemoryStorage {
	return &MemoryStorage{
		data:      make([]byte, blocks*uint64(blockSize)),
		blockSize: blockSize,
		present:   true,
	}
}

// NewMemoryStorageFrom wraps an existing disk image. Trailing bytes that do
// not fill a whole block are not addressable.
func NewMemoryStorageFrom(image []byte, blockSize uint32) *MemoryStorage {
	return &MemoryStorage{
		data:      image,
		blockSize: blockSize,
		present:   true,
	}
}

// BlockSize returns the block size.
func (m *MemoryStorage) BlockSize() uint32 {
	return m.blockSize
}

// BlockCount returns the number of blocks, or 0 once the medium is ejected.
func (m *MemoryStorage) BlockCount() uint64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if !m.present {
		return 0
	}
	return uint64(len(m.data)) / uint64(m.blockSize)
}

// Read reads blocks from memory.
func (m *MemoryStorage) Read(lba uint64, blocks uint32, buf []byte) (uint32, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.present {
		return 0, pkg.ErrMediumNotPresent
	}
	if err := checkRange(lba, blocks, m.blockSize, uint64(len(m.data))/uint64(m.blockSize), buf); err != nil {
		return 0, err
	}

	offset := lba * uint64(m.blockSize)
	length := uint64(blocks) * uint64(m.blockSize)
	copy(buf, m.data[offset:offset+length])
	return blocks, nil
}

// Write writes blocks to memory.
func (m *MemoryStorage) Write(lba uint64, blocks uint32, buf []byte) (uint32, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.present {
		return 0, pkg.ErrMediumNotPresent
	}
	if m.readOnly {
		return 0, pkg.ErrReadOnly
	}
	if err := checkRange(lba, blocks, m.blockSize, uint64(len(m.data))/uint64(m.blockSize), buf); err != nil {
		return 0, err
	}

	offset := lba * uint64(m.blockSize)
	length := uint64(blocks) * uint64(m.blockSize)
	copy(m.data[offset:offset+length], buf)
	return blocks, nil
}

// Sync is a no-op for memory storage.
func (m *MemoryStorage) Sync() error {
	return nil
}

// IsReadOnly returns whether the storage is read-only.
func (m *MemoryStorage) IsReadOnly() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.readOnly
}

// SetReadOnly sets the read-only flag.
func (m *MemoryStorage) SetReadOnly(readOnly bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.readOnly = readOnly
}

// IsRemovable returns whether the media is removable.
func (m *MemoryStorage) IsRemovable() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.removable
}

// SetRemovable sets the removable flag.
func (m *MemoryStorage) SetRemovable(removable bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.removable = removable
}

// IsPresent returns whether media is present.
func (m *MemoryStorage) IsPresent() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.present
}

// Insert makes the medium present again after an eject.
func (m *MemoryStorage) Insert() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.present = true
}

// Eject ejects the media. Non-removable storage refuses.
func (m *MemoryStorage) Eject() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.removable {
		return pkg.ErrNotSupported
	}

	m.present = false
	return nil
}
