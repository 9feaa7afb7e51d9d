package transport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DefaultNamePaths lists the standard locations of the USB ID database.
var DefaultNamePaths = []string{
	"/usr/share/hwdata/usb.ids",
	"/var/lib/usbutils/usb.ids",
	"/usr/share/misc/usb.ids",
}

// Names resolves USB vendor and product IDs to the human-readable strings
// reported by target inquiries.
type Names struct {
	vendors  map[uint16]string // VID -> vendor name
	products map[uint32]string // (VID<<16)|PID -> product name
	loaded   bool
	mu       sync.RWMutex
	paths    []string
}

// NewNames creates a name database that searches the default paths.
func NewNames() *Names {
	return NewNamesWithPaths(DefaultNamePaths)
}

// NewNamesWithPaths creates a name database that searches paths in order.
func NewNamesWithPaths(paths []string) *Names {
	return &Names{
		vendors:  make(map[uint16]string),
		products: make(map[uint32]string),
		paths:    paths,
	}
}

// Load parses the first database file found. Later calls do nothing.
// Returns false if no file could be opened.
func (n *Names) Load() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.loaded {
		return true
	}
	n.loaded = true

	for _, path := range n.paths {
		file, err := os.Open(path)
		if err != nil {
			continue
		}
		defer file.Close()
		n.parse(file)
		return true
	}
	return false
}

// Parse merges entries from r into the database.
func (n *Names) Parse(r io.Reader) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parse(r)
	n.loaded = true
}

func (n *Names) parse(r io.Reader) {
	scanner := bufio.NewScanner(r)
	var vid uint16

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		// "xxxx  Vendor" or "\txxxx  Product"; anything else ends the vendor.
		if line[0] == '\t' {
			if vid == 0 {
				continue
			}
			id, name, ok := splitIDLine(line[1:])
			if ok {
				n.products[uint32(vid)<<16|uint32(id)] = name
			}
			continue
		}

		id, name, ok := splitIDLine(line)
		if !ok {
			vid = 0
			continue
		}
		vid = id
		n.vendors[vid] = name
	}
}

func splitIDLine(line string) (uint16, string, bool) {
	if len(line) < 6 || line[4] != ' ' {
		return 0, "", false
	}
	id, err := strconv.ParseUint(line[:4], 16, 16)
	if err != nil {
		return 0, "", false
	}
	return uint16(id), strings.TrimLeft(line[5:], " "), true
}

// Vendor returns the vendor name for vid, or "" if unknown.
func (n *Names) Vendor(vid uint16) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.vendors[vid]
}

// Product returns the product name for vid:pid, or "" if unknown.
func (n *Names) Product(vid, pid uint16) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.products[uint32(vid)<<16|uint32(pid)]
}

// Describe returns vendor and product strings for a device, falling back to
// hexadecimal IDs for entries missing from the database.
func (n *Names) Describe(vid, pid uint16) (vendor, product string) {
	vendor, product = n.Vendor(vid), n.Product(vid, pid)
	if vendor == "" {
		vendor = fmt.Sprintf("%04x", vid)
	}
	if product == "" {
		product = fmt.Sprintf("%04x", pid)
	}
	return vendor, product
}

// ParseUSBID parses a "vvvv:pppp" hexadecimal vendor:product pair.
func ParseUSBID(s string) (vid, pid uint16, err error) {
	v, p, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("usb id %q: missing ':'", s)
	}
	vv, err := strconv.ParseUint(v, 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("usb id %q: %w", s, err)
	}
	pp, err := strconv.ParseUint(p, 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("usb id %q: %w", s, err)
	}
	return uint16(vv), uint16(pp), nil
}
