// Package cookie implements the system-wide service registry known as the
// cookie jar: a fixed number of slots, each holding a four-character tag and
// a 32-bit value. The XHDI driver publishes the address of its entry point
// under [TagXHDI].
package cookie
