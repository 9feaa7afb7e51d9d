package xhdi

import (
	"fmt"

	"github.com/ardnew/softxhdi/cookie"
	"github.com/ardnew/softxhdi/pkg"
)

// Install registers d as the system XHDI handler in front of whatever
// handler the jar held before, which becomes d's next handler. It returns
// the entry point address published in the jar.
//
// Install must be called once per driver, after the device table is fully
// populated. Installing a driver that is already in the chain fails.
func Install(jar *cookie.Jar, vectors *Vectors, d *Driver) (uint32, error) {
	d.vectors = vectors
	prev, chained := registered(jar, vectors)
	if chained && d.reaches(prev) {
		return 0, fmt.Errorf("xhdi install: %w: driver already installed", pkg.ErrInvalidParameter)
	}

	addr, err := vectors.Bind(d)
	if err != nil {
		return 0, fmt.Errorf("xhdi install: %w", err)
	}
	if chained {
		d.SetNext(prev)
	}
	if err := jar.Set(cookie.TagXHDI, addr); err != nil {
		d.SetNext(nil)
		return 0, fmt.Errorf("xhdi install: %w", err)
	}

	pkg.LogInfo(pkg.ComponentXHDI, "driver installed",
		"name", d.name,
		"class", d.class,
		"address", addr,
		"chained", d.Next() != nil)
	return addr, nil
}

// Append registers d behind every handler already installed by passing its
// entry point to the current handler's XHNewCookie. Without a registered
// handler it behaves like Install. It returns d's entry point address.
func Append(jar *cookie.Jar, vectors *Vectors, d *Driver) (uint32, error) {
	prev, ok := registered(jar, vectors)
	if !ok {
		return Install(jar, vectors, d)
	}
	d.vectors = vectors

	addr, err := vectors.Bind(d)
	if err != nil {
		return 0, fmt.Errorf("xhdi append: %w", err)
	}
	ret := pkg.Status(prev.Call(OpNewCookie, pack(&newCookieArgs{NewCookie: addr})))
	if err := ret.Error(); err != nil {
		return 0, fmt.Errorf("xhdi append: %s: %w", ret, err)
	}

	pkg.LogInfo(pkg.ComponentXHDI, "driver appended",
		"name", d.name,
		"class", d.class,
		"address", addr)
	return addr, nil
}

// registered returns the handler currently published in the jar.
func registered(jar *cookie.Jar, vectors *Vectors) (Handler, bool) {
	addr, ok := jar.Get(cookie.TagXHDI)
	if !ok || addr == 0 {
		return nil, false
	}
	h, ok := vectors.Resolve(addr)
	if !ok {
		pkg.LogWarn(pkg.ComponentXHDI, "ignoring invalid XHDI cookie", "address", addr)
	}
	return h, ok
}
