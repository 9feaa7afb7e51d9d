// Command xhdictl attaches disk images to simulated buses, installs one XHDI
// driver per bus class and issues XHDI calls through the resulting chain.
//
// Usage:
//
//	xhdictl --image usb:0=stick.img --image ide:0=disk.img drives
//	xhdictl -i stick.img capacity usb:0
//	xhdictl -i stick.img read usb:0 0 1 | hexdump -C
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ardnew/softxhdi/pkg"
	"github.com/ardnew/softxhdi/pkg/prof"
	"github.com/ardnew/softxhdi/transport"
)

const appVersion = "0.1.0"

// runner carries the system shared by all commands of one invocation.
type runner struct {
	sys *system
}

func newApp(stdout, stderr io.Writer) *cli.App {
	r := &runner{}
	return &cli.App{
		Name:      "xhdictl",
		Usage:     "drive XHDI disk drivers over disk images",
		Version:   appVersion,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "image",
				Aliases: []string{"i"},
				Usage:   "attach a disk image as `[BUS:DEV=]PATH` (bus usb, ide or scsi)",
				EnvVars: []string{"XHDI_IMAGE"},
			},
			&cli.StringSliceFlag{
				Name:    "usb-id",
				Usage:   "name USB device `DEV=VID:PID` from the USB ID database",
				EnvVars: []string{"XHDI_USB_ID"},
			},
			&cli.StringFlag{
				Name:    "usb-ids",
				Usage:   "USB ID database `FILE` (default: system locations)",
				EnvVars: []string{"XHDI_USB_IDS"},
			},
			&cli.BoolFlag{
				Name:  "read-only",
				Usage: "open images read-only",
			},
			&cli.BoolFlag{
				Name:  "append",
				Usage: "chain each driver behind the previous one instead of in front",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "log `LEVEL`: debug, info, warn or error",
				EnvVars: []string{"XHDI_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "log `FORMAT`: text or json",
				EnvVars: []string{"XHDI_LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:  "cpuprofile",
				Usage: "write a CPU profile to `FILE` (requires the profile build tag)",
			},
			&cli.StringFlag{
				Name:  "memprofile",
				Usage: "write a heap profile to `FILE` on exit (requires the profile build tag)",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "serve pprof handlers on `ADDR` (requires the profile build tag)",
			},
		},
		Before:   r.before,
		After:    r.after,
		Commands: r.commands(),
	}
}

func (r *runner) before(c *cli.Context) error {
	level, err := pkg.ParseLogLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	pkg.SetLogLevel(level)
	logger := pkg.NewLogger(c.App.ErrWriter, nil)
	if pkg.ParseLogFormat(c.String("log-format")) == pkg.LogFormatJSON {
		logger = pkg.NewJSONLogger(c.App.ErrWriter, nil)
	}
	pkg.SetLogger(logger)

	if path := c.String("cpuprofile"); path != "" {
		if err := prof.StartCPU(path); err != nil {
			return err
		}
	}
	if addr := c.String("pprof"); addr != "" {
		if _, err := prof.Serve(addr); err != nil {
			return err
		}
	}
	if !prof.Enabled && (c.IsSet("cpuprofile") || c.IsSet("memprofile") || c.IsSet("pprof")) {
		pkg.LogWarn(pkg.ComponentCLI, "profiling flags ignored, rebuild with -tags profile")
	}

	opts := options{
		images:   c.StringSlice("image"),
		usbIDs:   c.StringSlice("usb-id"),
		readOnly: c.Bool("read-only"),
		append:   c.Bool("append"),
	}
	if len(opts.usbIDs) > 0 {
		opts.names = transport.NewNames()
		if path := c.String("usb-ids"); path != "" {
			opts.names = transport.NewNamesWithPaths([]string{path})
		}
		if !opts.names.Load() {
			pkg.LogWarn(pkg.ComponentCLI, "USB ID database not found")
		}
	}

	sys, err := newSystem(opts)
	if err != nil {
		return err
	}
	r.sys = sys
	pkg.LogDebug(pkg.ComponentCLI, "system ready",
		"images", len(opts.images),
		"drivers", len(sys.drivers))
	return nil
}

func (r *runner) after(c *cli.Context) error {
	prof.StopCPU()
	if path := c.String("memprofile"); path != "" {
		if err := prof.Write(prof.ProfileHeap, path); err != nil {
			pkg.LogError(pkg.ComponentCLI, "heap profile failed", "error", err)
		}
	}
	if r.sys != nil {
		return r.sys.Close()
	}
	return nil
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "xhdictl:", err)
		os.Exit(1)
	}
}
