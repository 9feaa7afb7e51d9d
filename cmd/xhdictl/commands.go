package main

import (
	"fmt"
	"math/bits"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/ardnew/softxhdi/pkg"
	"github.com/ardnew/softxhdi/pun"
	"github.com/ardnew/softxhdi/xhdi"
)

func (r *runner) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "version",
			Usage:  "print the XHDI version negotiated along the driver chain",
			Action: r.withClient(r.version),
		},
		{
			Name:    "drives",
			Aliases: []string{"drvmap"},
			Usage:   "list the drives served by the driver chain",
			Action:  r.withClient(r.drives),
		},
		{
			Name:      "target",
			Usage:     "inquire a target device",
			ArgsUsage: "DEV",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:  "len",
					Value: xhdi.StringLen,
					Usage: "product name buffer `SIZE`",
				},
			},
			Action: r.withClient(r.target),
		},
		{
			Name:      "capacity",
			Usage:     "print the block count and block size of a device",
			ArgsUsage: "DEV",
			Action:    r.withClient(r.capacity),
		},
		{
			Name:      "read",
			Usage:     "read blocks from a device",
			ArgsUsage: "DEV SECTOR [COUNT]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "write the blocks to `FILE` instead of standard output",
				},
			},
			Action: r.withClient(r.read),
		},
		{
			Name:      "write",
			Usage:     "write blocks to a device",
			ArgsUsage: "DEV SECTOR",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "in",
					Usage:    "read the blocks from `FILE`",
					Required: true,
				},
			},
			Action: r.withClient(r.write),
		},
		{
			Name:      "eject",
			Usage:     "eject the medium of a device",
			ArgsUsage: "DEV",
			Action:    r.withClient(r.eject),
		},
		{
			Name:   "cookies",
			Usage:  "list the cookie jar",
			Action: r.cookies,
		},
	}
}

// withClient fails actions that need an installed driver chain.
func (r *runner) withClient(action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		if r.sys == nil || r.sys.client == nil {
			return fmt.Errorf("%w: no images attached, no XHDI driver installed", pkg.ErrNoDevice)
		}
		return action(c)
	}
}

func (r *runner) version(c *cli.Context) error {
	v := r.sys.client.Version()
	fmt.Fprintf(c.App.Writer, "XHDI %d.%02x\n", v>>8, v&0xFF)
	return nil
}

func (r *runner) drives(c *cli.Context) error {
	client := r.sys.client
	drvmap := client.DrvMap()
	w := c.App.Writer

	fmt.Fprintf(w, "%-4s %-6s %-10s %-10s %-7s %s\n", "DRV", "DEV", "START", "BLOCKS", "ID", "DRIVER")
	for drv := 0; drv < pun.MaxDrives; drv++ {
		if drvmap&(1<<drv) == 0 {
			continue
		}
		dev, err := client.InqDev2(drv)
		if err != nil {
			fmt.Fprintf(w, "%-4s %-6s %v\n", pun.DriveLetter(drv), deviceName(dev.Major), err)
			continue
		}
		driver := "?"
		if info, err := client.InqDriver(drv); err == nil {
			driver = info.Name + " " + info.Version
		}
		fmt.Fprintf(w, "%-4s %-6s %-10d %-10d %-7s %s\n",
			pun.DriveLetter(drv), deviceName(dev.Major), dev.Start, dev.Blocks, dev.PartID, driver)
	}
	fmt.Fprintf(w, "%d drive(s)\n", bits.OnesCount32(drvmap))
	return nil
}

func (r *runner) target(c *cli.Context) error {
	major, err := r.deviceArg(c, 0)
	if err != nil {
		return err
	}
	size := c.Uint("len")
	if size == 0 || size > 0xFFFF {
		return fmt.Errorf("%w: name length %d", pkg.ErrInvalidParameter, size)
	}

	t, err := r.sys.client.InqTarget2(major, 0, uint16(size))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: %q block size %d removable %v\n",
		deviceName(major), t.ProductName, t.BlockSize, t.Removable())
	return nil
}

func (r *runner) capacity(c *cli.Context) error {
	major, err := r.deviceArg(c, 0)
	if err != nil {
		return err
	}
	blocks, size, err := r.sys.client.Capacity(major, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: %d blocks of %d bytes (%d bytes)\n",
		deviceName(major), blocks, size, uint64(blocks)*uint64(size))
	return nil
}

func (r *runner) read(c *cli.Context) error {
	major, err := r.deviceArg(c, 0)
	if err != nil {
		return err
	}
	sector, err := uintArg(c, 1, 32)
	if err != nil {
		return err
	}
	count := uint64(1)
	if c.Args().Len() > 2 {
		if count, err = uintArg(c, 2, 16); err != nil {
			return err
		}
	}

	_, size, err := r.sys.client.Capacity(major, 0)
	if err != nil {
		return err
	}
	buf := make([]byte, int(count)*int(size))
	if err := r.sys.client.Read(major, 0, uint32(sector), uint16(count), buf); err != nil {
		return err
	}

	if path := c.String("out"); path != "" {
		return os.WriteFile(path, buf, 0o644)
	}
	_, err = c.App.Writer.Write(buf)
	return err
}

func (r *runner) write(c *cli.Context) error {
	major, err := r.deviceArg(c, 0)
	if err != nil {
		return err
	}
	sector, err := uintArg(c, 1, 32)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.String("in"))
	if err != nil {
		return err
	}
	_, size, err := r.sys.client.Capacity(major, 0)
	if err != nil {
		return err
	}
	if len(data) == 0 || len(data)%int(size) != 0 || len(data)/int(size) > 0xFFFF {
		return fmt.Errorf("%w: %d bytes is not a whole number of %d byte blocks",
			pkg.ErrInvalidParameter, len(data), size)
	}

	count := uint16(len(data) / int(size))
	if err := r.sys.client.Write(major, 0, uint32(sector), count, data); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: wrote %d block(s) at %d\n", deviceName(major), count, sector)
	return nil
}

func (r *runner) eject(c *cli.Context) error {
	major, err := r.deviceArg(c, 0)
	if err != nil {
		return err
	}
	return r.sys.client.Eject(major, 0, true)
}

func (r *runner) cookies(c *cli.Context) error {
	if r.sys == nil {
		return nil
	}
	for _, ck := range r.sys.jar.Entries() {
		fmt.Fprintf(c.App.Writer, "%s %#08x\n", ck.Tag, ck.Value)
	}
	return nil
}

// deviceArg parses argument i as an attached device.
func (r *runner) deviceArg(c *cli.Context, i int) (uint16, error) {
	if c.Args().Len() <= i {
		return 0, fmt.Errorf("%w: missing device argument", pkg.ErrInvalidParameter)
	}
	return r.sys.device(c.Args().Get(i))
}

// uintArg parses argument i as an unsigned integer of the given bit size.
func uintArg(c *cli.Context, i, bitSize int) (uint64, error) {
	if c.Args().Len() <= i {
		return 0, fmt.Errorf("%w: missing argument %d", pkg.ErrInvalidParameter, i+1)
	}
	n, err := strconv.ParseUint(c.Args().Get(i), 0, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", pkg.ErrInvalidParameter, err)
	}
	return n, nil
}

// deviceName formats a major number as "bus:dev".
func deviceName(major uint16) string {
	return fmt.Sprintf("%s:%d", className(pun.ClassOf(major)), pun.BusDevice(major))
}
