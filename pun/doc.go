// Package pun implements the device table consulted by the XHDI driver.
//
// The table maps each drive letter to an ownership tag, the partition start
// and size, a GEMDOS BIOS parameter block and a partition identifier. It is
// populated once, usually by [Scan] for every attached device, and is
// read-only afterwards.
//
// An ownership tag packs the unit number, the driver class flag and a
// validity bit:
//
//	tag := pun.MakeTag(pun.FlagUSB, 0)
//	tbl.Assign(2, pun.Entry{Tag: tag, Start: 64, Blocks: 2048})
//
// A slot whose tag is absent or carries [FlagInvalid] is unassigned. A slot
// claimed with [Table.Reserve] is owned but not yet mapped.
package pun
