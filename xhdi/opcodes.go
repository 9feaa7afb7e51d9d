package xhdi

import "fmt"

// Opcode selects the XHDI function of a call.
type Opcode uint16

// XHDI opcodes.
const (
	OpGetVersion    Opcode = 0
	OpInqTarget     Opcode = 1
	OpReserve       Opcode = 2
	OpLock          Opcode = 3
	OpStop          Opcode = 4
	OpEject         Opcode = 5
	OpDrvMap        Opcode = 6
	OpInqDev        Opcode = 7
	OpInqDriver     Opcode = 8
	OpNewCookie     Opcode = 9
	OpReadWrite     Opcode = 10
	OpInqTarget2    Opcode = 11
	OpInqDev2       Opcode = 12
	OpDriverSpecial Opcode = 13
	OpGetCapacity   Opcode = 14
	OpMediumChanged Opcode = 15
	OpMiNTInfo      Opcode = 16
	OpDOSLimits     Opcode = 17
	OpLastAccess    Opcode = 18
	OpReaccess      Opcode = 19
)

var opcodeNames = [...]string{
	OpGetVersion:    "XHGetVersion",
	OpInqTarget:     "XHInqTarget",
	OpReserve:       "XHReserve",
	OpLock:          "XHLock",
	OpStop:          "XHStop",
	OpEject:         "XHEject",
	OpDrvMap:        "XHDrvMap",
	OpInqDev:        "XHInqDev",
	OpInqDriver:     "XHInqDriver",
	OpNewCookie:     "XHNewCookie",
	OpReadWrite:     "XHReadWrite",
	OpInqTarget2:    "XHInqTarget2",
	OpInqDev2:       "XHInqDev2",
	OpDriverSpecial: "XHDriverSpecial",
	OpGetCapacity:   "XHGetCapacity",
	OpMediumChanged: "XHMediumChanged",
	OpMiNTInfo:      "XHMiNTInfo",
	OpDOSLimits:     "XHDOSLimits",
	OpLastAccess:    "XHLastAccess",
	OpReaccess:      "XHReaccess",
}

// String returns the XHDI function name of the opcode.
func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("XH(%d)", uint16(o))
}

// Protocol constants.
const (
	Version         = 0x0120     // XHDI protocol version implemented
	MaxIPL          = 5          // Highest interrupt level the driver can be called at
	BlockSize       = 512        // Block size assumed when a device reports none
	StringLen       = 32         // Product name buffer size of XHInqTarget
	TargetRemovable = 0x02       // XHInqTarget device flag: removable medium
	Magic           = 0x27011992 // Long preceding every XHDI entry point
	InfoLen         = 17         // Buffer size of the XHInqDriver strings
)

// Read/write direction flags of XHReadWrite.
const (
	RWRead  = 0x0000
	RWWrite = 0x0001
)
