// Package regs holds the static PPU/APU/CPU-DMA register reference
// table consulted during reference enrichment (spec.md §4.13).
package regs

// Register is one entry of the static hardware register reference
// table: name, a one-line description, and whether it is normally
// written, read, or both.
type Register struct {
	Name        string
	Description string
	Direction   string
}

// table is keyed by bank-0 offset; banks 0x00-0x3F and 0x80-0xBF mirror
// these addresses, so lookups use only the 16-bit offset.
var table = map[uint16]Register{
	0x2100: {"INIDISP", "screen display / brightness", "write"},
	0x2101: {"OBSEL", "object size and base address", "write"},
	0x2102: {"OAMADDL", "OAM address low", "write"},
	0x2103: {"OAMADDH", "OAM address high / priority rotation", "write"},
	0x2104: {"OAMDATA", "OAM data write", "write"},
	0x2105: {"BGMODE", "BG mode and tile size", "write"},
	0x2106: {"MOSAIC", "mosaic size and BG enable", "write"},
	0x2107: {"BG1SC", "BG1 tilemap address and size", "write"},
	0x2108: {"BG2SC", "BG2 tilemap address and size", "write"},
	0x2109: {"BG3SC", "BG3 tilemap address and size", "write"},
	0x210A: {"BG4SC", "BG4 tilemap address and size", "write"},
	0x210B: {"BG12NBA", "BG1/BG2 character data address", "write"},
	0x210C: {"BG34NBA", "BG3/BG4 character data address", "write"},
	0x210D: {"BG1HOFS", "BG1 horizontal scroll / M7HOFS", "write"},
	0x210E: {"BG1VOFS", "BG1 vertical scroll / M7VOFS", "write"},
	0x2115: {"VMAIN", "VRAM address increment mode", "write"},
	0x2116: {"VMADDL", "VRAM address low", "write"},
	0x2117: {"VMADDH", "VRAM address high", "write"},
	0x2118: {"VMDATAL", "VRAM data write low", "write"},
	0x2119: {"VMDATAH", "VRAM data write high", "write"},
	0x211A: {"M7SEL", "Mode 7 settings", "write"},
	0x2121: {"CGADD", "CGRAM (palette) address", "write"},
	0x2122: {"CGDATA", "CGRAM (palette) data write", "write"},
	0x2123: {"W12SEL", "window mask for BG1/BG2", "write"},
	0x2124: {"W34SEL", "window mask for BG3/BG4", "write"},
	0x2125: {"WOBJSEL", "window mask for sprites/color", "write"},
	0x2126: {"WH0", "window 1 left position", "write"},
	0x2127: {"WH1", "window 1 right position", "write"},
	0x2128: {"WH2", "window 2 left position", "write"},
	0x2129: {"WH3", "window 2 right position", "write"},
	0x212C: {"TM", "main screen designation", "write"},
	0x212D: {"TS", "sub screen designation", "write"},
	0x2130: {"CGWSEL", "color math control A", "write"},
	0x2131: {"CGADSUB", "color math control B", "write"},
	0x2132: {"COLDATA", "fixed color data", "write"},
	0x2133: {"SETINI", "screen mode / interlace select", "write"},
	0x2134: {"MPYL", "PPU multiply result low", "read"},
	0x2135: {"MPYM", "PPU multiply result mid", "read"},
	0x2136: {"MPYH", "PPU multiply result high", "read"},
	0x2137: {"SLHV", "software latch for H/V counter", "read"},
	0x2138: {"OAMDATAREAD", "OAM data read", "read"},
	0x2139: {"VMDATALREAD", "VRAM data read low", "read"},
	0x213A: {"VMDATAHREAD", "VRAM data read high", "read"},
	0x213B: {"CGDATAREAD", "CGRAM data read", "read"},
	0x213C: {"OPHCT", "horizontal scanline location", "read"},
	0x213D: {"OPVCT", "vertical scanline location", "read"},
	0x213E: {"STAT77", "PPU1 status / version", "read"},
	0x213F: {"STAT78", "PPU2 status / version", "read"},
	0x2140: {"APUIO0", "APU I/O port 0", "readwrite"},
	0x2141: {"APUIO1", "APU I/O port 1", "readwrite"},
	0x2142: {"APUIO2", "APU I/O port 2", "readwrite"},
	0x2143: {"APUIO3", "APU I/O port 3", "readwrite"},
	0x4016: {"JOYSER0", "old-style joypad port 1", "readwrite"},
	0x4017: {"JOYSER1", "old-style joypad port 2", "read"},
	0x4200: {"NMITIMEN", "interrupt enable flags", "write"},
	0x4201: {"WRIO", "programmable I/O port", "write"},
	0x4202: {"WRMPYA", "multiplicand A", "write"},
	0x4203: {"WRMPYB", "multiplicand B / trigger", "write"},
	0x4204: {"WRDIVL", "dividend low", "write"},
	0x4205: {"WRDIVH", "dividend high", "write"},
	0x4206: {"WRDIVB", "divisor / trigger", "write"},
	0x4207: {"HTIMEL", "H-count IRQ timer low", "write"},
	0x4208: {"HTIMEH", "H-count IRQ timer high", "write"},
	0x4209: {"VTIMEL", "V-count IRQ timer low", "write"},
	0x420A: {"VTIMEH", "V-count IRQ timer high", "write"},
	0x420B: {"MDMAEN", "general-purpose DMA enable", "write"},
	0x420C: {"HDMAEN", "H-DMA enable", "write"},
	0x420D: {"MEMSEL", "ROM access speed (FastROM enable)", "write"},
	0x4210: {"RDNMI", "NMI flag / CPU version", "read"},
	0x4211: {"TIMEUP", "IRQ flag", "read"},
	0x4212: {"HVBJOY", "H/V blank and joypad busy flags", "read"},
	0x4213: {"RDIO", "programmable I/O port read", "read"},
	0x4214: {"RDDIVL", "divide result low", "read"},
	0x4215: {"RDDIVH", "divide result high", "read"},
	0x4216: {"RDMPYL", "multiply result / remainder low", "read"},
	0x4217: {"RDMPYH", "multiply result / remainder high", "read"},
	0x4218: {"JOY1L", "joypad 1 data low", "read"},
	0x4219: {"JOY1H", "joypad 1 data high", "read"},
	0x421A: {"JOY2L", "joypad 2 data low", "read"},
	0x421B: {"JOY2H", "joypad 2 data high", "read"},
	0x421C: {"JOY3L", "joypad 3 data low", "read"},
	0x421D: {"JOY3H", "joypad 3 data high", "read"},
	0x421E: {"JOY4L", "joypad 4 data low", "read"},
	0x421F: {"JOY4H", "joypad 4 data high", "read"},
	0x4300: {"DMAP0", "DMA channel 0 control", "write"},
	0x4301: {"BBAD0", "DMA channel 0 B-bus address", "write"},
	0x4302: {"A1T0L", "DMA channel 0 A-bus address low", "write"},
	0x4303: {"A1T0H", "DMA channel 0 A-bus address high", "write"},
	0x4304: {"A1B0", "DMA channel 0 A-bus bank", "write"},
	0x4305: {"DAS0L", "DMA channel 0 byte count low", "write"},
	0x4306: {"DAS0H", "DMA channel 0 byte count high", "write"},
}

// Lookup returns the register descriptor for a bank-0 CPU offset, if
// any is defined.
func Lookup(offset uint16) (Register, bool) {
	r, ok := table[offset]
	return r, ok
}
