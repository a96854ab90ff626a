package rom

// Address is a 24-bit SNES CPU byte address: (bank<<16) | offset.
type Address uint32

// Bank returns the 8-bit bank byte of the address.
func (a Address) Bank() byte { return byte(a >> 16) }

// Offset returns the 16-bit within-bank offset of the address.
func (a Address) Offset() uint16 { return uint16(a) }

// NewAddress builds an Address from a bank and an offset.
func NewAddress(bank byte, offset uint16) Address {
	return Address(uint32(bank)<<16 | uint32(offset))
}

// RegionKind classifies a MemoryRegion's backing storage.
type RegionKind int

const (
	RegionROM RegionKind = iota
	RegionRAM
	RegionSRAM
	RegionIO
	RegionOpenBus
)

func (k RegionKind) String() string {
	switch k {
	case RegionROM:
		return "ROM"
	case RegionRAM:
		return "RAM"
	case RegionSRAM:
		return "SRAM"
	case RegionIO:
		return "IO"
	default:
		return "OpenBus"
	}
}

// MemoryRegion is a non-overlapping [Start, End] byte-address range
// within a single mapping view (spec.md §3 Memory Region).
type MemoryRegion struct {
	Start, End  Address
	Kind        RegionKind
	Readable    bool
	Writable    bool
	Size        int
	Description string
}

func (r MemoryRegion) contains(a Address) bool { return a >= r.Start && a <= r.End }

// Mapper translates between CPU byte addresses and file offsets for a
// specific cartridge memory layout (spec.md §4.3).
type Mapper interface {
	// CPUToFile translates a CPU byte address to a file offset. ok is
	// false if the address does not map to ROM content (Unmapped).
	CPUToFile(addr Address) (offset int, ok bool)
	// FileToCPU returns the canonical (lowest-bank) CPU address mirror
	// for a given file offset.
	FileToCPU(offset int) Address
	// Regions lists the memory regions of this mapping view.
	Regions() []MemoryRegion
}

// NewMapper builds the appropriate Mapper for a cartridge's classified
// layout. SA-1/SuperFX/BSX/MSU-1 chips layer extra work-RAM/IO regions
// on top of a base LoROM ROM view, per spec.md §4.3.
func NewMapper(info CartridgeInfo, romLen int) Mapper {
	switch info.Type {
	case CartHiROM, CartSDD1, CartSPC7110:
		return &hiROMMapper{romLen: romLen, info: info}
	case CartExHiROM:
		return &exHiROMMapper{romLen: romLen, info: info}
	case CartExLoROM:
		return &exLoROMMapper{romLen: romLen, info: info}
	default:
		// LoROM, SA-1, SuperFX, BSX, MSU-1, DSP-n, CX4, OBC-1, SRTC,
		// ST010/ST011, and Unknown all use the LoROM base ROM view.
		return &loROMMapper{romLen: romLen, info: info}
	}
}

// BuildMemoryRegions enumerates the memory regions implied by a
// cartridge's classification, independent of the Mapper used to
// translate individual addresses.
func BuildMemoryRegions(info CartridgeInfo) []MemoryRegion {
	var regions []MemoryRegion
	switch info.Type {
	case CartHiROM, CartSDD1, CartSPC7110:
		regions = append(regions,
			MemoryRegion{NewAddress(0x00, 0x8000), NewAddress(0x3F, 0xFFFF), RegionROM, true, false, 0x3F*0x10000 + 0x8000, "HiROM banks 00-3F"},
			MemoryRegion{NewAddress(0x40, 0x0000), NewAddress(0x7F, 0xFFFF), RegionROM, true, false, 0x40 * 0x10000, "HiROM banks 40-7F"},
			MemoryRegion{NewAddress(0x80, 0x8000), NewAddress(0xFF, 0xFFFF), RegionROM, true, false, 0, "FastROM mirror of 00-7F"},
		)
		if info.SRAMSizeKB > 0 {
			regions = append(regions, MemoryRegion{NewAddress(0x20, 0x6000), NewAddress(0x3F, 0x7FFF), RegionSRAM, true, true, info.SRAMSizeKB * 1024, "battery-backed SRAM"})
		}
	case CartExHiROM:
		regions = append(regions,
			MemoryRegion{NewAddress(0x00, 0x8000), NewAddress(0x3F, 0xFFFF), RegionROM, true, false, 0, "ExHiROM banks 00-3F (second half)"},
			MemoryRegion{NewAddress(0x40, 0x0000), NewAddress(0x7D, 0xFFFF), RegionROM, true, false, 0, "ExHiROM banks 40-7D (second half)"},
			MemoryRegion{NewAddress(0xC0, 0x0000), NewAddress(0xFF, 0xFFFF), RegionROM, true, false, 0, "ExHiROM banks C0-FF (first half, fast)"},
		)
	case CartExLoROM:
		regions = append(regions,
			MemoryRegion{NewAddress(0x00, 0x8000), NewAddress(0x7D, 0xFFFF), RegionROM, true, false, 0, "ExLoROM banks 00-7D"},
			MemoryRegion{NewAddress(0x80, 0x8000), NewAddress(0xFF, 0xFFFF), RegionROM, true, false, 0, "ExLoROM banks 80-FF"},
		)
	default:
		regions = append(regions,
			MemoryRegion{NewAddress(0x00, 0x8000), NewAddress(0x7F, 0xFFFF), RegionROM, true, false, 0, "LoROM banks 00-7F"},
			MemoryRegion{NewAddress(0x80, 0x8000), NewAddress(0xFF, 0xFFFF), RegionROM, true, false, 0, "FastROM mirror of 00-7F"},
		)
		if info.SRAMSizeKB > 0 {
			regions = append(regions, MemoryRegion{NewAddress(0x70, 0x0000), NewAddress(0x7F, 0xFFFF), RegionSRAM, true, true, info.SRAMSizeKB * 1024, "cartridge SRAM"})
		}
	}

	regions = append(regions, MemoryRegion{NewAddress(0x00, 0x2100), NewAddress(0x00, 0x213F), RegionIO, true, true, 0x40, "PPU registers"})
	regions = append(regions, MemoryRegion{NewAddress(0x00, 0x2140), NewAddress(0x00, 0x2143), RegionIO, true, true, 4, "APU ports"})
	regions = append(regions, MemoryRegion{NewAddress(0x00, 0x4200), NewAddress(0x00, 0x43FF), RegionIO, true, true, 0x200, "CPU/DMA registers"})
	regions = append(regions, MemoryRegion{NewAddress(0x7E, 0x0000), NewAddress(0x7F, 0xFFFF), RegionRAM, true, true, 0x20000, "work RAM"})

	switch info.Type {
	case CartSA1:
		regions = append(regions, MemoryRegion{NewAddress(0x00, 0x3000), NewAddress(0x00, 0x37FF), RegionIO, true, true, 0x800, "SA-1 I-RAM / registers"})
		regions = append(regions, MemoryRegion{NewAddress(0x40, 0x0000), NewAddress(0x4F, 0xFFFF), RegionSRAM, true, true, 0x100000, "SA-1 BW-RAM"})
	case CartSuperFX:
		regions = append(regions, MemoryRegion{NewAddress(0x00, 0x3000), NewAddress(0x00, 0x34FF), RegionIO, true, true, 0x500, "GSU registers"})
		regions = append(regions, MemoryRegion{NewAddress(0x70, 0x0000), NewAddress(0x71, 0xFFFF), RegionRAM, true, true, 0x20000, "GSU work RAM"})
	case CartBSX:
		regions = append(regions, MemoryRegion{NewAddress(0x00, 0x2188), NewAddress(0x00, 0x219F), RegionIO, true, true, 0x18, "BS-X registers"})
	case CartMSU1:
		regions = append(regions, MemoryRegion{NewAddress(0x00, 0x2000), NewAddress(0x00, 0x2007), RegionIO, true, true, 8, "MSU-1 registers"})
	}

	return regions
}

type loROMMapper struct {
	romLen int
	info   CartridgeInfo
}

func (m *loROMMapper) CPUToFile(a Address) (int, bool) {
	bank := a.Bank() & 0x7F
	off := a.Offset()
	if off < 0x8000 {
		return 0, false
	}
	offset := int(bank)<<15 | int(off&0x7FFF)
	if offset >= m.romLen {
		return 0, false
	}
	return offset, true
}

func (m *loROMMapper) FileToCPU(offset int) Address {
	bank := byte(offset >> 15)
	off := uint16(offset&0x7FFF) | 0x8000
	return NewAddress(bank, off)
}

func (m *loROMMapper) Regions() []MemoryRegion { return m.info.Regions }

type hiROMMapper struct {
	romLen int
	info   CartridgeInfo
}

func (m *hiROMMapper) CPUToFile(a Address) (int, bool) {
	bank := a.Bank()
	off := a.Offset()

	var fileBank int
	switch {
	case bank <= 0x3F:
		if off < 0x8000 {
			return 0, false
		}
		fileBank = int(bank)
	case bank >= 0x40 && bank <= 0x7F:
		fileBank = int(bank) - 0x40
	case bank >= 0x80 && bank <= 0xBF:
		if off < 0x8000 {
			return 0, false
		}
		fileBank = int(bank) - 0x80
	case bank >= 0xC0:
		fileBank = int(bank) - 0xC0
	default:
		return 0, false
	}

	offset := fileBank<<16 | int(off)
	if offset >= m.romLen {
		return 0, false
	}
	return offset, true
}

func (m *hiROMMapper) FileToCPU(offset int) Address {
	bank := byte(offset >> 16)
	off := uint16(offset)
	if off < 0x8000 {
		bank += 0x40
	}
	return NewAddress(bank, off)
}

func (m *hiROMMapper) Regions() []MemoryRegion { return m.info.Regions }

// exLoROMMapper extends LoROM addressing by using bank bit 7 (banks
// 80-FF carry the first half of the image at the same within-bank
// offsets as 00-7F carry the second half). It reaches at most 256 banks
// of 32KB, so images beyond 8MB are not mapped past that point.
type exLoROMMapper struct {
	romLen int
	info   CartridgeInfo
}

func (m *exLoROMMapper) CPUToFile(a Address) (int, bool) {
	bank := a.Bank()
	off := a.Offset()
	if off < 0x8000 {
		return 0, false
	}
	var fileBank int
	if bank < 0x80 {
		fileBank = int(bank) + 0x80
	} else {
		fileBank = int(bank) - 0x80
	}
	offset := fileBank<<15 | int(off&0x7FFF)
	if offset >= m.romLen {
		return 0, false
	}
	return offset, true
}

func (m *exLoROMMapper) FileToCPU(offset int) Address {
	fileBank := offset >> 15
	off := uint16(offset&0x7FFF) | 0x8000
	var bank int
	if fileBank >= 0x80 {
		bank = fileBank - 0x80
	} else {
		bank = fileBank + 0x80
	}
	return NewAddress(byte(bank), off)
}

func (m *exLoROMMapper) Regions() []MemoryRegion { return m.info.Regions }

// exHiROMMapper extends HiROM addressing: the first half of the image is
// visible in banks C0-FF, the second half in banks 40-7D and 00-3F/80-BF.
// It reaches at most 128 banks of 64KB, so images beyond 8MB are not
// mapped past that point.
type exHiROMMapper struct {
	romLen int
	info   CartridgeInfo
}

func (m *exHiROMMapper) CPUToFile(a Address) (int, bool) {
	bank := a.Bank()
	off := a.Offset()

	var fileBank int
	switch {
	case bank <= 0x3F:
		if off < 0x8000 {
			return 0, false
		}
		fileBank = int(bank) + 0x40
	case bank >= 0x40 && bank <= 0x7D:
		fileBank = int(bank)
	case bank >= 0x80 && bank <= 0xBF:
		if off < 0x8000 {
			return 0, false
		}
		fileBank = int(bank) - 0x80 + 0x40
	case bank >= 0xC0:
		fileBank = int(bank) - 0xC0
	default:
		return 0, false
	}

	offset := fileBank<<16 | int(off)
	if offset >= m.romLen {
		return 0, false
	}
	return offset, true
}

func (m *exHiROMMapper) FileToCPU(offset int) Address {
	fileBank := offset >> 16
	off := uint16(offset)
	var bank int
	if fileBank >= 0x40 {
		bank = fileBank - 0x40
	} else {
		bank = fileBank + 0xC0
	}
	if off < 0x8000 {
		bank += 0x40
		if bank > 0xFF {
			bank -= 0x40
		}
	}
	return NewAddress(byte(bank), off)
}

func (m *exHiROMMapper) Regions() []MemoryRegion { return m.info.Regions }
