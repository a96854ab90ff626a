package rom

// CartridgeType tags the cartridge/coprocessor classification derived
// from the map-mode and cart-type header bytes (spec.md §4.2).
type CartridgeType int

const (
	CartUnknown CartridgeType = iota
	CartLoROM
	CartHiROM
	CartExLoROM
	CartExHiROM
	CartSA1
	CartSuperFX
	CartBSX
	CartMSU1
	CartDSP1
	CartDSP2
	CartDSP3
	CartDSP4
	CartCX4
	CartSPC7110
	CartSDD1
	CartSRTC
	CartOBC1
	CartST01X
)

func (t CartridgeType) String() string {
	switch t {
	case CartLoROM:
		return "LoROM"
	case CartHiROM:
		return "HiROM"
	case CartExLoROM:
		return "ExLoROM"
	case CartExHiROM:
		return "ExHiROM"
	case CartSA1:
		return "SA-1"
	case CartSuperFX:
		return "SuperFX"
	case CartBSX:
		return "BSX"
	case CartMSU1:
		return "MSU-1"
	case CartDSP1:
		return "DSP-1"
	case CartDSP2:
		return "DSP-2"
	case CartDSP3:
		return "DSP-3"
	case CartDSP4:
		return "DSP-4"
	case CartCX4:
		return "CX4"
	case CartSPC7110:
		return "SPC7110"
	case CartSDD1:
		return "S-DD1"
	case CartSRTC:
		return "S-RTC"
	case CartOBC1:
		return "OBC-1"
	case CartST01X:
		return "ST010/ST011"
	default:
		return "Unknown"
	}
}

// Speed is the CPU clock the cartridge is rated to run at.
type Speed int

const (
	SlowROM Speed = iota
	FastROM
)

func (s Speed) String() string {
	if s == FastROM {
		return "FastROM"
	}
	return "SlowROM"
}

// batteryCartTypes lists cart-type byte values that indicate a battery-
// backed SRAM is present.
var batteryCartTypes = map[byte]bool{
	0x02: true, 0x05: true, 0x06: true, 0x09: true, 0x0A: true,
	0x13: true, 0x14: true, 0x15: true, 0x1A: true,
	0x35: true, 0x45: true, 0x55: true,
}

// CartridgeInfo is the derived classification and layout record attached
// to a ROM image (spec.md §3 ROM image / Cartridge Info).
type CartridgeInfo struct {
	Type        CartridgeType
	MapMode     byte
	ROMSizeKB   int
	SRAMSizeKB  int
	Speed       Speed
	Battery     bool
	RTC         bool
	Regions     []MemoryRegion
}

// Classify implements the cartridge classification decision table of
// spec.md §4.2. The first matching row wins.
func Classify(h *Header) CartridgeInfo {
	info := CartridgeInfo{
		MapMode: h.MapMode,
		Speed:   speedOf(h.MapMode),
		Battery: batteryCartTypes[h.CartType],
		RTC:     h.CartType == 0x55,
	}

	switch {
	case h.CartType == 0x03:
		info.Type = CartDSP1
	case h.CartType == 0x05:
		info.Type = CartDSP2
	case h.CartType == 0x06:
		info.Type = CartDSP3
	case h.CartType == 0x0A:
		info.Type = CartDSP4
	case oneOf(h.CartType, 0x13, 0x14, 0x15, 0x1A):
		info.Type = CartSuperFX
	case oneOf(h.CartType, 0x34, 0x35):
		info.Type = CartSA1
	case oneOf(h.CartType, 0x43, 0x45):
		info.Type = CartSDD1
	case h.CartType == 0x55:
		info.Type = CartSRTC
	case oneOf(h.CartType, 0xE3, 0xE5):
		info.Type = CartBSX
	case h.CartType == 0xF3:
		info.Type = CartCX4
	case oneOf(h.CartType, 0xF5, 0xF6):
		info.Type = CartST01X
	case h.CartType == 0xF9:
		info.Type = CartSPC7110
	case h.CartType == 0xFE:
		info.Type = CartMSU1
	default:
		info.Type = classifyByMapMode(h.MapMode)
	}

	if h.RAMSizeByte == 0 {
		info.SRAMSizeKB = 0
	} else {
		info.SRAMSizeKB = (1 << h.RAMSizeByte)
	}
	info.ROMSizeKB = romSizeKB(h.ROMSizeByte)
	info.Regions = BuildMemoryRegions(info)

	return info
}

func classifyByMapMode(mapMode byte) CartridgeType {
	switch mapMode & 0x0F {
	case 0x0, 0x2, 0x3:
		return CartLoROM
	case 0x1, 0xA:
		return CartHiROM
	case 0x4:
		return CartExLoROM
	case 0x5:
		return CartExHiROM
	default:
		return CartUnknown
	}
}

func speedOf(mapMode byte) Speed {
	if mapMode&0x10 != 0 {
		return FastROM
	}
	return SlowROM
}

func romSizeKB(b byte) int {
	if b == 0 {
		return 0
	}
	return 1 << b
}

func oneOf(v byte, candidates ...byte) bool {
	for _, c := range candidates {
		if v == c {
			return true
		}
	}
	return false
}
