package rom

// Image is the immutable parsed representation of a ROM file: its bytes
// (copier header already stripped), derived header, cartridge
// classification, and address mapper (spec.md §3 ROM image).
type Image struct {
	Bytes     []byte
	Header    *Header
	Cartridge CartridgeInfo
	Mapper    Mapper
}

// Load parses raw ROM bytes into an Image, performing header detection,
// cartridge classification, and mapper selection in sequence (spec.md
// §2 data-flow: Header Parser -> Cartridge Classifier -> Address
// Mapper).
func Load(raw []byte) (*Image, error) {
	h, data, err := ParseHeader(raw)
	if err != nil {
		return nil, err
	}

	cart := Classify(h)
	mapper := NewMapper(cart, len(data))

	img := &Image{
		Bytes:     data,
		Header:    h,
		Cartridge: cart,
		Mapper:    mapper,
	}

	resetCPU := NewAddress(0x00, h.Emulation.RESET)
	if _, ok := mapper.CPUToFile(resetCPU); !ok {
		return img, ErrUnmappedReset
	}

	return img, nil
}

// ReadByte returns the byte at the given CPU address, if mapped.
func (img *Image) ReadByte(addr Address) (byte, bool) {
	off, ok := img.Mapper.CPUToFile(addr)
	if !ok || off >= len(img.Bytes) {
		return 0, false
	}
	return img.Bytes[off], true
}

// ReadBytes returns n bytes starting at the given CPU address. ok is
// false if any byte in the run is unmapped or the run is not contiguous
// in the backing file (it always is, for addresses within one bank).
func (img *Image) ReadBytes(addr Address, n int) ([]byte, bool) {
	off, ok := img.Mapper.CPUToFile(addr)
	if !ok || off+n > len(img.Bytes) {
		return nil, false
	}
	return img.Bytes[off : off+n], true
}
