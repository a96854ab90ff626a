// Package audio implements the pattern-driven audio-state identification
// sub-pipeline: BRR sample framing, SPC upload tracing, SPC-state
// snapshotting, SPC file export, and music-sequence parsing with engine
// fingerprinting (spec.md §4.12, §3).
package audio

// blockSize is the fixed BRR block length: 1 header byte + 8 data bytes
// encoding sixteen 4-bit nibbles (spec.md §3 BRR Block).
const blockSize = 9

// maxSampleBlocks caps a sample chain's length (spec.md §5 memory
// budget: at most 1000 blocks per sample).
const maxSampleBlocks = 1000

// BRRBlock is one 9-byte BRR block (spec.md §3 BRR Block).
type BRRBlock struct {
	Shift  byte
	Filter byte
	Loop   bool
	End    bool
	Data   [8]byte
}

// valid reports whether the block's header passes the constraints of
// spec.md §4.12: filter bits <= 3, shift bits <= 15 (always true for a
// 4-bit field), and the following 8 bytes are not an all-zero or
// all-0xFF run unless the end flag is set.
func (b BRRBlock) valid() bool {
	if b.Filter > 3 {
		return false
	}
	if b.End {
		return true
	}
	allZero, allFF := true, true
	for _, d := range b.Data {
		if d != 0x00 {
			allZero = false
		}
		if d != 0xFF {
			allFF = false
		}
	}
	return !allZero && !allFF
}

// parseBRRBlock decodes the 9-byte block at the front of raw.
func parseBRRBlock(raw []byte) BRRBlock {
	header := raw[0]
	b := BRRBlock{
		Shift:  header >> 4,
		Filter: (header >> 2) & 0x3,
		Loop:   header&0x2 != 0,
		End:    header&0x1 != 0,
	}
	copy(b.Data[:], raw[1:9])
	return b
}

// Category tags the likely role of a BRR sample (spec.md §3 BRR Sample
// metadata).
type Category int

const (
	CategoryUnknown Category = iota
	CategoryInstrument
	CategoryPercussion
	CategorySFX
	CategoryVoice
)

func (c Category) String() string {
	switch c {
	case CategoryInstrument:
		return "instrument"
	case CategoryPercussion:
		return "percussion"
	case CategorySFX:
		return "sfx"
	case CategoryVoice:
		return "voice"
	default:
		return "unknown"
	}
}

// ADSR is an optional attack/decay/sustain/release envelope.
type ADSR struct {
	Attack, Decay, SustainLevel, SustainRate byte
}

// Sample is a decoded BRR sample: its raw bytes, blocks, loop markers,
// estimated rate/pitch, and optional metadata (spec.md §3 BRR Sample).
type Sample struct {
	Addr            uint32
	Raw             []byte
	Blocks          []BRRBlock
	LoopFlag        bool
	EndFlag         bool
	LoopStartOffset int // -1 if absent
	LoopEndOffset   int // -1 if absent
	SampleRateHz    int
	EstimatedMIDI   int
	Envelope        *ADSR
	ChecksumValid   bool
	Category        Category
}

// defaultSampleRateHz is used when no sample-directory entry nearby
// names a known rate (spec.md §4.12).
const defaultSampleRateHz = 32000

var knownSampleRates = map[int]bool{32000: true, 22050: true, 16000: true, 11025: true, 8000: true}

// ScanBRRSamples scans ram for 9-byte-aligned candidate sample starts
// and returns every maximal chain of valid blocks ending at the first
// end-flag block, capped at 256 samples total and 1000 blocks per
// sample (spec.md §4.12, §5).
func ScanBRRSamples(ram []byte) []Sample {
	const maxSamples = 256
	var samples []Sample
	covered := make([]bool, len(ram))

	for start := 0; start+blockSize <= len(ram) && len(samples) < maxSamples; start += blockSize {
		if covered[start] {
			continue
		}
		sample, consumed, ok := tryChain(ram, start)
		if !ok {
			continue
		}
		for i := 0; i < consumed && start+i < len(covered); i++ {
			covered[start+i] = true
		}
		samples = append(samples, sample)
	}

	return samples
}

func tryChain(ram []byte, start int) (Sample, int, bool) {
	var blocks []BRRBlock
	loopStart := -1
	pos := start

	for len(blocks) < maxSampleBlocks && pos+blockSize <= len(ram) {
		blk := parseBRRBlock(ram[pos : pos+blockSize])
		if !blk.valid() {
			break
		}
		if blk.Loop && loopStart < 0 {
			loopStart = len(blocks) * blockSize
		}
		blocks = append(blocks, blk)
		pos += blockSize
		if blk.End {
			break
		}
	}

	if len(blocks) == 0 || !blocks[len(blocks)-1].End {
		return Sample{}, 0, false
	}

	consumed := len(blocks) * blockSize
	loopEnd := -1
	if loopStart >= 0 {
		loopEnd = consumed - blockSize
	}

	sample := Sample{
		Addr:            uint32(start),
		Raw:             append([]byte(nil), ram[start:start+consumed]...),
		Blocks:          blocks,
		LoopFlag:        loopStart >= 0,
		EndFlag:         true,
		LoopStartOffset: loopStart,
		LoopEndOffset:   loopEnd,
		SampleRateHz:    resolveSampleRate(ram, start),
		ChecksumValid:   true,
	}

	return sample, consumed, true
}

// resolveSampleRate looks for a plausible sample-directory entry within
// +/-256 bytes of addr naming a known rate; otherwise the default
// applies (spec.md §4.12).
func resolveSampleRate(ram []byte, addr int) int {
	lo := addr - 256
	if lo < 0 {
		lo = 0
	}
	hi := addr + 256
	if hi > len(ram)-2 {
		hi = len(ram) - 2
	}
	for i := lo; i <= hi; i++ {
		rate := int(ram[i]) | int(ram[i+1])<<8
		if knownSampleRates[rate] {
			return rate
		}
	}
	return defaultSampleRateHz
}
