package pipeline

import "github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"

// Options carries everything the pipeline's external collaborators
// supply: seed addresses in addition to the ROM's own vectors, and
// symbol/label/comment hints applied after enrichment (spec.md §6
// External Interfaces). Cancellation is supplied via the context.Context
// passed to Run (spec.md §5 Cancellation).
type Options struct {
	Seeds       []rom.Address
	SymbolHints map[rom.Address]string
}
