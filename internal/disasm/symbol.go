package disasm

import "github.com/Blankenship-Daniel/snes-disasm-sub000/internal/rom"

// SymbolKind tags what a Symbol names (spec.md §3 Symbol).
type SymbolKind int

const (
	SymbolCode SymbolKind = iota
	SymbolData
	SymbolFunction
	SymbolVariable
	SymbolConstant
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolCode:
		return "Code"
	case SymbolData:
		return "Data"
	case SymbolFunction:
		return "Function"
	case SymbolVariable:
		return "Variable"
	case SymbolConstant:
		return "Constant"
	default:
		return "Unknown"
	}
}

// Symbol is a named address with its references and confidence (spec.md
// §3 Symbol).
type Symbol struct {
	Addr        rom.Address
	Name        string
	Kind        SymbolKind
	Size        int
	HasSize     bool
	References  []rom.Address
	Confidence  float64
	Description string
}

// BuildSymbolTable derives a default symbol for every function start and
// every resolved data structure base, named by address unless overridden
// by a caller-supplied hint (spec.md §6 Symbol/label/comment hints).
func BuildSymbolTable(funcs map[rom.Address]*Function, structures []DataStructure, xref map[rom.Address][]CrossReference, hints map[rom.Address]string) map[rom.Address]*Symbol {
	symbols := make(map[rom.Address]*Symbol)

	for addr, fn := range funcs {
		sym := &Symbol{
			Addr:       addr,
			Name:       defaultFunctionName(addr),
			Kind:       SymbolFunction,
			Confidence: fn.Confidence,
		}
		applyRefs(sym, xref)
		symbols[addr] = sym
	}

	for _, ds := range structures {
		if _, exists := symbols[ds.Addr]; exists {
			continue
		}
		sym := &Symbol{
			Addr:       ds.Addr,
			Name:       defaultDataName(ds),
			Kind:       SymbolData,
			Size:       ds.Size,
			HasSize:    true,
			Confidence: ds.Confidence,
		}
		applyRefs(sym, xref)
		symbols[ds.Addr] = sym
	}

	for addr, name := range hints {
		if sym, ok := symbols[addr]; ok {
			sym.Name = name
		} else {
			symbols[addr] = &Symbol{Addr: addr, Name: name, Kind: SymbolVariable, Confidence: 1.0}
		}
	}

	return symbols
}

func applyRefs(sym *Symbol, xref map[rom.Address][]CrossReference) {
	for _, ref := range xref[sym.Addr] {
		sym.References = append(sym.References, ref.Source)
	}
}

func defaultFunctionName(addr rom.Address) string {
	return hexName("FUN", addr)
}

func defaultDataName(ds DataStructure) string {
	prefix := ds.Kind.String()
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return hexName(prefix, ds.Addr)
}

func hexName(prefix string, addr rom.Address) string {
	const hexDigits = "0123456789ABCDEF"
	v := uint32(addr)
	buf := [6]byte{}
	for i := 5; i >= 0; i-- {
		buf[i] = hexDigits[v&0xF]
		v >>= 4
	}
	return prefix + "_" + string(buf[:])
}
