package symbols

// SymbolID is a dense index into a Table's symbol arena. Zero is reserved
// for NoSymbolID.
type SymbolID uint32

// ReferenceID is a dense index into a Table's reference arena. Zero is
// reserved for NoReferenceID.
type ReferenceID uint32

const (
	NoSymbolID    SymbolID    = 0
	NoReferenceID ReferenceID = 0
)

// IsValid reports whether id can denote a symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// IsValid reports whether id can denote a reference.
func (id ReferenceID) IsValid() bool { return id != NoReferenceID }
