package board

// SymbolSpec is one entry of the static symbol catalog. The catalog is
// supplied data, not something the engine edits.
type SymbolSpec struct {
	Type  string
	Label string
	Emoji string
}

// SymbolSite is the catalog type dropped by the "site marker" action.
const SymbolSite = "site"

// SymbolBuilding is the catalog type whose placements get a sequential
// number.
const SymbolBuilding = "building"

// Catalog returns the built-in symbol catalog in display order.
func Catalog() []SymbolSpec {
	return []SymbolSpec{
		{Type: SymbolSite, Label: "Site", Emoji: "📍"},
		{Type: SymbolBuilding, Label: "Building", Emoji: "🏠"},
		{Type: "antenna", Label: "Antenna", Emoji: "📡"},
		{Type: "mast", Label: "Mast", Emoji: "🗼"},
		{Type: "cabinet", Label: "Cabinet", Emoji: "🗄️"},
		{Type: "access", Label: "Access", Emoji: "🚧"},
		{Type: "power", Label: "Power", Emoji: "⚡"},
	}
}

// CatalogSpec looks up a catalog entry by type.
func CatalogSpec(symbolType string) (SymbolSpec, bool) {
	for _, s := range Catalog() {
		if s.Type == symbolType {
			return s, true
		}
	}
	return SymbolSpec{}, false
}
