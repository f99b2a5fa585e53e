package render

// Glyph ramps for monochrome terminals, darkest first.
var (
	defaultPalette = []rune(" .,:-=+*#%@")
	boxPalette     = []rune(" ░▒▓█")
	linesPalette   = []rune(" .-~=≈≡")
	sparkPalette   = []rune(" ·•o●")
)

// Palette returns the glyph ramp used to map brightness to characters.
func Palette(name string) []rune {
	switch name {
	case "box":
		return boxPalette
	case "lines":
		return linesPalette
	case "spark":
		return sparkPalette
	default:
		return defaultPalette
	}
}

// PaletteNames returns all palette identifiers.
func PaletteNames() []string {
	return []string{"default", "box", "lines", "spark"}
}
