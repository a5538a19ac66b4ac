package core

// Color represents a foreground color for a screen cell.
// Mapped to ANSI 256-color codes by the platform renderer.
type Color uint8

// Colors used by the track, cars and HUD.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightYellow
	ColorOrange
	ColorGray
)

// VariantColors is the palette obstacle cars cycle through by variant.
var VariantColors = []Color{
	ColorRed,
	ColorGreen,
	ColorBlue,
	ColorMagenta,
	ColorCyan,
	ColorOrange,
	ColorWhite,
	ColorBrightRed,
}
