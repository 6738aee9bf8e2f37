package sensor

// Color is the palette the EV3 color sensor reports.
type Color uint8

// Color codes as the sensor reports them.
const (
	ColorNone Color = iota
	ColorBlack
	ColorBlue
	ColorGreen
	ColorYellow
	ColorRed
	ColorWhite
	ColorBrown
)

func (c Color) String() string {
	switch c {
	case ColorBlack:
		return "black"
	case ColorBlue:
		return "blue"
	case ColorGreen:
		return "green"
	case ColorYellow:
		return "yellow"
	case ColorRed:
		return "red"
	case ColorWhite:
		return "white"
	case ColorBrown:
		return "brown"
	default:
		return "none"
	}
}
