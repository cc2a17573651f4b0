package sumonetvis

import (
	"github.com/pkg/errors"
)

// MarkingStyle selects the regional lane marking convention.
type MarkingStyle uint16

const (
	STYLE_EUR = MarkingStyle(iota + 1)
	STYLE_USA
)

func (iotaIdx MarkingStyle) String() string {
	return [...]string{"EUR", "USA"}[iotaIdx-1]
}

// MarkingStyleFromString maps a style name to its enum value.
func MarkingStyleFromString(name string) (MarkingStyle, error) {
	switch name {
	case "EUR":
		return STYLE_EUR, nil
	case "USA":
		return STYLE_USA, nil
	}
	return 0, errors.Wrapf(ErrInvalidStyle, "marking style '%s'", name)
}

// BusStopStyle selects the bus stop outline and marking convention.
type BusStopStyle uint16

const (
	BUS_STOP_STYLE_SUMO = BusStopStyle(iota + 1)
	BUS_STOP_STYLE_GER
	BUS_STOP_STYLE_UK
	BUS_STOP_STYLE_USA
)

func (iotaIdx BusStopStyle) String() string {
	return [...]string{"SUMO", "GER", "UK", "USA"}[iotaIdx-1]
}

// BusStopStyleFromString maps a bus stop style name to its enum value.
func BusStopStyleFromString(name string) (BusStopStyle, error) {
	switch name {
	case "SUMO":
		return BUS_STOP_STYLE_SUMO, nil
	case "GER":
		return BUS_STOP_STYLE_GER, nil
	case "UK":
		return BUS_STOP_STYLE_UK, nil
	case "USA":
		return BUS_STOP_STYLE_USA, nil
	}
	return 0, errors.Wrapf(ErrInvalidStyle, "bus stop style '%s'", name)
}

// Style bundles the marking synthesis settings. It is threaded explicitly
// through every derivation call, so results stay a pure function of the
// network plus the Style value and concurrent use needs no synchronization.
type Style struct {
	markingStyle     MarkingStyle
	stripeWidthScale float64
	plotStopLines    bool
	busStopStyle     BusStopStyle
}

// NewStyle returns a Style with European markings, unscaled stripe widths,
// stop lines enabled and SUMO-style bus stops, modified by the given options.
func NewStyle(options ...func(*Style)) *Style {
	style := &Style{
		markingStyle:     STYLE_EUR,
		stripeWidthScale: 1.0,
		plotStopLines:    true,
		busStopStyle:     BUS_STOP_STYLE_SUMO,
	}
	for _, option := range options {
		option(style)
	}
	return style
}

func WithMarkingStyle(markingStyle MarkingStyle) func(*Style) {
	return func(style *Style) {
		style.markingStyle = markingStyle
	}
}

// WithUSMarkings selects the USA lane marking convention.
func WithUSMarkings() func(*Style) {
	return WithMarkingStyle(STYLE_USA)
}

func WithStripeWidthScale(scale float64) func(*Style) {
	return func(style *Style) {
		if scale > 0 {
			style.stripeWidthScale = scale
		}
	}
}

func WithStopLines(plotStopLines bool) func(*Style) {
	return func(style *Style) {
		style.plotStopLines = plotStopLines
	}
}

func WithBusStopStyle(busStopStyle BusStopStyle) func(*Style) {
	return func(style *Style) {
		style.busStopStyle = busStopStyle
	}
}

// orDefault lets callers pass a nil Style for the defaults.
func (style *Style) orDefault() *Style {
	if style == nil {
		return NewStyle()
	}
	return style
}

// stripeWidth returns the standard painted stripe width scaled by the
// configured factor.
func (style *Style) stripeWidth() float64 {
	return 0.1 * style.stripeWidthScale
}

// stopLineWidth returns the painted stop line width scaled by the configured
// factor.
func (style *Style) stopLineWidth() float64 {
	return 0.5 * style.stripeWidthScale
}
