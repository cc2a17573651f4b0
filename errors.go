package sumonetvis

import (
	"github.com/pkg/errors"
)

var (
	// ErrMalformedGeometry is returned when a shape attribute holds too few
	// coordinates or a derived buffer degenerates.
	ErrMalformedGeometry = errors.New("malformed geometry")
	// ErrUnresolvedReference is returned when a connection's from/via/to lane
	// could not be resolved during linking.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrInvalidVehicleClass is returned for vehicle class names outside the
	// closed SUMO vehicle class enumeration.
	ErrInvalidVehicleClass = errors.New("invalid vehicle class")
	// ErrInvalidStyle is returned for unknown marking or bus stop style names.
	ErrInvalidStyle = errors.New("invalid style")
	// ErrUnsupportedGeometry is returned by the triangulator for
	// non-polygonal input.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
	// ErrCurveOffset is returned when a parallel offset can not produce a
	// valid curve. Callers are expected to degrade to a simpler shape.
	ErrCurveOffset = errors.New("can't offset curve")
)
