package sumonetvis

import (
	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// DefaultLaneWidth is assumed for lanes without an explicit width attribute.
const DefaultLaneWidth = 3.2

// LaneType classifies a lane by its permission set, for coloring and
// marking synthesis.
type LaneType uint16

const (
	LANE_PEDESTRIAN = LaneType(iota + 1)
	LANE_CROSSWALK
	LANE_BICYCLE
	LANE_SHIP
	LANE_AUTHORITY
	LANE_NONE
	LANE_NO_PASSENGER
	LANE_OTHER
)

func (iotaIdx LaneType) String() string {
	return [...]string{"pedestrian", "crosswalk", "bicycle", "ship", "authority",
		"none", "no_passenger", "other"}[iotaIdx-1]
}

// Sumo-GUI default fill colors, exposed as style metadata for renderers.
var laneColorScheme = map[LaneType]string{
	LANE_PEDESTRIAN:   "#808080",
	LANE_CROSSWALK:    "#808080",
	LANE_BICYCLE:      "#C0422C",
	LANE_SHIP:         "#96C8C8",
	LANE_AUTHORITY:    "#FF0000",
	LANE_NONE:         "#FFFFFF",
	LANE_NO_PASSENGER: "#5C5C5C",
	LANE_OTHER:        "#000000",
}

const junctionColor = "#660000"

// Lane is a single traffic channel within an edge. The 2D polygon is derived
// eagerly at construction; markings and type classification are pure
// functions computed per call.
type Lane struct {
	ID     string
	Index  int
	Speed  float64
	Width  float64
	Allow  Allowance
	Params map[string]string

	alignment   orb.LineString
	shape       orb.Polygon
	stopOffsets []StopOffset

	parentEdge *Edge
	incoming   []*Connection
	outgoing   []*Connection
	requests   []*Request
}

// NewLane builds a Lane from its raw attributes. The centerline needs at
// least 2 coordinate pairs.
func NewLane(attrib map[string]string) (*Lane, error) {
	lane := &Lane{
		ID:     attrib["id"],
		Params: map[string]string{},
	}
	var err error
	if lane.Index, err = attrInt(attrib, "index", 0); err != nil {
		return nil, errors.Wrapf(err, "lane '%s'", lane.ID)
	}
	if lane.Speed, err = attrFloat(attrib, "speed", 0); err != nil {
		return nil, errors.Wrapf(err, "lane '%s'", lane.ID)
	}
	if lane.Width, err = attrFloat(attrib, "width", DefaultLaneWidth); err != nil {
		return nil, errors.Wrapf(err, "lane '%s'", lane.ID)
	}
	if lane.Allow, err = NewAllowance(attrString(attrib, "allow", ""), attrString(attrib, "disallow", "")); err != nil {
		return nil, errors.Wrapf(err, "lane '%s'", lane.ID)
	}
	if lane.alignment, err = parseShape(attrib["shape"], 2); err != nil {
		return nil, errors.Wrapf(err, "lane '%s'", lane.ID)
	}
	lane.computeShape()
	return lane, nil
}

// computeShape buffers the centerline by half the lane width with flat end
// caps. A non-simple result gets the zero-width repair pass; a failed offset
// degrades to a collapsed ring along the centerline.
func (lane *Lane) computeShape() {
	polygon, err := bufferLine(lane.alignment, lane.Width)
	if err != nil {
		log.Warn("can't buffer lane centerline, degrading to collapsed shape", "lane", lane.ID, "err", err)
		ring := make(orb.Ring, 0, 2*len(lane.alignment)+1)
		ring = append(ring, lane.alignment...)
		ring = append(ring, reverseLine(lane.alignment)...)
		ring = append(ring, ring[0])
		lane.shape = orb.Polygon{ring}
		return
	}
	ring := polygon[0]
	if !ringIsSimple(ring) {
		ring = repairRing(ring)
	}
	lane.shape = orb.Polygon{ring}
}

// Shape returns the lane's 2D polygon.
func (lane *Lane) Shape() orb.Polygon {
	return lane.shape
}

// Alignment returns the lane centerline.
func (lane *Lane) Alignment() orb.LineString {
	return lane.alignment
}

// Length returns the centerline arc length.
func (lane *Lane) Length() float64 {
	return lineLength(lane.alignment)
}

// ParentEdge returns the owning edge.
func (lane *Lane) ParentEdge() *Edge {
	return lane.parentEdge
}

// IncomingConnections returns the connections ending at this lane.
func (lane *Lane) IncomingConnections() []*Connection {
	return lane.incoming
}

// OutgoingConnections returns the connections starting at this lane.
func (lane *Lane) OutgoingConnections() []*Connection {
	return lane.outgoing
}

// Requests returns the right-of-way requests attached during linking.
func (lane *Lane) Requests() []*Request {
	return lane.requests
}

// InverseIndex returns the lane index counted from the inside out: 0 is the
// innermost (centerline-adjacent) lane, LaneCount-1 the curb lane.
func (lane *Lane) InverseIndex() int {
	return lane.parentEdge.LaneCount() - lane.Index - 1
}

// AddStopOffset registers a lane-level stop offset rule, overriding the
// parent edge's rules.
func (lane *Lane) AddStopOffset(stopOffset StopOffset) {
	lane.stopOffsets = append(lane.stopOffsets, stopOffset)
}

// Type classifies the lane from its permission set. Pedestrian-only lanes of
// a crossing edge classify as crosswalk.
func (lane *Lane) Type() LaneType {
	allow := lane.Allow
	switch {
	case allow.allowsExclusively(CLASS_PEDESTRIAN):
		if lane.parentEdge != nil && lane.parentEdge.Function == EDGE_CROSSING {
			return LANE_CROSSWALK
		}
		return LANE_PEDESTRIAN
	case allow.allowsExclusively(CLASS_BICYCLE):
		return LANE_BICYCLE
	case allow.allowsExclusively(CLASS_SHIP):
		return LANE_SHIP
	case allow.allowsExclusively(CLASS_AUTHORITY):
		return LANE_AUTHORITY
	case allow.AllowsNone():
		return LANE_NONE
	case !allow.Allows(CLASS_PASSENGER):
		return LANE_NO_PASSENGER
	}
	return LANE_OTHER
}

// Color returns the Sumo-GUI default fill color for the lane.
func (lane *Lane) Color() string {
	return laneColorScheme[lane.Type()]
}

// LeftEdge returns the lane boundary curve on the left of the direction of
// travel.
func (lane *Lane) LeftEdge() (orb.LineString, error) {
	return offsetCurve(lane.alignment, lane.Width/2)
}

// RightEdge returns the lane boundary curve on the right of the direction of
// travel.
func (lane *Lane) RightEdge() (orb.LineString, error) {
	return offsetCurve(lane.alignment, -lane.Width/2)
}

// destinationJunction returns the junction at the downstream end of the
// parent edge, or nil if unresolved.
func (lane *Lane) destinationJunction() *Junction {
	if lane.parentEdge == nil {
		return nil
	}
	return lane.parentEdge.toJunction
}

// RequiresStopLine reports whether the lane's exit warrants a stop line:
// never toward internal or zipper junctions, always toward all-way stops,
// otherwise whenever some attached request makes the lane yield.
func (lane *Lane) RequiresStopLine() bool {
	junction := lane.destinationJunction()
	if junction == nil {
		return false
	}
	switch junction.Type {
	case JUNCTION_INTERNAL, JUNCTION_ZIPPER:
		return false
	case JUNCTION_ALLWAY_STOP:
		return true
	}
	for _, request := range lane.requests {
		if request.MustYield() {
			return true
		}
	}
	return false
}

// stopLineLocations returns the configured stop offsets (own, else inherited
// from the parent edge), plus an implicit zero offset when the configured
// rules do not cover every class the lane itself allows.
func (lane *Lane) stopLineLocations() []StopOffset {
	offsets := lane.stopOffsets
	if len(offsets) == 0 && lane.parentEdge != nil {
		offsets = lane.parentEdge.stopOffsets
	}
	covered := Allowance{}
	for _, offset := range offsets {
		covered = covered.Union(offset.Allowance)
	}
	if !covered.IsSupersetOf(lane.Allow) {
		offsets = append(offsets[:len(offsets):len(offsets)], StopOffset{Value: 0, Allowance: lane.Allow})
	}
	return offsets
}
