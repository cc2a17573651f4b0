package sumonetvis

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// JunctionType is the SUMO junction type enumeration.
type JunctionType uint16

const (
	JUNCTION_PRIORITY = JunctionType(iota + 1)
	JUNCTION_TRAFFIC_LIGHT
	JUNCTION_RIGHT_BEFORE_LEFT
	JUNCTION_LEFT_BEFORE_RIGHT
	JUNCTION_UNREGULATED
	JUNCTION_PRIORITY_STOP
	JUNCTION_ALLWAY_STOP
	JUNCTION_RAIL_SIGNAL
	JUNCTION_RAIL_CROSSING
	JUNCTION_ZIPPER
	JUNCTION_DEAD_END
	JUNCTION_INTERNAL
	JUNCTION_UNKNOWN = JunctionType(0)
)

func (iotaIdx JunctionType) String() string {
	return [...]string{"unknown", "priority", "traffic_light", "right_before_left",
		"left_before_right", "unregulated", "priority_stop", "allway_stop",
		"rail_signal", "rail_crossing", "zipper", "dead_end", "internal"}[iotaIdx]
}

var junctionTypeByName = map[string]JunctionType{
	"priority":          JUNCTION_PRIORITY,
	"traffic_light":     JUNCTION_TRAFFIC_LIGHT,
	"right_before_left": JUNCTION_RIGHT_BEFORE_LEFT,
	"left_before_right": JUNCTION_LEFT_BEFORE_RIGHT,
	"unregulated":       JUNCTION_UNREGULATED,
	"priority_stop":     JUNCTION_PRIORITY_STOP,
	"allway_stop":       JUNCTION_ALLWAY_STOP,
	"rail_signal":       JUNCTION_RAIL_SIGNAL,
	"rail_crossing":     JUNCTION_RAIL_CROSSING,
	"zipper":            JUNCTION_ZIPPER,
	"dead_end":          JUNCTION_DEAD_END,
	"internal":          JUNCTION_INTERNAL,
}

// Request is a per-junction right-of-way entry. Response and Foes hold one
// bit per conflicting internal lane, '1' meaning the movement must yield to,
// respectively conflicts with, that lane.
type Request struct {
	Index     int
	Response  string
	Foes      string
	Continues bool
}

// NewRequest builds a Request from its raw attributes.
func NewRequest(attrib map[string]string) (*Request, error) {
	index, err := attrInt(attrib, "index", 0)
	if err != nil {
		return nil, err
	}
	return &Request{
		Index:     index,
		Response:  attrString(attrib, "response", ""),
		Foes:      attrString(attrib, "foes", ""),
		Continues: attrBool(attrib, "cont", false),
	}, nil
}

// MustYield reports whether the movement has to yield to at least one
// conflicting internal lane.
func (request *Request) MustYield() bool {
	return strings.ContainsRune(request.Response, '1')
}

// Junction is a node where edges meet. It owns its right-of-way requests;
// incoming and internal lane references are resolved during linking.
type Junction struct {
	ID     string
	Type   JunctionType
	Params map[string]string

	shape      orb.Ring
	incLaneIDs []string
	intLaneIDs []string
	incLanes   []*Lane
	intLanes   []*Lane
	requests   map[int]*Request
}

// NewJunction builds a Junction from its raw attributes. A shape attribute
// with fewer than 3 coordinate pairs is malformed; an absent shape is fine.
func NewJunction(attrib map[string]string) (*Junction, error) {
	junction := &Junction{
		ID:       attrib["id"],
		Type:     junctionTypeByName[attrString(attrib, "type", "")],
		Params:   map[string]string{},
		requests: map[int]*Request{},
	}
	if shape, ok := attrib["shape"]; ok && shape != "" {
		line, err := parseShape(shape, 3)
		if err != nil {
			return nil, errors.Wrapf(err, "junction '%s'", junction.ID)
		}
		ring := orb.Ring(line)
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		junction.shape = ring
	}
	if incLanes := attrString(attrib, "incLanes", ""); incLanes != "" {
		junction.incLaneIDs = strings.Fields(incLanes)
	}
	if intLanes := attrString(attrib, "intLanes", ""); intLanes != "" {
		junction.intLaneIDs = strings.Fields(intLanes)
	}
	return junction, nil
}

// AddRequest registers a right-of-way request owned by the junction.
func (junction *Junction) AddRequest(request *Request) {
	junction.requests[request.Index] = request
}

// Shape returns the junction boundary, or nil if the source data had none.
func (junction *Junction) Shape() orb.Ring {
	return junction.shape
}

// IncomingLanes returns the resolved incoming lanes.
func (junction *Junction) IncomingLanes() []*Lane {
	return junction.incLanes
}

// InternalLanes returns the resolved internal lanes, ordered as in the
// source data; a request with index i belongs to the i-th internal lane.
func (junction *Junction) InternalLanes() []*Lane {
	return junction.intLanes
}

// intLanePosition returns the position of the given lane id in the internal
// lane list.
func (junction *Junction) intLanePosition(laneID string) (int, bool) {
	for i, id := range junction.intLaneIDs {
		if id == laneID {
			return i, true
		}
	}
	return 0, false
}
