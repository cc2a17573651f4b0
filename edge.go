package sumonetvis

// EdgeFunction describes the role of an edge within the network.
type EdgeFunction uint16

const (
	EDGE_NORMAL = EdgeFunction(iota + 1)
	EDGE_INTERNAL
	EDGE_CROSSING
	EDGE_WALKINGAREA
)

func (iotaIdx EdgeFunction) String() string {
	return [...]string{"normal", "internal", "crossing", "walkingarea"}[iotaIdx-1]
}

func edgeFunctionFromString(function string) EdgeFunction {
	switch function {
	case "internal":
		return EDGE_INTERNAL
	case "crossing":
		return EDGE_CROSSING
	case "walkingarea":
		return EDGE_WALKINGAREA
	}
	return EDGE_NORMAL
}

// StopOffset is a stop line placement rule: an offset from the lane end and
// the vehicle classes it applies to.
type StopOffset struct {
	Value     float64
	Allowance Allowance
}

// Edge is a directed roadway segment composed of one or more parallel lanes.
// It exclusively owns its lanes; junction endpoints are resolved to weak
// references during linking and may stay nil for networks without junctions.
type Edge struct {
	ID             string
	Function       EdgeFunction
	FromJunctionID string
	ToJunctionID   string
	Params         map[string]string

	fromJunction *Junction
	toJunction   *Junction
	lanes        []*Lane
	stopOffsets  []StopOffset
}

// NewEdge builds an Edge from its raw attributes. Lanes are appended
// separately with AppendLane.
func NewEdge(attrib map[string]string) *Edge {
	return &Edge{
		ID:             attrib["id"],
		Function:       edgeFunctionFromString(attrString(attrib, "function", "")),
		FromJunctionID: attrString(attrib, "from", ""),
		ToJunctionID:   attrString(attrib, "to", ""),
		Params:         map[string]string{},
	}
}

// AppendLane makes the given lane a child of the edge.
func (edge *Edge) AppendLane(lane *Lane) {
	edge.lanes = append(edge.lanes, lane)
	lane.parentEdge = edge
}

// LaneCount returns the number of lanes owned by the edge.
func (edge *Edge) LaneCount() int {
	return len(edge.lanes)
}

// Lanes returns the owned lanes ordered by index.
func (edge *Edge) Lanes() []*Lane {
	return edge.lanes
}

// Lane returns the lane with the given index, or nil if out of range.
func (edge *Edge) Lane(index int) *Lane {
	if index < 0 || index >= len(edge.lanes) {
		return nil
	}
	return edge.lanes[index]
}

// AddStopOffset registers an edge-level stop offset rule, inherited by lanes
// without their own.
func (edge *Edge) AddStopOffset(stopOffset StopOffset) {
	edge.stopOffsets = append(edge.stopOffsets, stopOffset)
}

// FromJunction returns the resolved upstream junction, or nil.
func (edge *Edge) FromJunction() *Junction {
	return edge.fromJunction
}

// ToJunction returns the resolved downstream junction, or nil.
func (edge *Edge) ToJunction() *Junction {
	return edge.toJunction
}
