package sumonetvis

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
)

// Net holds the network object model: edges with their lanes, junctions with
// their requests, and connections. It is built once from raw attributes,
// linked, and treated as read-only afterwards, so read access is safe to
// share across goroutines.
type Net struct {
	edges       map[string]*Edge
	edgeOrder   []string
	junctions   map[string]*Junction
	connections []*Connection
	lanes       map[string]*Lane
}

// NewNet returns an empty network.
func NewNet() *Net {
	return &Net{
		edges:     make(map[string]*Edge),
		junctions: make(map[string]*Junction),
		lanes:     make(map[string]*Lane),
	}
}

// AddEdge registers an edge and all its lanes.
func (net *Net) AddEdge(edge *Edge) {
	if _, ok := net.edges[edge.ID]; !ok {
		net.edgeOrder = append(net.edgeOrder, edge.ID)
	}
	net.edges[edge.ID] = edge
	for _, lane := range edge.lanes {
		net.lanes[lane.ID] = lane
	}
}

// AddJunction registers a junction.
func (net *Net) AddJunction(junction *Junction) {
	net.junctions[junction.ID] = junction
}

// AddConnection registers a connection.
func (net *Net) AddConnection(connection *Connection) {
	net.connections = append(net.connections, connection)
}

// Edge returns the edge with the given id, or nil.
func (net *Net) Edge(id string) *Edge {
	return net.edges[id]
}

// Edges returns all edges in input order.
func (net *Net) Edges() []*Edge {
	edges := make([]*Edge, 0, len(net.edgeOrder))
	for _, id := range net.edgeOrder {
		edges = append(edges, net.edges[id])
	}
	return edges
}

// Junction returns the junction with the given id, or nil.
func (net *Net) Junction(id string) *Junction {
	return net.junctions[id]
}

// Junctions returns all junctions.
func (net *Net) Junctions() []*Junction {
	junctions := make([]*Junction, 0, len(net.junctions))
	for _, junction := range net.junctions {
		junctions = append(junctions, junction)
	}
	return junctions
}

// Connections returns all connections.
func (net *Net) Connections() []*Connection {
	return net.connections
}

// Lane returns the lane with the given id, or nil.
func (net *Net) Lane(id string) *Lane {
	return net.lanes[id]
}

// LaneByID resolves a SUMO lane id of the form {edgeID}_{index} through the
// edge store, falling back to the flat lane index for internal lanes.
func (net *Net) LaneByID(laneID string) *Lane {
	if lane, ok := net.lanes[laneID]; ok {
		return lane
	}
	edgeID, index, err := splitLaneID(laneID)
	if err != nil {
		return nil
	}
	edge, ok := net.edges[edgeID]
	if !ok {
		return nil
	}
	return edge.Lane(index)
}

// Bounds returns the bounding box over all lane shapes.
func (net *Net) Bounds() orb.Bound {
	bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{0, 0}}
	first := true
	for _, edge := range net.edges {
		for _, lane := range edge.lanes {
			laneBound := lane.shape.Bound()
			if first {
				bound = laneBound
				first = false
				continue
			}
			bound = bound.Union(laneBound)
		}
	}
	return bound
}

// Link runs the linking pass: it resolves edge endpoints, connection and
// junction lane references, and attaches right-of-way requests to incoming
// lanes. It may be re-run; derived link state is rebuilt from scratch.
func (net *Net) Link() {
	for _, edge := range net.edges {
		edge.fromJunction = net.junctions[edge.FromJunctionID]
		edge.toJunction = net.junctions[edge.ToJunctionID]
		for _, lane := range edge.lanes {
			lane.incoming = nil
			lane.outgoing = nil
			lane.requests = nil
		}
	}

	for _, connection := range net.connections {
		connection.fromLane = net.LaneByID(fmt.Sprintf("%s_%d", connection.FromEdgeID, connection.FromLaneIndex))
		connection.toLane = net.LaneByID(fmt.Sprintf("%s_%d", connection.ToEdgeID, connection.ToLaneIndex))
		if connection.ViaLaneID != "" {
			connection.viaLane = net.LaneByID(connection.ViaLaneID)
		}
		if connection.fromLane != nil {
			connection.fromLane.outgoing = append(connection.fromLane.outgoing, connection)
		}
		if connection.toLane != nil {
			connection.toLane.incoming = append(connection.toLane.incoming, connection)
		}
	}

	for _, junction := range net.junctions {
		junction.incLanes = resolveLanes(net, junction.incLaneIDs)
		junction.intLanes = resolveLanes(net, junction.intLaneIDs)
	}

	for _, junction := range net.junctions {
		if junction.Type == JUNCTION_INTERNAL {
			continue
		}
		for _, lane := range junction.incLanes {
			net.attachRequests(junction, lane)
		}
	}
}

func resolveLanes(net *Net, laneIDs []string) []*Lane {
	lanes := make([]*Lane, 0, len(laneIDs))
	for _, laneID := range laneIDs {
		lane := net.LaneByID(laneID)
		if lane == nil {
			log.Warn("can't resolve lane reference", "lane", laneID)
			continue
		}
		lanes = append(lanes, lane)
	}
	return lanes
}

// attachRequests walks the outgoing connections of an incoming lane and
// attaches the junction request belonging to each movement's internal lane.
// Internal lanes may chain through a second internal lane before reaching a
// real target, so an unmatched via-lane is followed one more hop. Deeper
// chains are not attached.
func (net *Net) attachRequests(junction *Junction, lane *Lane) {
	for _, connection := range lane.outgoing {
		if connection.viaLane == nil {
			continue
		}
		if position, ok := junction.intLanePosition(connection.viaLane.ID); ok {
			if request, ok := junction.requests[position]; ok {
				lane.requests = append(lane.requests, request)
			}
			continue
		}
		matched := false
		for _, chained := range connection.viaLane.outgoing {
			if chained.viaLane == nil {
				continue
			}
			if position, ok := junction.intLanePosition(chained.viaLane.ID); ok {
				if request, ok := junction.requests[position]; ok {
					lane.requests = append(lane.requests, request)
					matched = true
				}
			}
		}
		if !matched {
			log.Warn("internal lane chain too deep, no request attached",
				"junction", junction.ID, "lane", lane.ID, "via", connection.viaLane.ID)
		}
	}
}
