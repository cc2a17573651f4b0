package sumonetvis

import (
	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Connection is a directed link from one lane to another through a junction,
// optionally routed via an internal lane. Lane references are resolved
// during linking.
type Connection struct {
	FromEdgeID    string
	FromLaneIndex int
	ToEdgeID      string
	ToLaneIndex   int
	ViaLaneID     string
	Direction     string
	State         string

	explicitShape orb.LineString

	fromLane *Lane
	toLane   *Lane
	viaLane  *Lane
}

// NewConnection builds a Connection from its raw attributes.
func NewConnection(attrib map[string]string) (*Connection, error) {
	connection := &Connection{
		FromEdgeID: attrib["from"],
		ToEdgeID:   attrib["to"],
		ViaLaneID:  attrString(attrib, "via", ""),
		Direction:  attrString(attrib, "dir", ""),
		State:      attrString(attrib, "state", ""),
	}
	var err error
	if connection.FromLaneIndex, err = attrInt(attrib, "fromLane", 0); err != nil {
		return nil, errors.Wrapf(err, "connection %s->%s", connection.FromEdgeID, connection.ToEdgeID)
	}
	if connection.ToLaneIndex, err = attrInt(attrib, "toLane", 0); err != nil {
		return nil, errors.Wrapf(err, "connection %s->%s", connection.FromEdgeID, connection.ToEdgeID)
	}
	if shape, ok := attrib["shape"]; ok && shape != "" {
		if connection.explicitShape, err = parseShape(shape, 2); err != nil {
			return nil, errors.Wrapf(err, "connection %s->%s", connection.FromEdgeID, connection.ToEdgeID)
		}
	}
	return connection, nil
}

// FromLane returns the resolved origin lane, or nil.
func (connection *Connection) FromLane() *Lane {
	return connection.fromLane
}

// ToLane returns the resolved target lane, or nil.
func (connection *Connection) ToLane() *Lane {
	return connection.toLane
}

// ViaLane returns the resolved internal lane, or nil for direct connections.
func (connection *Connection) ViaLane() *Lane {
	return connection.viaLane
}

// viaInterior returns the via-lane centerline offset to one side, reduced to
// its interior points. On offset failure the interior is empty, degrading
// the connection shape to its terminal cross-sections.
func viaInterior(via orb.LineString, distance float64) orb.LineString {
	offset, err := offsetCurve(via, distance)
	if err != nil {
		log.Warn("can't offset via lane, using terminal endpoints only", "err", err)
		return nil
	}
	if len(offset) <= 2 {
		return nil
	}
	return offset[1 : len(offset)-1]
}

// Shape reconstructs the junction-interior connector polygon by stitching
// the from-lane exit edge, the via-lane offset curves and the to-lane entry
// edge. An explicit shape from the source data takes precedence; otherwise
// all three lane references must be resolved.
func (connection *Connection) Shape() (orb.Polygon, error) {
	if connection.explicitShape != nil {
		width := DefaultLaneWidth
		if connection.fromLane != nil {
			width = connection.fromLane.Width
		}
		polygon, err := bufferLine(connection.explicitShape, width)
		if err != nil {
			return nil, errors.Wrapf(err, "connection %s->%s", connection.FromEdgeID, connection.ToEdgeID)
		}
		return polygon, nil
	}
	if connection.fromLane == nil || connection.viaLane == nil || connection.toLane == nil {
		return nil, errors.Wrapf(ErrUnresolvedReference, "connection %s_%d->%s_%d",
			connection.FromEdgeID, connection.FromLaneIndex, connection.ToEdgeID, connection.ToLaneIndex)
	}

	halfWidth := connection.fromLane.Width / 2
	fromExitLeft, fromExitRight := crossSection(connection.fromLane, false)
	toEntryLeft, toEntryRight := crossSection(connection.toLane, true)

	via := connection.viaLane.alignment
	viaRight := viaInterior(via, -halfWidth)
	viaLeft := viaInterior(via, halfWidth)

	ring := make(orb.Ring, 0, len(viaLeft)+len(viaRight)+5)
	ring = append(ring, fromExitRight)
	ring = append(ring, viaRight...)
	ring = append(ring, toEntryRight, toEntryLeft)
	ring = append(ring, reverseLine(viaLeft)...)
	ring = append(ring, fromExitLeft)
	ring = append(ring, ring[0])
	return orb.Polygon{ring}, nil
}

// crossSection returns the left and right boundary points of a lane's entry
// (first) or exit (last) cross-section. Offset failures degrade to the
// centerline endpoint.
func crossSection(lane *Lane, entry bool) (orb.Point, orb.Point) {
	terminal := func(line orb.LineString) orb.Point {
		if entry {
			return line[0]
		}
		return line[len(line)-1]
	}
	left, errLeft := lane.LeftEdge()
	right, errRight := lane.RightEdge()
	if errLeft != nil || errRight != nil {
		log.Warn("can't offset lane cross-section, using centerline endpoint", "lane", lane.ID)
		point := terminal(lane.alignment)
		return point, point
	}
	return terminal(left), terminal(right)
}
