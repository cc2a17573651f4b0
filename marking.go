package sumonetvis

import (
	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
)

// MarkingPurpose discriminates the synthesized marking variants.
type MarkingPurpose uint16

const (
	MARKING_CENTER = MarkingPurpose(iota + 1)
	MARKING_LANE
	MARKING_OUTER
	MARKING_STOPLINE
	MARKING_CROSSING
	MARKING_BUSSTOP
)

func (iotaIdx MarkingPurpose) String() string {
	return [...]string{"center", "lane", "outer", "stopline", "crossing", "busstop"}[iotaIdx-1]
}

const (
	markingColorWhite  = "#FFFFFF"
	markingColorYellow = "#FFCC00"
)

// DashPattern is a painted line pattern in distance units; a zero gap means
// a solid line.
type DashPattern struct {
	Dash float64
	Gap  float64
}

// IsSolid reports whether the pattern paints a continuous line.
func (dashes DashPattern) IsSolid() bool {
	return dashes.Gap == 0
}

var (
	dashesSolid       = DashPattern{Dash: 100, Gap: 0}
	dashesLaneDefault = DashPattern{Dash: 3, Gap: 9}
	dashesShort       = DashPattern{Dash: 1, Gap: 3}
	dashesCrossing    = DashPattern{Dash: 0.5, Gap: 0.5}
)

// Marking is a synthesized lane marking segment: an alignment polyline plus
// paint metadata. It is a transient derived value, recomputed per call.
type Marking struct {
	Alignment orb.LineString
	Width     float64
	Color     string
	Dashes    DashPattern
	Purpose   MarkingPurpose

	lane *Lane // originating lane, for traceability; may be nil
}

// Lane returns the lane the marking was synthesized from, if any.
func (marking Marking) Lane() *Lane {
	return marking.lane
}

// Markings synthesizes the lane's markings under the given style. The result
// is a pure function of the lane, its parent edge and the style; passing nil
// selects the default style.
func (lane *Lane) Markings(style *Style) []Marking {
	style = style.orDefault()
	var markings []Marking
	if lane.parentEdge == nil || lane.parentEdge.Function == EDGE_INTERNAL || lane.Allow.allowsOnlyRailOrShip() {
		return markings
	}
	if lane.parentEdge.Function == EDGE_CROSSING {
		// Zebra convention: one dashed stripe covering the full lane width
		markings = append(markings, Marking{
			Alignment: lane.alignment,
			Width:     lane.Width,
			Color:     markingColorWhite,
			Dashes:    dashesCrossing,
			Purpose:   MARKING_CROSSING,
			lane:      lane,
		})
		return markings
	}

	lineWidth := style.stripeWidth()
	if lane.InverseIndex() == 0 {
		offsetDistance := lane.Width / 2
		color := markingColorWhite
		if style.markingStyle == STYLE_USA {
			offsetDistance -= lineWidth
			color = markingColorYellow
		}
		if leftEdge, err := offsetCurve(lane.alignment, offsetDistance); err != nil {
			log.Warn("can't offset centerline marking", "lane", lane.ID, "err", err)
		} else {
			markings = append(markings, Marking{
				Alignment: leftEdge,
				Width:     lineWidth,
				Color:     color,
				Dashes:    dashesSolid,
				Purpose:   MARKING_CENTER,
				lane:      lane,
			})
		}
	} else {
		dashes := dashesLaneDefault
		if neighbor := lane.parentEdge.Lane(lane.Index + 1); neighbor != nil {
			if lane.Allow.Allows(CLASS_BICYCLE) != neighbor.Allow.Allows(CLASS_BICYCLE) {
				// Bicycles may not change lanes here
				dashes = dashesSolid
			} else if lane.Allow.Allows(CLASS_PASSENGER) != neighbor.Allow.Allows(CLASS_PASSENGER) {
				if lane.Allow.Allows(CLASS_BICYCLE) {
					dashes = dashesShort
				} else {
					dashes = dashesSolid
				}
			}
		}
		if leftEdge, err := lane.LeftEdge(); err != nil {
			log.Warn("can't offset lane marking", "lane", lane.ID, "err", err)
		} else {
			markings = append(markings, Marking{
				Alignment: leftEdge,
				Width:     lineWidth,
				Color:     markingColorWhite,
				Dashes:    dashes,
				Purpose:   MARKING_LANE,
				lane:      lane,
			})
		}
	}

	// A single-lane edge already carries the centerline along its left edge;
	// drawing an outer line too would double-stripe it.
	if lane.Index == 0 && lane.InverseIndex() != 0 &&
		!(lane.Allow.Allows(CLASS_PEDESTRIAN) && !lane.Allow.AllowsAll()) {
		if rightEdge, err := lane.RightEdge(); err != nil {
			log.Warn("can't offset outer marking", "lane", lane.ID, "err", err)
		} else {
			markings = append(markings, Marking{
				Alignment: rightEdge,
				Width:     lineWidth,
				Color:     markingColorWhite,
				Dashes:    dashesSolid,
				Purpose:   MARKING_OUTER,
				lane:      lane,
			})
		}
	}

	if style.plotStopLines && lane.RequiresStopLine() {
		markings = append(markings, lane.stopLineMarkings(style)...)
	}
	return markings
}

// stopLineMarkings places one transverse stop line per configured location,
// measured back from the downstream lane end.
func (lane *Lane) stopLineMarkings(style *Style) []Marking {
	leftEdge, err := lane.LeftEdge()
	if err != nil {
		log.Warn("can't offset stop line edge", "lane", lane.ID, "err", err)
		return nil
	}
	rightEdge, err := lane.RightEdge()
	if err != nil {
		log.Warn("can't offset stop line edge", "lane", lane.ID, "err", err)
		return nil
	}
	length := lane.Length()
	lineWidth := style.stopLineWidth()
	var markings []Marking
	for _, location := range lane.stopLineLocations() {
		if location.Value > length {
			log.Warn("stop offset beyond lane length, skipping", "lane", lane.ID,
				"offset", location.Value, "length", length)
			continue
		}
		position := length - location.Value - lineWidth/2
		if position < 0 {
			position = 0
		}
		markings = append(markings, Marking{
			Alignment: orb.LineString{
				pointAtDistance(leftEdge, position),
				pointAtDistance(rightEdge, position),
			},
			Width:   lineWidth,
			Color:   markingColorWhite,
			Dashes:  dashesSolid,
			Purpose: MARKING_STOPLINE,
			lane:    lane,
		})
	}
	return markings
}

// dashPolygons decomposes the marking into independently buffered painted
// segments: one per dash, sampled along arc length by dash+gap steps. Solid
// markings yield a single buffered polygon.
func (marking Marking) dashPolygons() []orb.Polygon {
	var polygons []orb.Polygon
	appendSegment := func(segment orb.LineString) {
		polygon, err := bufferLine(segment, marking.Width)
		if err != nil {
			log.Warn("can't buffer marking segment", "purpose", marking.Purpose, "err", err)
			return
		}
		polygons = append(polygons, polygon)
	}
	length := lineLength(marking.Alignment)
	if marking.Dashes.IsSolid() || marking.Dashes.Dash <= 0 {
		appendSegment(marking.Alignment)
		return polygons
	}
	step := marking.Dashes.Dash + marking.Dashes.Gap
	for start := 0.0; start < length; start += step {
		end := start + marking.Dashes.Dash
		if end > length {
			end = length
		}
		segment := substring(marking.Alignment, start, end)
		if lineLength(segment) <= 0 {
			continue
		}
		appendSegment(segment)
	}
	return polygons
}
