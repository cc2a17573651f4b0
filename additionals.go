package sumonetvis

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

var sumoNamedColors = map[string]string{
	"red":     "#FF0000",
	"green":   "#00FF00",
	"blue":    "#0000FF",
	"yellow":  "#FFFF00",
	"cyan":    "#00FFFF",
	"magenta": "#FF00FF",
	"orange":  "#FF8000",
	"white":   "#FFFFFF",
	"black":   "#000000",
	"grey":    "#808080",
	"gray":    "#808080",
}

// parseSumoColor normalizes a SUMO color attribute to a "#RRGGBB" hex string.
// Accepted forms are hex strings, named colors, and comma-separated component
// triples in either the 0-1 or 0-255 range.
func parseSumoColor(value string, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if strings.HasPrefix(value, "#") {
		return value
	}
	if hex, ok := sumoNamedColors[strings.ToLower(value)]; ok {
		return hex
	}
	parts := strings.Split(value, ",")
	if len(parts) < 3 {
		log.Warn("can't parse color, using fallback", "color", value)
		return fallback
	}
	components := make([]float64, 3)
	for i := 0; i < 3; i++ {
		component, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			log.Warn("can't parse color component, using fallback", "color", value)
			return fallback
		}
		components[i] = component
	}
	scale := 1.0
	if components[0] <= 1 && components[1] <= 1 && components[2] <= 1 {
		scale = 255.0
	}
	clamp := func(component float64) int {
		scaled := int(math.Round(component * scale))
		if scaled < 0 {
			return 0
		}
		if scaled > 255 {
			return 255
		}
		return scaled
	}
	return fmt.Sprintf("#%02X%02X%02X", clamp(components[0]), clamp(components[1]), clamp(components[2]))
}

// Poly is a generic drawable polygon or polyline from an additionals file.
type Poly struct {
	ID        string
	Color     string
	Fill      bool
	Layer     float64
	LineWidth float64
	Params    map[string]string

	shape orb.LineString
}

// Shape returns the filled footprint of the poly. Unfilled polys are buffered
// by their line width.
func (poly *Poly) Shape() orb.Polygon {
	if poly.Fill {
		ring := make(orb.Ring, len(poly.shape))
		copy(ring, poly.shape)
		if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
			ring = append(ring, ring[0])
		}
		return orb.Polygon{ring}
	}
	width := poly.LineWidth
	if width <= 0 {
		width = 1
	}
	polygon, err := bufferLine(poly.shape, width)
	if err != nil {
		log.Warn("can't buffer poly outline", "poly", poly.ID, "err", err)
		return nil
	}
	return polygon
}

// Alignment returns the raw poly outline.
func (poly *Poly) Alignment() orb.LineString {
	return poly.shape
}

// AsObject3D meshes the poly footprint.
func (poly *Poly) AsObject3D(z, extrudeHeight float64, includeBottomFace bool, overrides ParamOverrides) (*Object3D, error) {
	material := overrides.material(poly.Params, "poly")
	height := overrides.extrudeHeight(poly.Params, extrudeHeight)
	return ObjectFromShape(poly.Shape(), "poly_"+poly.ID, material, z, height, includeBottomFace, true)
}

// POI is a point of interest, either with absolute coordinates or positioned
// along a lane.
type POI struct {
	ID     string
	Color  string
	Layer  float64
	Params map[string]string

	point      orb.Point
	laneID     string
	lanePos    float64
	lanePosLat float64
	hasLanePos bool
	lane       *Lane
}

// Point returns the POI location. Lane-positioned POIs fall back to the raw
// coordinates until the lane reference is resolved.
func (poi *POI) Point() orb.Point {
	if !poi.hasLanePos || poi.lane == nil {
		return poi.point
	}
	alignment := poi.lane.Alignment()
	pos := poi.lanePos
	if pos < 0 {
		pos += lineLength(alignment)
	}
	if poi.lanePosLat == 0 {
		return pointAtDistance(alignment, pos)
	}
	// a short tangent segment around the station gives the lateral offset a
	// direction; positive offsets go to the left of the lane
	segment := substring(alignment, math.Max(0, pos-0.5), pos+0.5)
	offset, err := offsetCurve(segment, poi.lanePosLat)
	if err != nil || len(offset) == 0 {
		return pointAtDistance(alignment, pos)
	}
	return pointAtDistance(offset, lineLength(offset)/2)
}

// BusStop is a bus stop along a lane.
type BusStop struct {
	ID       string
	Name     string
	LaneID   string
	StartPos float64
	EndPos   float64
	Params   map[string]string

	hasStartPos bool
	hasEndPos   bool
	lane        *Lane
}

// Lane returns the resolved parent lane, nil when loaded without a network.
func (busStop *BusStop) Lane() *Lane {
	return busStop.lane
}

func (busStop *BusStop) span() (orb.LineString, float64, bool) {
	if busStop.lane == nil {
		return nil, 0, false
	}
	alignment := busStop.lane.Alignment()
	length := lineLength(alignment)
	start, end := busStop.StartPos, busStop.EndPos
	if !busStop.hasStartPos {
		start = 0
	}
	if !busStop.hasEndPos {
		end = length
	}
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	start = math.Max(0, math.Min(start, length))
	end = math.Max(0, math.Min(end, length))
	if end <= start {
		log.Warn("bus stop has an empty span", "busStop", busStop.ID)
		return nil, 0, false
	}
	axis := substring(alignment, start, end)
	return axis, busStop.lane.Width, true
}

// Shape returns the painted stop area. The SUMO style draws a band along the
// right curb, the US style fills the whole lane. German and UK stops are
// marked with lines only and have no filled area.
func (busStop *BusStop) Shape(style *Style) orb.Polygon {
	style = style.orDefault()
	axis, laneWidth, ok := busStop.span()
	if !ok {
		return nil
	}
	switch style.busStopStyle {
	case BUS_STOP_STYLE_SUMO:
		band, err := offsetCurve(axis, -(laneWidth/2 + 0.5))
		if err != nil {
			log.Warn("can't offset bus stop band", "busStop", busStop.ID, "err", err)
			return nil
		}
		area, err := bufferLine(band, 1)
		if err != nil {
			log.Warn("can't buffer bus stop band", "busStop", busStop.ID, "err", err)
			return nil
		}
		return area
	case BUS_STOP_STYLE_USA:
		area, err := bufferLine(axis, laneWidth)
		if err != nil {
			log.Warn("can't buffer bus stop area", "busStop", busStop.ID, "err", err)
			return nil
		}
		return area
	default:
		return nil
	}
}

// Markings synthesizes the painted road markings of the stop for the given
// style.
func (busStop *BusStop) Markings(style *Style) []Marking {
	style = style.orDefault()
	axis, laneWidth, ok := busStop.span()
	if !ok {
		return nil
	}
	switch style.busStopStyle {
	case BUS_STOP_STYLE_GER:
		return busStop.germanZigzag(axis, laneWidth)
	case BUS_STOP_STYLE_UK:
		return busStop.ukCage(axis, laneWidth)
	case BUS_STOP_STYLE_USA:
		outline := busStop.Shape(style)
		if outline == nil {
			return nil
		}
		alignment := make(orb.LineString, len(outline[0]))
		copy(alignment, outline[0])
		return []Marking{{
			Alignment: alignment,
			Width:     0.1,
			Color:     markingColorWhite,
			Dashes:    dashesSolid,
			Purpose:   MARKING_BUSSTOP,
			lane:      busStop.lane,
		}}
	default:
		return nil
	}
}

// germanZigzag builds the zigzag line of a German bus stop: a polyline
// alternating between the curb and a line 1.5 m into the lane, with an even
// number of zags so both ends rest on the curb.
func (busStop *BusStop) germanZigzag(axis orb.LineString, laneWidth float64) []Marking {
	const areaWidth = 1.5
	curb, err := offsetCurve(axis, -(laneWidth/2 - 0.06))
	if err != nil {
		log.Warn("can't offset bus stop curb line", "busStop", busStop.ID, "err", err)
		return nil
	}
	inner, err := offsetCurve(axis, -(laneWidth/2 - 0.06 - areaWidth))
	if err != nil {
		log.Warn("can't offset bus stop inner line", "busStop", busStop.ID, "err", err)
		return nil
	}
	length := lineLength(curb)
	nZags := int(math.Round(length / 2.5))
	if nZags%2 != 0 {
		nZags++
	}
	if nZags < 4 {
		nZags = 4
	}
	zigzag := make(orb.LineString, 0, nZags+1)
	for i := 0; i <= nZags; i++ {
		fraction := float64(i) / float64(nZags)
		if i%2 == 0 {
			zigzag = append(zigzag, pointAtDistance(curb, fraction*length))
		} else {
			zigzag = append(zigzag, pointAtDistance(inner, fraction*lineLength(inner)))
		}
	}
	return []Marking{{
		Alignment: zigzag,
		Width:     0.12,
		Color:     markingColorWhite,
		Dashes:    dashesSolid,
		Purpose:   MARKING_BUSSTOP,
		lane:      busStop.lane,
	}}
}

// ukCage builds the UK bus stop cage: a heavy solid line along the curb and
// lighter dashed lines along the ends and inner edge, all inset from the stop
// extent.
func (busStop *BusStop) ukCage(axis orb.LineString, laneWidth float64) []Marking {
	const (
		inset      = 0.2
		heavyWidth = 0.3
		lightWidth = 0.1
		cageWidth  = 2.5
	)
	length := lineLength(axis)
	if length <= 2*inset {
		return nil
	}
	trimmed := substring(axis, inset, length-inset)
	curb, err := offsetCurve(trimmed, -(laneWidth/2 - inset))
	if err != nil {
		log.Warn("can't offset bus stop curb line", "busStop", busStop.ID, "err", err)
		return nil
	}
	inner, err := offsetCurve(trimmed, -(laneWidth/2 - inset - cageWidth))
	if err != nil {
		log.Warn("can't offset bus stop inner line", "busStop", busStop.ID, "err", err)
		return nil
	}
	markings := []Marking{
		{Alignment: curb, Width: heavyWidth, Color: markingColorYellow, Dashes: dashesSolid, Purpose: MARKING_BUSSTOP, lane: busStop.lane},
		{Alignment: inner, Width: lightWidth, Color: markingColorYellow, Dashes: DashPattern{0.75, 0.75}, Purpose: MARKING_BUSSTOP, lane: busStop.lane},
	}
	for _, end := range [][2]orb.Point{
		{curb[0], inner[0]},
		{curb[len(curb)-1], inner[len(inner)-1]},
	} {
		markings = append(markings, Marking{
			Alignment: orb.LineString{end[0], end[1]},
			Width:     lightWidth,
			Color:     markingColorYellow,
			Dashes:    DashPattern{1, 0.5},
			Purpose:   MARKING_BUSSTOP,
			lane:      busStop.lane,
		})
	}
	return markings
}

// AsObjects3D meshes the stop area and its markings. The area sits at
// z=0.002 and the markings at z=0.003 so they draw above lane markings.
func (busStop *BusStop) AsObjects3D(style *Style) []*Object3D {
	style = style.orDefault()
	var objects []*Object3D
	if area := busStop.Shape(style); area != nil {
		object, err := ObjectFromShape(area, "bus_stop_"+busStop.ID, "bus_stop", 0.002, 0, false, true)
		if err != nil {
			log.Warn("can't mesh bus stop area", "busStop", busStop.ID, "err", err)
		} else {
			objects = append(objects, object)
		}
	}
	for i, marking := range busStop.Markings(style) {
		name := fmt.Sprintf("bus_stop_marking_%s_%d", busStop.ID, i)
		object, err := marking.AsObject3D(name, 0.003, 0, false)
		if err != nil {
			log.Warn("can't mesh bus stop marking", "busStop", busStop.ID, "err", err)
			continue
		}
		objects = append(objects, object)
	}
	return objects
}

// Additionals holds the contents of a SUMO additionals file.
type Additionals struct {
	polys    map[string]*Poly
	pois     map[string]*POI
	busStops map[string]*BusStop

	polyOrder    []string
	poiOrder     []string
	busStopOrder []string
}

func newAdditionals() *Additionals {
	return &Additionals{
		polys:    make(map[string]*Poly),
		pois:     make(map[string]*POI),
		busStops: make(map[string]*BusStop),
	}
}

// Poly returns the poly with the given id, nil when absent.
func (additionals *Additionals) Poly(id string) *Poly {
	return additionals.polys[id]
}

// POI returns the point of interest with the given id, nil when absent.
func (additionals *Additionals) POI(id string) *POI {
	return additionals.pois[id]
}

// BusStop returns the bus stop with the given id, nil when absent.
func (additionals *Additionals) BusStop(id string) *BusStop {
	return additionals.busStops[id]
}

// SortedPolys returns all polys ordered by layer, stable within a layer.
func (additionals *Additionals) SortedPolys() []*Poly {
	polys := make([]*Poly, 0, len(additionals.polyOrder))
	for _, id := range additionals.polyOrder {
		polys = append(polys, additionals.polys[id])
	}
	sort.SliceStable(polys, func(i, j int) bool {
		return polys[i].Layer < polys[j].Layer
	})
	return polys
}

// POIs returns all points of interest in file order.
func (additionals *Additionals) POIs() []*POI {
	pois := make([]*POI, 0, len(additionals.poiOrder))
	for _, id := range additionals.poiOrder {
		pois = append(pois, additionals.pois[id])
	}
	return pois
}

// SortedBusStops returns all bus stops in file order.
func (additionals *Additionals) SortedBusStops() []*BusStop {
	busStops := make([]*BusStop, 0, len(additionals.busStopOrder))
	for _, id := range additionals.busStopOrder {
		busStops = append(busStops, additionals.busStops[id])
	}
	return busStops
}

// LoadAdditionals reads a SUMO additionals XML file. Lane references of bus
// stops and lane-positioned POIs are resolved against net, which may be nil.
func LoadAdditionals(fileName string, net *Net) (*Additionals, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read additionals file '%s'", fileName)
	}
	return LoadAdditionalsFromString(string(data), net)
}

// LoadAdditionalsFromString parses additionals XML from a string, see
// LoadAdditionals.
func LoadAdditionalsFromString(data string, net *Net) (*Additionals, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(data); err != nil {
		return nil, errors.Wrap(err, "can't parse additionals XML")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("additionals file has no root element")
	}
	additionals := newAdditionals()
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "poly":
			poly, err := parsePolyElement(child)
			if err != nil {
				log.Warn("skipping malformed poly", "err", err)
				continue
			}
			additionals.polys[poly.ID] = poly
			additionals.polyOrder = append(additionals.polyOrder, poly.ID)
		case "poi":
			poi, err := parsePOIElement(child, net)
			if err != nil {
				log.Warn("skipping malformed poi", "err", err)
				continue
			}
			additionals.pois[poi.ID] = poi
			additionals.poiOrder = append(additionals.poiOrder, poi.ID)
		case "busStop", "trainStop":
			busStop, err := parseBusStopElement(child, net)
			if err != nil {
				log.Warn("skipping malformed bus stop", "err", err)
				continue
			}
			additionals.busStops[busStop.ID] = busStop
			additionals.busStopOrder = append(additionals.busStopOrder, busStop.ID)
		}
	}
	return additionals, nil
}

func parsePolyElement(element *etree.Element) (*Poly, error) {
	attrib := attribMap(element)
	shape, err := parseShape(attrString(attrib, "shape", ""), 2)
	if err != nil {
		return nil, errors.Wrapf(err, "poly '%s'", attrString(attrib, "id", ""))
	}
	poly := &Poly{
		ID:     attrString(attrib, "id", ""),
		Color:  parseSumoColor(attrString(attrib, "color", ""), "#808080"),
		Fill:   attrBool(attrib, "fill", false),
		Params: make(map[string]string),
		shape:  shape,
	}
	if poly.Layer, err = attrFloat(attrib, "layer", 0); err != nil {
		return nil, errors.Wrapf(err, "poly '%s'", poly.ID)
	}
	if poly.LineWidth, err = attrFloat(attrib, "lineWidth", 1); err != nil {
		return nil, errors.Wrapf(err, "poly '%s'", poly.ID)
	}
	collectParams(element, poly.Params)
	return poly, nil
}

func parsePOIElement(element *etree.Element, net *Net) (*POI, error) {
	attrib := attribMap(element)
	poi := &POI{
		ID:     attrString(attrib, "id", ""),
		Color:  parseSumoColor(attrString(attrib, "color", ""), "#808080"),
		Params: make(map[string]string),
	}
	var err error
	if poi.Layer, err = attrFloat(attrib, "layer", 0); err != nil {
		return nil, errors.Wrapf(err, "poi '%s'", poi.ID)
	}
	if laneID := attrString(attrib, "lane", ""); laneID != "" {
		poi.laneID = laneID
		poi.hasLanePos = true
		if poi.lanePos, err = attrFloat(attrib, "pos", 0); err != nil {
			return nil, errors.Wrapf(err, "poi '%s'", poi.ID)
		}
		if poi.lanePosLat, err = attrFloat(attrib, "posLat", 0); err != nil {
			return nil, errors.Wrapf(err, "poi '%s'", poi.ID)
		}
		if net != nil {
			poi.lane = net.LaneByID(laneID)
			if poi.lane == nil {
				log.Warn("can't resolve poi lane", "poi", poi.ID, "lane", laneID)
			}
		}
	} else {
		if _, ok := attrib["x"]; !ok {
			return nil, errors.Errorf("poi '%s' has neither coordinates nor a lane position", poi.ID)
		}
		x, err := attrFloat(attrib, "x", 0)
		if err != nil {
			return nil, errors.Wrapf(err, "poi '%s'", poi.ID)
		}
		y, err := attrFloat(attrib, "y", 0)
		if err != nil {
			return nil, errors.Wrapf(err, "poi '%s'", poi.ID)
		}
		poi.point = orb.Point{x, y}
	}
	collectParams(element, poi.Params)
	return poi, nil
}

func parseBusStopElement(element *etree.Element, net *Net) (*BusStop, error) {
	attrib := attribMap(element)
	laneID := attrString(attrib, "lane", "")
	if laneID == "" {
		return nil, errors.Errorf("bus stop '%s' has no lane", attrString(attrib, "id", ""))
	}
	busStop := &BusStop{
		ID:     attrString(attrib, "id", ""),
		Name:   attrString(attrib, "name", ""),
		LaneID: laneID,
		Params: make(map[string]string),
	}
	var err error
	if _, ok := attrib["startPos"]; ok {
		if busStop.StartPos, err = attrFloat(attrib, "startPos", 0); err != nil {
			return nil, errors.Wrapf(err, "bus stop '%s'", busStop.ID)
		}
		busStop.hasStartPos = true
	}
	if _, ok := attrib["endPos"]; ok {
		if busStop.EndPos, err = attrFloat(attrib, "endPos", 0); err != nil {
			return nil, errors.Wrapf(err, "bus stop '%s'", busStop.ID)
		}
		busStop.hasEndPos = true
	}
	if net != nil {
		busStop.lane = net.LaneByID(laneID)
		if busStop.lane == nil {
			log.Warn("can't resolve bus stop lane", "busStop", busStop.ID, "lane", laneID)
		}
	}
	collectParams(element, busStop.Params)
	return busStop, nil
}

func collectParams(element *etree.Element, params map[string]string) {
	for _, param := range element.SelectElements("param") {
		key := param.SelectAttrValue("key", "")
		if key == "" {
			continue
		}
		params[key] = param.SelectAttrValue("value", "")
	}
}
