package sumonetvis

import (
	"time"

	"github.com/beevik/etree"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// LoadNetwork reads a SUMO network file (*.net.xml), builds the object model
// and runs the linking pass. Malformed entities are skipped with a warning;
// only unreadable input is fatal.
func LoadNetwork(fileName string) (*Net, error) {
	document := etree.NewDocument()
	if err := document.ReadFromFile(fileName); err != nil {
		return nil, errors.Wrapf(err, "can't read network file '%s'", fileName)
	}
	return parseNetworkDocument(document)
}

// LoadNetworkFromString builds a network from in-memory XML content.
func LoadNetworkFromString(content string) (*Net, error) {
	document := etree.NewDocument()
	if err := document.ReadFromString(content); err != nil {
		return nil, errors.Wrap(err, "can't read network content")
	}
	return parseNetworkDocument(document)
}

func parseNetworkDocument(document *etree.Document) (*Net, error) {
	root := document.SelectElement("net")
	if root == nil {
		return nil, errors.New("no <net> root element")
	}
	start := time.Now()
	net := NewNet()
	for _, element := range root.ChildElements() {
		switch element.Tag {
		case "edge":
			parseEdgeElement(net, element)
		case "junction":
			parseJunctionElement(net, element)
		case "connection":
			connection, err := NewConnection(attribMap(element))
			if err != nil {
				log.Warn("skipping malformed connection", "err", err)
				continue
			}
			net.AddConnection(connection)
		}
	}
	net.Link()
	log.Debug("network loaded", "edges", len(net.edges), "junctions", len(net.junctions),
		"connections", len(net.connections), "elapsed", time.Since(start))
	return net, nil
}

func parseEdgeElement(net *Net, element *etree.Element) {
	attrib := attribMap(element)
	edge := NewEdge(attrib)
	for _, child := range element.ChildElements() {
		switch child.Tag {
		case "lane":
			lane, err := NewLane(attribMap(child))
			if err != nil {
				log.Warn("skipping malformed lane", "edge", edge.ID, "err", err)
				continue
			}
			edge.AppendLane(lane)
			for _, laneChild := range child.ChildElements() {
				switch laneChild.Tag {
				case "stopOffset":
					stopOffset, err := parseStopOffset(attribMap(laneChild))
					if err != nil {
						log.Warn("skipping malformed stop offset", "lane", lane.ID, "err", err)
						continue
					}
					lane.AddStopOffset(stopOffset)
				case "param":
					lane.Params[laneChild.SelectAttrValue("key", "")] = laneChild.SelectAttrValue("value", "")
				}
			}
		case "stopOffset":
			stopOffset, err := parseStopOffset(attribMap(child))
			if err != nil {
				log.Warn("skipping malformed stop offset", "edge", edge.ID, "err", err)
				continue
			}
			edge.AddStopOffset(stopOffset)
		case "param":
			edge.Params[child.SelectAttrValue("key", "")] = child.SelectAttrValue("value", "")
		}
	}
	net.AddEdge(edge)
}

func parseJunctionElement(net *Net, element *etree.Element) {
	attrib := attribMap(element)
	junction, err := NewJunction(attrib)
	if err != nil {
		log.Warn("skipping malformed junction", "err", err)
		return
	}
	for _, child := range element.ChildElements() {
		switch child.Tag {
		case "request":
			request, err := NewRequest(attribMap(child))
			if err != nil {
				log.Warn("skipping malformed request", "junction", junction.ID, "err", err)
				continue
			}
			junction.AddRequest(request)
		case "param":
			junction.Params[child.SelectAttrValue("key", "")] = child.SelectAttrValue("value", "")
		}
	}
	net.AddJunction(junction)
}

func parseStopOffset(attrib map[string]string) (StopOffset, error) {
	value, err := attrFloat(attrib, "value", 0)
	if err != nil {
		return StopOffset{}, err
	}
	allowance, err := NewAllowance(attrString(attrib, "vClasses", ""), attrString(attrib, "exceptions", ""))
	if err != nil {
		return StopOffset{}, err
	}
	return StopOffset{Value: value, Allowance: allowance}, nil
}

func attribMap(element *etree.Element) map[string]string {
	attrib := make(map[string]string, len(element.Attr))
	for _, attr := range element.Attr {
		attrib[attr.Key] = attr.Value
	}
	return attrib
}
