package ir

import "fmt"

// LinkEndpoint names one side of a Link: an IR node id and optionally the
// named pad/property on it (a bare "node." with no property when absent).
type LinkEndpoint struct {
	ID       string
	Property string
	HasProp  bool
}

// NewEndpoint returns a bare endpoint with no named property.
func NewEndpoint(id string) LinkEndpoint {
	return LinkEndpoint{ID: id}
}

// NewEndpointWithProperty returns an endpoint naming a specific pad/property.
func NewEndpointWithProperty(id, property string) LinkEndpoint {
	return LinkEndpoint{ID: id, Property: property, HasProp: true}
}

func (e LinkEndpoint) text() string {
	if e.HasProp {
		return fmt.Sprintf("%s.%s", e.ID, e.Property)
	}
	return e.ID + "."
}

// Link is a directed edge between two IR elements.
type Link struct {
	From LinkEndpoint
	To   LinkEndpoint
}

// ToPipelineText renders this link's `from. ! to.` description line.
func (l Link) ToPipelineText() string {
	return fmt.Sprintf("%s ! %s", l.From.text(), l.To.text())
}
