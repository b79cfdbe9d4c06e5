package media

import "fmt"

// Direction marks whether a PipedType annotates the producing or consuming
// side of an edge.
type Direction int

const (
	DirInput Direction = iota
	DirOutput
)

func (d Direction) String() string {
	if d == DirInput {
		return "input"
	}
	return "output"
}

// PipedType is the runtime edge annotation created during a compile pass
// (spec.md §3's "Piped type"). It is never persisted.
type PipedType struct {
	Counts      StreamCounts
	NodeID      ID
	Property    string
	Direction   Direction
	CacheID     *ID // set when the producing node has a cache entry
}

// IntermediateBaseDir is injected by the caller (compiler/registry) rather
// than hardcoded, so tests can point it at a tmp dir; see internal/project
// for the concrete path layout (spec.md §6.1).
type IntermediateBaseDir func() string

// SaveLocation is the path an edge's intermediate artifact is written to
// and read back from, mirroring original_source's PipedType::get_save_location.
func (p PipedType) SaveLocation(intermediateDir string) string {
	return fmt.Sprintf("%s/%s_%s_%s.edit", intermediateDir, p.NodeID, p.Property, p.Direction)
}

// CacheLocation returns the content-addressed cache path when CacheID is
// set, else falls back to SaveLocation.
func (p PipedType) CacheLocation(intermediateDir, cacheDir string) string {
	if p.CacheID != nil {
		return fmt.Sprintf("%s/%s", cacheDir, *p.CacheID)
	}
	return p.SaveLocation(intermediateDir)
}

// GSTHandle returns the IR node id this piped type's i-th stream of the
// given kind resolves to, mirroring original_source's get_gst_handle /
// get_gstreamer_id naming scheme used to wire AbstractLink endpoints.
func (p PipedType) GSTHandle(kind StreamKind, index int) string {
	return fmt.Sprintf("%s-%s-%s-%d", p.NodeID, p.Property, kind, index)
}
