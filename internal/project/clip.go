package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajsmith595/videoedit/internal/media"
)

// ClipType distinguishes a source clip (raw uploaded media) from a
// composited clip (the output of a node graph).
type ClipType int

const (
	ClipSource ClipType = iota
	ClipComposited
)

func (t ClipType) String() string {
	if t == ClipComposited {
		return "composited"
	}
	return "source"
}

// ClipIdentifier names one clip by id and kind, the payload of a node's
// `clip` property (spec.md §3 "Clip reference").
type ClipIdentifier struct {
	ID       media.ID `json:"id"`
	ClipType ClipType `json:"clip_type"`
}

// VideoStreamInfo is metadata about one video stream in a clip.
type VideoStreamInfo struct {
	Width     uint32  `json:"width"`
	Height    uint32  `json:"height"`
	Framerate float64 `json:"framerate"`
	Bitrate   uint32  `json:"bitrate"`
}

// AudioStreamInfo is metadata about one audio stream in a clip.
type AudioStreamInfo struct {
	SampleRate uint32 `json:"sample_rate"`
	Channels   uint32 `json:"number_of_channels"`
	Bitrate    uint32 `json:"bitrate"`
	Language   string `json:"language"`
}

// SubtitleStreamInfo is metadata about one subtitle stream in a clip.
type SubtitleStreamInfo struct {
	Language string `json:"language"`
}

// ClipInfo is the full set of stream metadata discovered for a source clip.
type ClipInfo struct {
	DurationMillis  uint64               `json:"duration"`
	VideoStreams    []VideoStreamInfo    `json:"video_streams"`
	AudioStreams    []AudioStreamInfo    `json:"audio_streams"`
	SubtitleStreams []SubtitleStreamInfo `json:"subtitle_streams"`
}

// StreamCounts converts the discovered stream metadata into the
// media.StreamCounts triple other components consume.
func (i ClipInfo) StreamCounts() media.StreamCounts {
	return media.StreamCounts{
		Video:     len(i.VideoStreams),
		Audio:     len(i.AudioStreams),
		Subtitles: len(i.SubtitleStreams),
	}
}

// SourceClipServerStatus tracks a source clip's upload lifecycle.
type SourceClipServerStatus int

const (
	NeedsNewID SourceClipServerStatus = iota
	LocalOnly
	Uploading
	Uploaded
)

func (s SourceClipServerStatus) String() string {
	switch s {
	case NeedsNewID:
		return "needs_new_id"
	case LocalOnly:
		return "local_only"
	case Uploading:
		return "uploading"
	case Uploaded:
		return "uploaded"
	default:
		return "unknown"
	}
}

// SourceClip is an uploaded media asset and its discovered metadata
// (spec.md §3 "Source clip").
type SourceClip struct {
	ID     media.ID               `json:"id"`
	Name   string                 `json:"name"`
	Status SourceClipServerStatus `json:"status"`
	Info   *ClipInfo              `json:"info"`

	// OriginalFileLocation is the clip's path on the device that uploaded it.
	OriginalFileLocation *string `json:"original_file_location"`

	// FileLocation is the clip's path on the server; nil on the client.
	FileLocation *string `json:"file_location"`

	// DeviceID records which device originally uploaded the clip. Stored and
	// round-tripped; multi-device sync is out of scope.
	DeviceID *media.ID `json:"original_device_id"`

	// ThumbnailLocation is reserved for a thumbnail preview image. Thumbnail
	// generation is not implemented.
	ThumbnailLocation *string `json:"thumbnail_location"`
}

// UnknownStreamCounts is the sentinel StreamCounts used when a source
// clip's metadata hasn't been discovered yet.
var UnknownStreamCounts = media.StreamCounts{Video: -1, Audio: -1, Subtitles: -1}

// GetClipType returns the clip's stream counts, or UnknownStreamCounts if
// Info hasn't been populated yet.
func (c *SourceClip) GetClipType() media.StreamCounts {
	if c.Info == nil {
		return UnknownStreamCounts
	}
	return c.Info.StreamCounts()
}

// ServerURL returns the file:// URL a render worker reads this clip from.
// On the server, clips always live under SourceFilesLocation keyed by id;
// on the client, FileLocation is used directly.
func (c *SourceClip) ServerURL() string {
	var loc string
	if IsServer() {
		loc = fmt.Sprintf("%s/%s", SourceFilesLocation(), c.ID)
	} else {
		if c.FileLocation == nil {
			panic("project: SourceClip.ServerURL called on client with no FileLocation")
		}
		loc = *c.FileLocation
	}
	return "file:///" + strings.ReplaceAll(loc, "\\", "/")
}

// Discoverer probes a media file and returns its stream metadata. Concrete
// implementations shell out to the render backend's discovery facility;
// DiscoverTimeout bounds how long a probe may run (spec.md §4's "bounded
// discovery timeout").
type Discoverer interface {
	Discover(ctx context.Context, filename string) (ClipInfo, error)
}

// DiscoverTimeout bounds a source-clip metadata probe.
const DiscoverTimeout = 10 * time.Second

// CompositedClip is the output of a node graph: a render target with no
// media of its own until compiled and rendered (spec.md §3 "Composited
// clip").
type CompositedClip struct {
	ID   media.ID `json:"id"`
	Name string   `json:"name"`
}

// OutputLocation is the directory rendered segments for this clip are
// written to.
func (c *CompositedClip) OutputLocation() string {
	return strings.ReplaceAll(fmt.Sprintf("%s/composited-clip-%s", MediaOutputLocation(), c.ID), "\\", "/")
}

// OutputLocationTemplate is the splitmuxsink `location` template used to
// split a render into numbered segments. The extension is `.ts`: this is
// the server-side/IR artifact, distinct from the `.mp4`-named files the
// client writes received chunk bytes to (see DESIGN.md's Open Question
// resolution on segment file extensions).
func (c *CompositedClip) OutputLocationTemplate() string {
	return fmt.Sprintf("%s/segment%%0%dd.ts", c.OutputLocation(), ChunkFilenameDigits)
}

// ChunkFileLocation is where the client writes one received chunk's bytes,
// using the `.mp4` naming spec.md §6.1 and §6.4 describe for client-side
// files — distinct from OutputLocationTemplate's server-side `.ts`
// intermediate (see DESIGN.md's Open Question resolution on segment file
// extensions).
func (c *CompositedClip) ChunkFileLocation(segment uint32) string {
	dir := strings.ReplaceAll(fmt.Sprintf("%s/composited-clip-%s", MediaOutputLocation(), c.ID), "\\", "/")
	return fmt.Sprintf("%s/segment%0*d.mp4", dir, ChunkFilenameDigits, segment)
}

// TimelineLocation is the server-only path of this clip's compiled
// timeline file.
func (c *CompositedClip) TimelineLocation() string {
	if !IsServer() {
		panic("project: CompositedClip.TimelineLocation called on client")
	}
	return strings.ReplaceAll(fmt.Sprintf("file:///%s/%s.xges", CompositedClipsProjectsLocation(), c.ID), "\\", "/")
}
