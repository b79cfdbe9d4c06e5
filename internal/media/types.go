package media

// StreamKind enumerates the three media stream kinds a pipeable edge may
// carry.
type StreamKind int

const (
	Video StreamKind = iota
	Audio
	Subtitles
)

// Linker returns the IR converter element kind ("videoconvert", etc.) used
// to normalize a stream of this kind before it is fed into a sink, the
// inverse of ir.Node.LinkerKind.
func (k StreamKind) Linker() string {
	switch k {
	case Video:
		return "videoconvert"
	case Audio:
		return "audioconvert"
	case Subtitles:
		return "subparse"
	default:
		return ""
	}
}

func (k StreamKind) String() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	case Subtitles:
		return "subtitles"
	default:
		return "unknown"
	}
}

// StreamCounts is the stream-count triple {video, audio, subtitles} from
// spec.md §3. Counts are non-negative in practice; Source-clip lookups that
// fail to resolve metadata use -1 sentinels to signal "unknown" (mirrors
// original_source's SourceClip::get_clip_type when `info` is absent).
type StreamCounts struct {
	Video     int `json:"video"`
	Audio     int `json:"audio"`
	Subtitles int `json:"subtitles"`
}

// Of returns the count for the given stream kind.
func (s StreamCounts) Of(kind StreamKind) int {
	switch kind {
	case Video:
		return s.Video
	case Audio:
		return s.Audio
	case Subtitles:
		return s.Subtitles
	default:
		return 0
	}
}

// Min returns the componentwise minimum of a and b, used by the concat node
// to narrow its resolved output counts.
func Min(a, b StreamCounts) StreamCounts {
	return StreamCounts{
		Video:     min(a.Video, b.Video),
		Audio:     min(a.Audio, b.Audio),
		Subtitles: min(a.Subtitles, b.Subtitles),
	}
}

// Map returns the triple as a kind-indexed map, useful when iterating over
// all three kinds uniformly (as the output node emitter does).
func (s StreamCounts) Map() map[StreamKind]int {
	return map[StreamKind]int{
		Video:     s.Video,
		Audio:     s.Audio,
		Subtitles: s.Subtitles,
	}
}

// IsSingular reports whether at most one kind is non-zero.
func (s StreamCounts) IsSingular() bool {
	nonZero := 0
	if s.Video > 0 {
		nonZero++
	}
	if s.Audio > 0 {
		nonZero++
	}
	if s.Subtitles > 0 {
		nonZero++
	}
	return nonZero <= 1
}

// Unbounded is the "no declared maximum" sentinel used by inputs whose
// maximum stream count is unrestricted (e.g. output's media input).
const Unbounded = int(^uint(0) >> 1)

// Restrictions describes numeric property bounds, e.g. a blur node's sigma
// or a volume node's gain.
type Restrictions struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// InputKind enumerates the tagged union of a typed input declaration's
// `type` field (spec.md §3).
type InputKind int

const (
	InputPipeable InputKind = iota
	InputNumber
	InputString
	InputClip
)

// InputType is the tagged-union payload of a TypedInput. Only the field
// matching Kind is meaningful.
type InputType struct {
	Kind         InputKind
	MinCounts    StreamCounts // InputPipeable
	MaxCounts    StreamCounts // InputPipeable
	Restrictions Restrictions // InputNumber
	MaxLen       int          // InputString
}

// TypedInput is a node's declared input (spec.md §3).
type TypedInput struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Type        InputType `json:"-"`
}

// TypedOutput is a node's declared output (spec.md §3).
type TypedOutput struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Description string       `json:"description"`
	Counts      StreamCounts `json:"counts"`
}
