package media

import "strings"

type MimeType string

const (
	MimeJPEG MimeType = "image/jpeg"
	MimePNG  MimeType = "image/png"
	MimeGIF  MimeType = "image/gif"
)

// SupportedMimeTypes lists the types the folder listing is filtered to.
var SupportedMimeTypes = []MimeType{MimeJPEG, MimePNG, MimeGIF}

func (m MimeType) Animated() bool {
	return m == MimeGIF
}

func (m MimeType) Supported() bool {
	for _, s := range SupportedMimeTypes {
		if s == m {
			return true
		}
	}
	return false
}

// Extension returns the file extension including the leading dot.
func (m MimeType) Extension() string {
	switch m {
	case MimeJPEG:
		return ".jpg"
	case MimePNG:
		return ".png"
	case MimeGIF:
		return ".gif"
	default:
		return ""
	}
}

// Entry is one media object in the remote folder. Entries are rebuilt on
// every listing, identity is not stable across calls.
type Entry struct {
	ID          string
	DisplayName string
	MimeType    MimeType
	// Size is the byte size reported by the listing, or -1 when absent.
	Size int64
}

func (e Entry) Animated() bool {
	return e.MimeType.Animated()
}

// FileName returns a display name safe to use as an attachment name.
func (e Entry) FileName() string {
	name := strings.TrimSpace(e.DisplayName)
	if name == "" {
		name = e.ID
	}
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	ext := e.MimeType.Extension()
	if ext != "" && !strings.HasSuffix(strings.ToLower(name), ext) {
		if !(e.MimeType == MimeJPEG && strings.HasSuffix(strings.ToLower(name), ".jpeg")) {
			name += ext
		}
	}
	return name
}

type SizeSource int

const (
	SizeUnknown SizeSource = iota
	SizeProbed
	SizeAuthoritative
)

// SizeEstimate is an optional byte count. Unknown estimates never block delivery.
type SizeEstimate struct {
	Bytes  int64
	Source SizeSource
}

func UnknownSize() SizeEstimate {
	return SizeEstimate{}
}

func ProbedSize(n int64) SizeEstimate {
	return SizeEstimate{Bytes: n, Source: SizeProbed}
}

func AuthoritativeSize(n int64) SizeEstimate {
	return SizeEstimate{Bytes: n, Source: SizeAuthoritative}
}

func (s SizeEstimate) Known() bool {
	return s.Source != SizeUnknown
}

// Exceeds reports whether the estimate is known and strictly above ceiling.
func (s SizeEstimate) Exceeds(ceiling int64) bool {
	return s.Known() && s.Bytes > ceiling
}
