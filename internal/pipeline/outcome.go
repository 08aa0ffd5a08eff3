package pipeline

import (
	"github.com/pavelc4/lukey-bot/internal/delivery"
	"github.com/pavelc4/lukey-bot/internal/media"
)

type Kind int

const (
	Delivered Kind = iota
	NoMedia
	NoSuitableMedia
	DownloadFailed
	Rejected
	Failed
)

type Via int

const (
	ViaNone Via = iota
	ViaDirect
	ViaTranscoded
	ViaPreview
)

// Outcome is the terminal result of one run.
type Outcome struct {
	Kind   Kind
	Via    Via
	Reason delivery.Reason
	Entry  media.Entry
	// Size is the uploaded byte count, zero for previews.
	Size         int64
	MessageID    string
	InvocationID string
	Err          error
}

// Label is a stable name for metrics and stats.
func (o Outcome) Label() string {
	switch o.Kind {
	case Delivered:
		switch o.Via {
		case ViaDirect:
			return "delivered_direct"
		case ViaTranscoded:
			return "delivered_transcoded"
		case ViaPreview:
			return "delivered_preview"
		}
		return "delivered"
	case NoMedia:
		return "no_media"
	case NoSuitableMedia:
		return "no_suitable_media"
	case DownloadFailed:
		return "download_failed"
	case Rejected:
		return "rejected"
	default:
		return "failed"
	}
}
