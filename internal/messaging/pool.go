package messaging

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Pool is a flavour of post: its quotes, colors and empty-folder text.
type Pool struct {
	Name        string
	Quotes      []string
	Description string
	// CaptionPrefix is prepended to attachment captions.
	CaptionPrefix string
	EmptyText     string
	// Reaction is added to scheduled posts.
	Reaction string

	color func(r *rand.Rand) int
}

var Normal = Pool{
	Name: "normal",
	Quotes: []string{
		"Here's your daily dose of Luke.",
		"You can't spell 'chaos' without Luke.",
		"May this Luke bless your timeline.",
		"A wild Luke appears!",
		"Luke energy detected.",
		"You were chosen for this Luke.",
		"May your day be as iconic as this picture.",
		"A random Luke for your mental health.",
		"Analyzing… Yes. You needed this Luke.",
		"Certified Luke moment.",
		"Jesus Christ be praised",
		"I'm smart",
		"Luke has come to see us",
	},
	EmptyText: "No images found in Drive folder.",
	Reaction:  "❤️",
	color: func(r *rand.Rand) int {
		return rgb(r.IntN(256), r.IntN(256), r.IntN(256))
	},
}

var Spicy = Pool{
	Name: "spicy",
	Quotes: []string{
		"Warning: Luke detected. Hydrate yourself.",
		"Too hot to handle, too iconic to ignore.",
		"Your heartbeat just increased by 27%. You're welcome.",
		"This Luke is clinically proven to cause blushing.",
		"Caution: visual contact may induce thirst.",
		"If you're reading this, it's already too late. You're flustered.",
		"Mmm… somebody looks delicious today.",
		"Spicy Luke delivered. Handle with care.",
		"Sudden attraction levels rising…",
		"Temperature rising: proceed with caution.",
		"You weren't ready for this level of Luke.",
		"Yes, you're blushing. Don't lie.",
		"Thirst levels: CRITICAL.",
	},
	Description:   "🔥 Spicy Mode Activated 🔥",
	CaptionPrefix: "🔥 ",
	EmptyText:     "No spicy material found in Drive 😳",
	Reaction:      "🔥",
	color: func(r *rand.Rand) int {
		return rgb(180+r.IntN(76), r.IntN(81), 50+r.IntN(151))
	},
}

// Pools indexes the built-in pools by name.
var Pools = map[string]Pool{
	Normal.Name: Normal,
	Spicy.Name:  Spicy,
}

func rgb(r, g, b int) int {
	return r<<16 | g<<8 | b
}

// Picker draws quotes and colors for a pool. Safe for concurrent use.
type Picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPicker(seed1, seed2 uint64) *Picker {
	return &Picker{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

// DefaultPicker uses a randomly seeded source.
func DefaultPicker() *Picker {
	return NewPicker(rand.Uint64(), rand.Uint64())
}

func (p *Picker) Quote(pool Pool) string {
	if len(pool.Quotes) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool.Quotes[p.rnd.IntN(len(pool.Quotes))]
}

func (p *Picker) Color(pool Pool) int {
	if pool.color == nil {
		return DefaultColor
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool.color(p.rnd)
}

// Caption is the text posted with an attached GIF.
func Caption(pool Pool, quote string) string {
	return pool.CaptionPrefix + quote
}

func DebugCount(n int) string {
	return fmt.Sprintf("[DEBUG] Files in Drive: %d", n)
}
