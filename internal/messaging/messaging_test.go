package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavelc4/lukey-bot/internal/delivery"
)

func TestPickerQuoteFromPool(t *testing.T) {
	p := NewPicker(1, 2)
	for _, pool := range []Pool{Normal, Spicy} {
		for i := 0; i < 50; i++ {
			assert.Contains(t, pool.Quotes, p.Quote(pool))
		}
	}
	assert.Empty(t, p.Quote(Pool{}))
}

func TestSpicyColorRange(t *testing.T) {
	p := NewPicker(3, 4)
	for i := 0; i < 500; i++ {
		c := p.Color(Spicy)
		r, g, b := c>>16&0xff, c>>8&0xff, c&0xff
		assert.GreaterOrEqual(t, r, 180)
		assert.LessOrEqual(t, g, 80)
		assert.GreaterOrEqual(t, b, 50)
		assert.LessOrEqual(t, b, 200)
	}
}

func TestNormalColorRange(t *testing.T) {
	p := NewPicker(5, 6)
	for i := 0; i < 100; i++ {
		c := p.Color(Normal)
		assert.GreaterOrEqual(t, c, 0)
		assert.LessOrEqual(t, c, 0xffffff)
	}
	assert.Equal(t, DefaultColor, p.Color(Pool{}))
}

func TestCaption(t *testing.T) {
	assert.Equal(t, "🔥 hot", Caption(Spicy, "hot"))
	assert.Equal(t, "calm", Caption(Normal, "calm"))
}

func TestTooLarge(t *testing.T) {
	assert.Contains(t, TooLarge(delivery.ReasonToolUnavailable, 20<<20), "can't be shrunk")
	assert.Contains(t, TooLarge(delivery.ReasonCompressionInsufficient, 20<<20), "even after shrinking")
	assert.Contains(t, TooLarge(delivery.ReasonOverSoftCap, 60<<20), "60.0 MB")
}

func TestHelp(t *testing.T) {
	e := Help("/")
	assert.Equal(t, "📸 LukeyBot — Instructions", e.Title)
	assert.Contains(t, e.Description, "**/luke**")
	assert.Contains(t, e.Description, "**/spicyluke**")
	assert.NotContains(t, e.Description, "!luke")
}

func TestPools(t *testing.T) {
	assert.Equal(t, Normal.Name, Pools["normal"].Name)
	assert.Equal(t, "🔥 Spicy Mode Activated 🔥", Pools["spicy"].Description)
	assert.Equal(t, "No spicy material found in Drive 😳", Spicy.EmptyText)
}
