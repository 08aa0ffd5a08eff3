package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text   string
		prefix string
		name   string
		args   []string
		ok     bool
	}{
		{"!luke", "!", "luke", []string{}, true},
		{"  !SpicyLuke now ", "!", "spicyluke", []string{"now"}, true},
		{"/luke@lukey_bot", "/", "luke", []string{}, true},
		{"/lukeyhelp@lukey_bot extra", "/", "lukeyhelp", []string{"extra"}, true},
		{"luke", "!", "", nil, false},
		{"!", "!", "", nil, false},
		{"/@bot", "/", "", nil, false},
		{"!luke", "", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, args, ok := ParseCommand(tt.text, tt.prefix)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			if tt.ok {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}
