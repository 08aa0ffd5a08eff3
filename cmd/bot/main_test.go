package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavelc4/lukey-bot/internal/drive"
	"github.com/pavelc4/lukey-bot/internal/media"
)

func TestPrintSummary(t *testing.T) {
	var entries []media.Entry
	for i := 0; i < 12; i++ {
		mt := media.MimePNG
		if i%3 == 0 {
			mt = media.MimeGIF
		}
		entries = append(entries, media.Entry{ID: fmt.Sprint("id", i), DisplayName: fmt.Sprint("f", i), MimeType: mt, Size: -1})
	}

	var buf bytes.Buffer
	printSummary(&buf, drive.Folder{ID: "root", Name: "Luke", MimeType: "application/vnd.google-apps.folder"}, entries)

	out := buf.String()
	assert.Contains(t, out, "Folder: Luke (root")
	assert.Contains(t, out, "Media files: 12")
	assert.Contains(t, out, "image/gif  4")
	assert.Contains(t, out, "image/png  8")
	assert.Contains(t, out, "- f9 [image/gif] id9 (unknown size)")
	assert.NotContains(t, out, "- f10 ")
	assert.Contains(t, out, "... and 2 more")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["check-drive"])
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
