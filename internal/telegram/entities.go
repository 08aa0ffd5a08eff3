package telegram

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/gotd/td/tg"

	"github.com/pavelc4/lukey-bot/internal/chat"
)

var markdownBold = regexp.MustCompile(`\*\*([^*]+)\*\*`)

var markupTag = regexp.MustCompile(`(?s)<(b|i|code|a)(?: href="([^"]+)")?>([^<]+)</(?:b|i|code|a)>`)

// parseEntities strips the small HTML subset used in captions and returns the
// plain text with matching entities. Offsets are in UTF-16 code units.
func parseEntities(text string) (string, []tg.MessageEntityClass) {
	var clean strings.Builder
	var entities []tg.MessageEntityClass
	offset := 0

	write := func(s string) int {
		clean.WriteString(s)
		n := len(utf16.Encode([]rune(s)))
		offset += n
		return n
	}

	last := 0
	for _, m := range markupTag.FindAllStringSubmatchIndex(text, -1) {
		write(html.UnescapeString(text[last:m[0]]))

		tag := text[m[2]:m[3]]
		href := ""
		if m[4] != -1 {
			href = html.UnescapeString(text[m[4]:m[5]])
		}
		start := offset
		length := write(html.UnescapeString(text[m[6]:m[7]]))

		switch tag {
		case "b":
			entities = append(entities, &tg.MessageEntityBold{Offset: start, Length: length})
		case "i":
			entities = append(entities, &tg.MessageEntityItalic{Offset: start, Length: length})
		case "code":
			entities = append(entities, &tg.MessageEntityCode{Offset: start, Length: length})
		case "a":
			entities = append(entities, &tg.MessageEntityTextURL{Offset: start, Length: length, URL: href})
		}
		last = m[1]
	}
	write(html.UnescapeString(text[last:]))
	return clean.String(), entities
}

// renderMessage flattens text and embed into caption markup.
func renderMessage(msg chat.Message) string {
	var parts []string
	if msg.Text != "" {
		parts = append(parts, html.EscapeString(msg.Text))
	}
	if e := msg.Embed; e != nil {
		var b strings.Builder
		if e.Title != "" {
			fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(e.Title))
		}
		if e.Description != "" {
			// embeds carry Discord markdown, bold is the only form used
			b.WriteString(markdownBold.ReplaceAllString(html.EscapeString(e.Description), "<b>$1</b>"))
			b.WriteByte('\n')
		}
		for _, f := range e.Fields {
			fmt.Fprintf(&b, "\n<b>%s</b>\n%s\n", html.EscapeString(f.Name), html.EscapeString(f.Value))
		}
		if e.Footer != "" {
			fmt.Fprintf(&b, "\n<i>%s</i>", html.EscapeString(e.Footer))
		}
		parts = append(parts, strings.TrimRight(b.String(), "\n"))
	}
	return strings.Join(parts, "\n\n")
}
