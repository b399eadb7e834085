// v0
// internal/meetings/clean.go
package meetings

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML extracts plain text from possibly HTML-contaminated input. Tag
// soup is tolerated; script and style bodies are dropped entirely.
func StripHTML(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.ContainsAny(raw, "<&") {
		return raw
	}

	var b strings.Builder
	skipDepth := 0
	tok := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return collapseSpace(b.String())
		case html.StartTagToken:
			name, _ := tok.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.WriteString(string(tok.Text()))
				b.WriteByte(' ')
			}
		}
	}
}

func skippedTag(name string) bool {
	return name == "script" || name == "style"
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
