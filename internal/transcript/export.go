// internal/transcript/export.go
package transcript

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/user/barka/internal/types"
)

// htmlMarkers are cheap signals that an agent echoed rich tool output as
// HTML instead of plain text or markdown.
var htmlMarkers = []string{"</", "<p>", "<p ", "<div", "<br", "<table", "<ul>", "<ol>", "<h1", "<h2", "<h3"}

// ExportMarkdown renders a formatted transcript as one markdown document.
// Text content that looks like HTML is converted; everything else passes
// through untouched.
func ExportMarkdown(conversationID types.ConversationID, messages []*types.FormattedMessage) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Conversation %s\n", conversationID)

	for _, msg := range messages {
		fmt.Fprintf(&b, "\n## %s (%s) — %s\n\n", msg.Author, msg.AuthorType, msg.TimestampISO)

		content := msg.Content
		if msg.Type == types.MessageText && looksLikeHTML(content) {
			converted, err := htmltomarkdown.ConvertString(content)
			if err != nil {
				// Keep the raw text rather than losing the message.
				converted = content
			}
			content = converted
		}
		b.WriteString(strings.TrimRight(content, "\n"))
		b.WriteString("\n")
	}

	return b.String(), nil
}

func looksLikeHTML(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range htmlMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
