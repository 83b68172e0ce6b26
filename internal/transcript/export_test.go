// internal/transcript/export_test.go
package transcript

import (
	"strings"
	"testing"

	"github.com/user/barka/internal/types"
)

func TestExportMarkdownPlainText(t *testing.T) {
	messages := []*types.FormattedMessage{
		{ID: "e1:text:0", Author: "user", AuthorType: types.AuthorUser,
			Content: "What is the plan?", TimestampISO: "2024-01-01T00:00:00Z",
			Type: types.MessageText, IsVisible: true},
	}

	doc, err := ExportMarkdown("conv-1", messages)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "# Conversation conv-1") {
		t.Error("missing document header")
	}
	if !strings.Contains(doc, "What is the plan?") {
		t.Error("plain text must pass through untouched")
	}
	if !strings.Contains(doc, "## user (user)") {
		t.Error("missing message header")
	}
}

func TestExportMarkdownConvertsHTML(t *testing.T) {
	messages := []*types.FormattedMessage{
		{ID: "e1:text:0", Author: "project_manager_agent", AuthorType: types.AuthorAgent,
			Content: "<p>Status: <strong>on track</strong></p>",
			Type:    types.MessageText, IsVisible: true},
	}

	doc, err := ExportMarkdown("conv-1", messages)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(doc, "<p>") {
		t.Errorf("HTML should have been converted: %s", doc)
	}
	if !strings.Contains(doc, "on track") {
		t.Errorf("content lost in conversion: %s", doc)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	if looksLikeHTML("a < b and b > c") {
		t.Error("bare comparison operators are not HTML")
	}
	if !looksLikeHTML("<div class=\"x\">hi</div>") {
		t.Error("div markup should be detected")
	}
	if looksLikeHTML("plain **markdown** text") {
		t.Error("markdown is not HTML")
	}
}
