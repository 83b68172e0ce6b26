// internal/format/author.go
package format

import (
	"strings"

	"github.com/user/barka/internal/types"
)

// knownAgentAliases maps author names that identify an agent without
// containing the word "agent". The provider does not tag authors with a
// type, so classification is name-matching over unvalidated strings.
var knownAgentAliases = map[string]bool{
	"barka":     true,
	"gaia":      true,
	"assistant": true,
	"model":     true,
}

// ClassifyAuthor derives an author type from an author name. This is a
// heuristic, not a guaranteed classification; unknown names fall through to
// system.
func ClassifyAuthor(author string) types.AuthorType {
	name := strings.ToLower(strings.TrimSpace(author))
	switch {
	case name == "user":
		return types.AuthorUser
	case strings.Contains(name, "agent") || knownAgentAliases[name]:
		return types.AuthorAgent
	default:
		return types.AuthorSystem
	}
}
