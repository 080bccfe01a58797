// Package command recognizes the fixed keyword commands that take precedence
// over any other interpretation of an utterance.
package command

import (
	"strings"

	"github.com/claude/gymchat/internal/models"
)

// IntroPhrase is the fixed phrase that asks the assistant to introduce itself.
const IntroPhrase = "介绍一下你自己"

var keywords = map[string]models.CommandKind{
	"help":      models.CommandHelp,
	"帮助":        models.CommandHelp,
	"intro":     models.CommandIntro,
	IntroPhrase: models.CommandIntro,
	"结束训练":      models.CommandEndSession,
	"over":      models.CommandEndSession,
	"撤回":        models.CommandUndo,
	"undo":      models.CommandUndo,
}

// Route matches text against the keyword set, ignoring case and surrounding
// whitespace. Keywords shadow exercises of the same name.
func Route(text string) models.Intent {
	if kind, ok := keywords[strings.ToLower(strings.TrimSpace(text))]; ok {
		return models.CommandIntent(kind)
	}
	return models.Unrecognized()
}

// Keywords returns the accepted spellings for kind, for help output.
func Keywords(kind models.CommandKind) []string {
	var out []string
	for _, k := range orderedKeywords {
		if keywords[k] == kind {
			out = append(out, k)
		}
	}
	return out
}

var orderedKeywords = []string{"帮助", "help", IntroPhrase, "intro", "结束训练", "over", "撤回", "undo"}
