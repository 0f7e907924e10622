package chat

import (
	"strings"

	"github.com/parleychat/parley/src/chatsdk"
)

// Mention is an active, unterminated @token at the end of the input. Start
// is the byte index of the '@'; Query is the text after it, possibly empty.
type Mention struct {
	Query string
	Start int
}

// DetectMention reports whether the input ends in an active mention: the
// last '@' either starts the text or follows a space, and nothing after it
// contains a space. A space after the token means the user has moved past
// it and mention mode is off.
func DetectMention(input string) (Mention, bool) {
	at := strings.LastIndex(input, "@")
	if at < 0 {
		return Mention{}, false
	}
	if at > 0 && input[at-1] != ' ' {
		return Mention{}, false
	}
	query := input[at+1:]
	if strings.Contains(query, " ") {
		return Mention{}, false
	}
	return Mention{Query: query, Start: at}, true
}

// FilterRoster returns the participants whose display name contains the
// query as a case-insensitive substring, preserving roster order. An empty
// query matches everyone; an empty roster yields nothing.
func FilterRoster(roster []chatsdk.Participant, query string) []chatsdk.Participant {
	query = strings.ToLower(query)
	var matched []chatsdk.Participant
	for _, p := range roster {
		if strings.Contains(strings.ToLower(p.DisplayName()), query) {
			matched = append(matched, p)
		}
	}
	return matched
}

// CompleteMention replaces the trailing @query span with the chosen
// participant's display name followed by a single space. The returned text
// is what the input field should show; the chosen participant becomes the
// turn's explicit target until the input is cleared or submitted.
func CompleteMention(input string, m Mention, chosen chatsdk.Participant) string {
	return input[:m.Start] + "@" + chosen.DisplayName() + " "
}
