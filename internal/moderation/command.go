package moderation

import (
	"regexp"
	"strconv"
	"strings"
)

// Decision is the moderator's verdict on a submission.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Command is the structured form of a decision command. Parsing happens
// once at the trust boundary; the gateway only ever sees this pair.
type Command struct {
	Action   Decision
	TargetID int64
}

var decisionRe = regexp.MustCompile(`^/(approve|reject)_([0-9]+)$`)

// ParseDecision parses decision command text such as "/approve_42".
// It returns ErrNotDecision for unrelated text, and ErrMalformedCommand
// when the token starts like a decision but the identifier is invalid.
func ParseDecision(text string) (Command, error) {
	text = strings.TrimSpace(text)
	// Strip the "@botname" suffix Telegram appends in some clients.
	if at := strings.IndexByte(text, '@'); at > 0 {
		text = text[:at]
	}

	m := decisionRe.FindStringSubmatch(text)
	if m == nil {
		if strings.HasPrefix(text, "/approve_") || strings.HasPrefix(text, "/reject_") {
			return Command{}, ErrMalformedCommand
		}
		return Command{}, ErrNotDecision
	}

	id, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || id <= 0 {
		return Command{}, ErrMalformedCommand
	}

	action := DecisionApprove
	if m[1] == "reject" {
		action = DecisionReject
	}
	return Command{Action: action, TargetID: id}, nil
}
