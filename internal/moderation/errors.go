package moderation

import "errors"

var (
	// ErrUnauthorized marks a decision issued by anyone but the configured
	// moderator. Callers drop it silently so user IDs are not probeable.
	ErrUnauthorized = errors.New("moderation: unauthorized")
	// ErrNotFound marks a decision targeting a user with no pending
	// submission, including replays against an already resolved one.
	ErrNotFound = errors.New("moderation: submission not found or already resolved")
	// ErrMalformedCommand marks a decision command whose embedded user
	// identifier does not parse.
	ErrMalformedCommand = errors.New("moderation: malformed decision command")
	// ErrNotDecision marks text that is not a decision command at all.
	ErrNotDecision = errors.New("moderation: not a decision command")
)
