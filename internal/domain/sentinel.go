package domain

import (
	"fmt"
	"strings"
)

// SentinelPrefix marks AI texts that stand in for a failed, blocked or empty reply.
// Texts carrying it are never persisted as AI messages.
const SentinelPrefix = "[AI"

const (
	SentinelEmpty = "[AI empty]"
	SentinelError = "[AI error]"
)

// BlockedSentinel formats the reply shown when the model refused to answer
func BlockedSentinel(reason string) string {
	if reason == "" {
		reason = "UNSPECIFIED"
	}
	return fmt.Sprintf("[AI blocked: %s]", reason)
}

// IsSentinel reports whether text is one of the sentinel replies
func IsSentinel(text string) bool {
	return strings.HasPrefix(text, SentinelPrefix)
}
