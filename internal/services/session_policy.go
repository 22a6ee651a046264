package services

import (
	"strings"

	"github.com/quiethollow/tandem/internal/models"
)

// MaxAssistantTurns backstops the completion sentinel: the markers are
// trusted model output, so a conversation whose model never emits one would
// otherwise run forever. Once this many assistant replies have accumulated
// the session is reported complete regardless of markers.
const MaxAssistantTurns = 30

func statusRank(status string) int {
	switch status {
	case models.StatusNotStarted:
		return 0
	case models.StatusInProgress:
		return 1
	case models.StatusCompleted:
		return 2
	default:
		return -1
	}
}

// CanTransitionStatus allows keeping the current status or moving forward.
// Backward moves happen only through the revision reset, which bypasses the
// patch path entirely.
func CanTransitionStatus(current string, next string) bool {
	currentRank := statusRank(current)
	nextRank := statusRank(next)
	if currentRank < 0 || nextRank < 0 {
		return false
	}
	return nextRank >= currentRank
}

// ReplyAssessment is the outcome of scanning one assistant reply.
type ReplyAssessment struct {
	Text              string
	SessionComplete   bool
	RevisionRequested bool
	QuestionAsked     bool
}

// AssessAssistantReply strips the in-band sentinel markers from a raw model
// reply and derives the session bookkeeping from what remains.
// assistantTurns counts assistant replies including this one.
func AssessAssistantReply(raw string, round string, assistantTurns int) ReplyAssessment {
	assessment := ReplyAssessment{}

	text := raw
	if strings.Contains(text, SessionCompleteMarker) {
		assessment.SessionComplete = true
		text = strings.ReplaceAll(text, SessionCompleteMarker, "")
	}
	if strings.Contains(text, RevisionRequestMarker) {
		// Only a Round 2 conversation can ask for a document correction.
		assessment.RevisionRequested = round == models.Round2
		text = strings.ReplaceAll(text, RevisionRequestMarker, "")
	}

	if assistantTurns >= MaxAssistantTurns {
		assessment.SessionComplete = true
	}

	assessment.Text = strings.TrimSpace(text)
	// Heuristic question tracking: any question mark counts the reply as one
	// substantive question, rhetorical or not.
	assessment.QuestionAsked = strings.Contains(assessment.Text, "?")
	return assessment
}

// CountAssistantTurns reports how many assistant replies a conversation
// already holds.
func CountAssistantTurns(turns []models.ChatTurn) int {
	count := 0
	for _, turn := range turns {
		if turn.Role == models.TurnRoleAssistant {
			count++
		}
	}
	return count
}

// AllCompleted reports whether every given session is COMPLETED. An empty
// slice is not "all completed": the four sessions are created at
// registration, so absence means broken data, not progress.
func AllCompleted(sessions []models.Session) bool {
	if len(sessions) == 0 {
		return false
	}
	for _, session := range sessions {
		if !session.IsCompleted() {
			return false
		}
	}
	return true
}
