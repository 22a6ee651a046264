package services

import (
	"strings"
	"testing"

	"github.com/quiethollow/tandem/internal/models"
)

func TestCanTransitionStatusNeverRegresses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		current string
		next    string
		want    bool
	}{
		{models.StatusNotStarted, models.StatusInProgress, true},
		{models.StatusNotStarted, models.StatusCompleted, true},
		{models.StatusInProgress, models.StatusCompleted, true},
		{models.StatusInProgress, models.StatusInProgress, true},
		{models.StatusCompleted, models.StatusCompleted, true},
		{models.StatusInProgress, models.StatusNotStarted, false},
		{models.StatusCompleted, models.StatusInProgress, false},
		{models.StatusCompleted, models.StatusNotStarted, false},
	}

	for _, testCase := range cases {
		got := CanTransitionStatus(testCase.current, testCase.next)
		if got != testCase.want {
			t.Errorf("CanTransitionStatus(%s, %s) = %v, want %v", testCase.current, testCase.next, got, testCase.want)
		}
	}
}

func TestAssessAssistantReplyStripsCompletionMarker(t *testing.T) {
	t.Parallel()

	assessment := AssessAssistantReply("Thank you for sharing.\n\n[SESSION_COMPLETE]", models.Round1, 9)
	if !assessment.SessionComplete {
		t.Fatal("completion marker should set SessionComplete")
	}
	if strings.Contains(assessment.Text, SessionCompleteMarker) {
		t.Fatalf("marker must be stripped, got %q", assessment.Text)
	}
	if assessment.Text != "Thank you for sharing." {
		t.Fatalf("stripped text = %q", assessment.Text)
	}
}

func TestAssessAssistantReplyRevisionOnlyInRound2(t *testing.T) {
	t.Parallel()

	round2 := AssessAssistantReply("I'll note that correction. [REVISION_REQUESTED]", models.Round2, 3)
	if !round2.RevisionRequested {
		t.Fatal("revision marker should register in round 2")
	}
	if strings.Contains(round2.Text, RevisionRequestMarker) {
		t.Fatalf("marker must be stripped, got %q", round2.Text)
	}

	round1 := AssessAssistantReply("I'll note that correction. [REVISION_REQUESTED]", models.Round1, 3)
	if round1.RevisionRequested {
		t.Fatal("revision marker must be ignored in round 1")
	}
	if strings.Contains(round1.Text, RevisionRequestMarker) {
		t.Fatal("marker is stripped even when ignored")
	}
}

func TestAssessAssistantReplyTurnCapForcesCompletion(t *testing.T) {
	t.Parallel()

	assessment := AssessAssistantReply("And what else comes to mind?", models.Round1, MaxAssistantTurns)
	if !assessment.SessionComplete {
		t.Fatalf("reply at the %d-turn cap should force completion", MaxAssistantTurns)
	}

	before := AssessAssistantReply("And what else comes to mind?", models.Round1, MaxAssistantTurns-1)
	if before.SessionComplete {
		t.Fatal("reply below the turn cap must not force completion")
	}
}

func TestAssessAssistantReplyCountsQuestions(t *testing.T) {
	t.Parallel()

	asked := AssessAssistantReply("What mattered most to you?", models.Round1, 2)
	if !asked.QuestionAsked {
		t.Fatal("a reply containing a question mark counts as a question")
	}

	statement := AssessAssistantReply("That sounds meaningful.", models.Round1, 2)
	if statement.QuestionAsked {
		t.Fatal("a plain statement must not count as a question")
	}
}

func TestCountAssistantTurns(t *testing.T) {
	t.Parallel()

	turns := []models.ChatTurn{
		{Role: models.TurnRoleAssistant, Content: "Welcome."},
		{Role: models.TurnRoleUser, Content: "Hi."},
		{Role: models.TurnRoleAssistant, Content: "Tell me more."},
	}
	if got := CountAssistantTurns(turns); got != 2 {
		t.Fatalf("CountAssistantTurns = %d, want 2", got)
	}
}

func TestAllCompletedEmptyIsFalse(t *testing.T) {
	t.Parallel()

	if AllCompleted(nil) {
		t.Fatal("an empty session list must not count as completed")
	}

	sessions := []models.Session{
		{Status: models.StatusCompleted},
		{Status: models.StatusInProgress},
	}
	if AllCompleted(sessions) {
		t.Fatal("a partially completed list must not count as completed")
	}

	sessions[1].Status = models.StatusCompleted
	if !AllCompleted(sessions) {
		t.Fatal("a fully completed list should count as completed")
	}
}
