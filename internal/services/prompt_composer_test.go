package services

import (
	"strings"
	"testing"

	"github.com/quiethollow/tandem/internal/models"
)

func TestPronounsFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		gender  string
		subject string
	}{
		{models.GenderMale, "he"},
		{models.GenderFemale, "she"},
		{models.GenderNonBinary, "they"},
		{models.GenderPreferNotToSay, "they"},
		{"", "they"},
	}
	for _, testCase := range cases {
		if got := PronounsFor(testCase.gender); got.Subject != testCase.subject {
			t.Errorf("PronounsFor(%q).Subject = %q, want %q", testCase.gender, got.Subject, testCase.subject)
		}
	}
}

func TestBuildSystemPromptRound1(t *testing.T) {
	t.Parallel()

	prompt := BuildSystemPrompt("Alex", "Sam", PronounsFor(models.GenderFemale), models.Round1, 4)

	if !strings.Contains(prompt, "Alex") || !strings.Contains(prompt, "Sam") {
		t.Fatal("system prompt must name both partners")
	}
	if !strings.Contains(prompt, "Current question count: 4") {
		t.Fatal("system prompt must carry the current question count")
	}
	if !strings.Contains(prompt, SessionCompleteMarker) {
		t.Fatal("round 1 prompt must instruct the completion marker")
	}
	if strings.Contains(prompt, RevisionRequestMarker) {
		t.Fatal("round 1 prompt must not mention the revision marker")
	}
}

func TestBuildSystemPromptRound2MentionsRevisionMarker(t *testing.T) {
	t.Parallel()

	prompt := BuildSystemPrompt("Sam", "Alex", PronounsFor(models.GenderMale), models.Round2, 0)
	if !strings.Contains(prompt, RevisionRequestMarker) {
		t.Fatal("round 2 prompt must instruct the revision marker")
	}
	if !strings.Contains(prompt, SessionCompleteMarker) {
		t.Fatal("round 2 prompt must instruct the completion marker")
	}
}

func TestBuildOpeningMessagePerRound(t *testing.T) {
	t.Parallel()

	round1 := BuildOpeningMessage("Alex", "Sam", models.Round1)
	if !strings.Contains(round1, "Welcome, Alex.") {
		t.Fatalf("round 1 opening should greet the partner, got %q", round1)
	}

	round2 := BuildOpeningMessage("Alex", "Sam", models.Round2)
	if !strings.Contains(round2, "Welcome back, Alex.") {
		t.Fatalf("round 2 opening should welcome the partner back, got %q", round2)
	}
}

func TestBuildDiscoveryPromptIncludesBothTranscripts(t *testing.T) {
	t.Parallel()

	prompt := BuildDiscoveryPrompt(
		PartnerTranscript{
			PartnerName: "Alex",
			Turns: []models.ChatTurn{
				{Role: models.TurnRoleAssistant, Content: "What did you dream of?"},
				{Role: models.TurnRoleUser, Content: "Opening a bakery together."},
			},
		},
		PartnerTranscript{
			PartnerName: "Sam",
			Turns: []models.ChatTurn{
				{Role: models.TurnRoleUser, Content: "Living near the sea."},
			},
		},
	)

	if !strings.Contains(prompt, "Opening a bakery together.") {
		t.Fatal("discovery prompt must include partner A's answers")
	}
	if !strings.Contains(prompt, "Living near the sea.") {
		t.Fatal("discovery prompt must include partner B's answers")
	}
	if !strings.Contains(prompt, "Coach: What did you dream of?") {
		t.Fatal("assistant turns are attributed to the coach")
	}
	if !strings.Contains(prompt, "# Your Real Needs") {
		t.Fatal("discovery prompt must pin the output title")
	}
}

func TestBuildRevisionPromptCarriesFeedback(t *testing.T) {
	t.Parallel()

	prompt := BuildRevisionPrompt("# Your Real Needs\n\nOld text.", "We care more about travel than the document says.")
	if !strings.Contains(prompt, "Old text.") {
		t.Fatal("revision prompt must include the existing document")
	}
	if !strings.Contains(prompt, "We care more about travel") {
		t.Fatal("revision prompt must include the feedback")
	}
}
