package reply

import (
	"testing"

	"github.com/stretchr/testify/require"

	"eoinrun/coach-bot/internal/domain"
)

func TestParseDecisionNo(t *testing.T) {
	decision, err := parseDecision(`{"status": "no"}`)
	require.NoError(t, err)
	require.False(t, decision.Reply)
	require.Empty(t, decision.Answer)
}

func TestParseDecisionYes(t *testing.T) {
	decision, err := parseDecision(`{"status": "yes", "answer": "Great, thanks for the update!"}`)
	require.NoError(t, err)
	require.True(t, decision.Reply)
	require.Equal(t, "Great, thanks for the update!", decision.Answer)
}

func TestParseDecisionStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"status\": \"yes\", \"answer\": \"Nice one, see you Tuesday.\"}\n```"
	decision, err := parseDecision(raw)
	require.NoError(t, err)
	require.True(t, decision.Reply)
	require.Equal(t, "Nice one, see you Tuesday.", decision.Answer)
}

func TestParseDecisionRejectsGarbage(t *testing.T) {
	_, err := parseDecision("the model rambled instead of answering")
	require.ErrorIs(t, err, domain.ErrClassification)
}

func TestParseDecisionRejectsUnknownStatus(t *testing.T) {
	_, err := parseDecision(`{"status": "maybe"}`)
	require.ErrorIs(t, err, domain.ErrClassification)
}

func TestParseDecisionRejectsYesWithoutAnswer(t *testing.T) {
	_, err := parseDecision(`{"status": "yes"}`)
	require.ErrorIs(t, err, domain.ErrClassification)
}
