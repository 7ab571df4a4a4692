// Package reply decides whether an athlete's inbound message warrants an
// automatic reply, using the Gemini API.
package reply

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"eoinrun/coach-bot/internal/domain"
)

const promptTemplate = `I'm the coach of the athlete. There is the replying message from the athlete for my message. Are there any needs to reply to it?
For example, in these cases, you don't need reply.
examples: [
{"subject":"Hello", "body":"ok"},
{"subject":"RE: Nice work on Final Surge this week!", "body":"Text"},
{"subject":"Well done on the training", "body":"Thanks Eoin. A good start to August also I am happy to sign up for the year if you let me know the details."}
]
Please give me the answer with only yes or no.
If it is yes, please give me the reasonable and human-like respond that should sent to athletes with 1-2 sentences format like this.
{"status": "yes", "answer": "........."}
If it is no, please give me the answer with only no like this.
{"status": "no"}
This is the message from athlete.
{
    subject: %q
    body: %q
}`

// Client calls the Gemini model and parses its {status, answer} verdict.
type Client struct {
	genai *genai.Client
	model string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{genai: client, model: model}, nil
}

// Decide asks the model whether the message needs a reply and, if so, what to
// send. Any malformed model output is a classification error.
func (c *Client) Decide(ctx context.Context, subject, body string) (domain.ReplyDecision, error) {
	prompt := fmt.Sprintf(promptTemplate, subject, body)
	res, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return domain.ReplyDecision{}, fmt.Errorf("%w: %v", domain.ErrClassification, err)
	}
	return parseDecision(res.Text())
}

// parseDecision decodes the model's JSON verdict, tolerating markdown fences
// around it.
func parseDecision(raw string) (domain.ReplyDecision, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		Status string `json:"status"`
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return domain.ReplyDecision{}, fmt.Errorf("%w: decode %q: %v", domain.ErrClassification, raw, err)
	}
	switch parsed.Status {
	case "yes":
		if parsed.Answer == "" {
			return domain.ReplyDecision{}, fmt.Errorf("%w: yes verdict with empty answer", domain.ErrClassification)
		}
		return domain.ReplyDecision{Reply: true, Answer: parsed.Answer}, nil
	case "no":
		return domain.ReplyDecision{}, nil
	default:
		return domain.ReplyDecision{}, fmt.Errorf("%w: unknown status %q", domain.ErrClassification, parsed.Status)
	}
}
