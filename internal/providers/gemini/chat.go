package gemini

import (
	"context"
	"strings"
)

// Chat holds one multi-turn text dialogue with the chat model. The full
// transcript is replayed on every call, which is how the hosted API models a
// stateful session. Image edits never pass through here; they are one-shot
// Client calls and leave the dialogue memory untouched.
type Chat struct {
	client  *Client
	history []geminiContent
}

// NewChat opens an empty dialogue bound to the client's chat model.
func (c *Client) NewChat() *Chat {
	return &Chat{client: c}
}

// Send forwards the user text together with the prior transcript and returns
// the model reply. The transcript only advances when the call succeeds, so a
// failed turn can be retried without leaving ghost entries behind.
func (ch *Chat) Send(ctx context.Context, text string) (string, error) {
	turns := make([]geminiContent, 0, len(ch.history)+1)
	turns = append(turns, ch.history...)
	turns = append(turns, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: text}},
	})

	payload := geminiGenerateContentRequest{Contents: turns}
	var response geminiGenerateContentResponse
	if err := ch.client.invoke(ctx, ch.client.chatModel, payload, &response); err != nil {
		return "", err
	}

	reply := firstText(response)
	if reply == "" {
		return "", ErrNoOutput
	}

	ch.history = append(turns, geminiContent{
		Role:  "model",
		Parts: []geminiPart{{Text: reply}},
	})
	return reply, nil
}

// Len reports the number of committed turns, user and model sides counted
// separately.
func (ch *Chat) Len() int {
	return len(ch.history)
}

func firstText(response geminiGenerateContentResponse) string {
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}
