package conversation

import (
	"context"
	"strings"
)

// runAssistant answers a single question and always closes the assistant session.
func (e *Engine) runAssistant(ctx context.Context, to, question string) {
	answer := ""
	if e.assistant != nil {
		reply, err := e.assistant.Ask(ctx, question)
		e.report(OpAssistant, to, err)
		if err == nil {
			answer = strings.TrimSpace(reply)
		}
	}
	if answer == "" {
		answer = msgAssistantError
	}

	e.sendText(ctx, to, answer, "")
	e.sessions.Delete(to)
	e.sendButtons(ctx, to, msgFollowupPrompt, followupButtons)
}
