package studio

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Mas3oood/Bovali/internal/asset"
	"github.com/Mas3oood/Bovali/internal/history"
	"github.com/Mas3oood/Bovali/internal/i18n"
	"github.com/Mas3oood/Bovali/internal/prompt"
	"github.com/Mas3oood/Bovali/internal/providers/gemini"
)

// SendChat runs one chat turn and returns the transcript including the
// reply. While the active workflow has an image on its canvas the text is
// treated as an edit instruction for that image; otherwise it goes to the
// free-form dialogue. One turn at a time per session; a second submit
// while a turn is in flight fails with ErrChatBusy.
func (s *Session) SendChat(ctx context.Context, text string, locale i18n.Locale) ([]ChatTurn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.Transcript(), nil
	}

	s.mu.Lock()
	if s.chatBusy {
		s.mu.Unlock()
		return nil, ErrChatBusy
	}
	s.chatBusy = true
	s.chat = append(s.chat, ChatTurn{Speaker: SpeakerUser, Text: text, At: time.Now().UTC()})

	target := s.active
	var editImg *asset.Image
	if img := s.activeOutputLocked(); img != nil {
		copied := *img
		editImg = &copied
	}
	if editImg == nil && s.dialogue == nil && s.backends.NewDialogue != nil {
		s.dialogue = s.backends.NewDialogue()
	}
	dialogue := s.dialogue
	s.mu.Unlock()

	var reply ChatTurn
	if editImg != nil {
		reply = s.editTurn(ctx, target, *editImg, text, locale)
	} else {
		reply = s.dialogueTurn(ctx, dialogue, text, locale)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatBusy = false
	s.chat = append(s.chat, reply)
	return append([]ChatTurn(nil), s.chat...), nil
}

// Transcript returns a copy of the chat transcript.
func (s *Session) Transcript() []ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatTurn(nil), s.chat...)
}

// ChatBusy reports whether a turn is currently in flight.
func (s *Session) ChatBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatBusy
}

// editTurn reworks the canvas image of the workflow that was active when
// the turn started, then swaps the result onto that workflow's canvas.
func (s *Session) editTurn(ctx context.Context, target Workflow, img asset.Image, text string, locale i18n.Locale) ChatTurn {
	if s.backends.Generator == nil {
		return botTurn(i18n.T(locale, i18n.KeyGeminiUnconfigured))
	}

	edited, replyText, err := s.backends.Generator.EditImage(ctx, prompt.WrapEdit(text), img)
	if err != nil {
		var textOnly *gemini.TextOnlyError
		if errors.As(err, &textOnly) {
			return botTurn(textOnly.Text)
		}
		s.logger.Warn().Err(err).Str("session", s.ID).Msg("chat edit turn failed")
		return botTurn(err.Error())
	}

	s.mu.Lock()
	s.replaceOutputLocked(target, edited)
	s.mu.Unlock()

	if strings.TrimSpace(replyText) == "" {
		replyText = i18n.T(locale, i18n.KeyEditConfirmation)
	}
	return botTurn(replyText)
}

// dialogueTurn forwards free-form text to the conversational backend.
func (s *Session) dialogueTurn(ctx context.Context, dialogue Dialogue, text string, locale i18n.Locale) ChatTurn {
	if dialogue == nil {
		return botTurn(i18n.T(locale, i18n.KeyGeminiUnconfigured))
	}

	reply, err := dialogue.Send(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Str("session", s.ID).Msg("chat turn failed")
		return botTurn(i18n.T(locale, i18n.KeyChatApology))
	}
	return botTurn(reply)
}

// replaceOutputLocked swaps an edited image onto the canvas of the
// workflow the edit started from. If that canvas was voided in the
// meantime the result is dropped rather than resurrected.
func (s *Session) replaceOutputLocked(wf Workflow, img *asset.Image) {
	role := history.RolePattern
	switch wf {
	case WorkflowGenerator:
		if s.generator.selected >= len(s.generator.outputs) {
			return
		}
		s.generator.outputs[s.generator.selected] = img
		if s.generator.mode != prompt.ModeFromOutline {
			role = history.RoleRenderShot
		}
	case WorkflowExtractor:
		if s.extractor.output == nil {
			return
		}
		s.extractor.output = img
		if s.extractor.kind == prompt.ExtractMaterial {
			role = history.RoleMaterial
		}
	case WorkflowStudio:
		if s.studio.output == nil {
			return
		}
		s.studio.output = img
	}
	s.recordOutputsLocked(role, []*asset.Image{img})
}

func botTurn(text string) ChatTurn {
	return ChatTurn{Speaker: SpeakerBot, Text: text, At: time.Now().UTC()}
}
