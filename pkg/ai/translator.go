package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const (
	translateSystemPrompt = "You are a translation engine. Translate the user's text into English. Reply with the translation only, no notes or quotes."
	guessSystemPrompt     = "Identify the language of the user's text. Reply with its ISO 639-1 code only, for example: en"
)

var isoCode = regexp.MustCompile(`^[a-z]{2}$`)

// ChatTranslator translates to English and guesses languages with a chat model
type ChatTranslator struct {
	groq *GroqClient
}

// NewChatTranslator creates a translator
func NewChatTranslator(groq *GroqClient) *ChatTranslator {
	return &ChatTranslator{groq: groq}
}

// Translate returns the English translation of text
func (t *ChatTranslator) Translate(ctx context.Context, text, sourceLang string) (string, error) {
	prompt := text
	if sourceLang != "" {
		prompt = fmt.Sprintf("Source language (ISO 639-1): %s\n\n%s", sourceLang, text)
	}
	out, err := t.groq.Complete(ctx, translateSystemPrompt, prompt, 2048)
	if err != nil {
		return "", err
	}
	out = strings.Trim(out, "\"“” \n")
	if out == "" {
		return "", fmt.Errorf("empty translation")
	}
	return out, nil
}

// GuessLanguage returns an ISO 639-1 code for text
func (t *ChatTranslator) GuessLanguage(ctx context.Context, text string) (string, error) {
	out, err := t.groq.Complete(ctx, guessSystemPrompt, text, 5)
	if err != nil {
		return "", err
	}
	code := strings.ToLower(strings.Trim(out, " .\"'\n"))
	if !isoCode.MatchString(code) {
		return "", fmt.Errorf("unexpected language code %q", out)
	}
	return code, nil
}
