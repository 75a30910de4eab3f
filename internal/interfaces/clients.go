package interfaces

import "context"

// TextGenerator produces free text from a prompt. The Gemini client is the
// production implementation; callers must tolerate any error.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
