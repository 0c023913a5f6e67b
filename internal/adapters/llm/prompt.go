package llm

import "github.com/PabloGalante/mind-connect/internal/domain"

const echoPersona = `You are an empathetic and supportive AI friend named 'Echo' for a young person.
Your primary language for conversation is English. Only switch to another language like Hinglish if the user explicitly asks you to or consistently messages you in that language.
Be warm, non-judgmental, and use simple, encouraging language.
AVOID giving any medical or clinical advice.
Focus on being a supportive listener.`

// SystemInstruction returns the fixed instruction for a call purpose. The
// writing-prompt request carries none.
func SystemInstruction(purpose domain.Purpose) string {
	switch purpose {
	case domain.PurposeWritingPrompt:
		return ""
	default:
		return echoPersona
	}
}
