package app

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// KeyClass buckets a key press for the substitution triggers. Every key
// event is classified exactly once; the event loop switches on the class
// exhaustively.
type KeyClass int

const (
	KeyLetter KeyClass = iota
	KeySpace
	KeyPeriod
	KeyPunctuation
	KeyClosingQuote
	KeyControl
	KeyOther
)

// String returns the class name, for logs.
func (k KeyClass) String() string {
	switch k {
	case KeyLetter:
		return "letter"
	case KeySpace:
		return "space"
	case KeyPeriod:
		return "period"
	case KeyPunctuation:
		return "punctuation"
	case KeyClosingQuote:
		return "closing-quote"
	case KeyControl:
		return "control"
	case KeyOther:
		return "other"
	default:
		return "unknown"
	}
}

// classifyKey buckets a tcell key event. Non-rune keys are control keys;
// rune keys classify by the rune itself.
func classifyKey(ev *tcell.EventKey) (KeyClass, rune) {
	if ev.Key() != tcell.KeyRune {
		return KeyControl, 0
	}
	r := ev.Rune()
	return classifyRune(r), r
}

func classifyRune(r rune) KeyClass {
	switch r {
	case ' ':
		return KeySpace
	case '.':
		return KeyPeriod
	case ',', ';', ':', '!', '?':
		return KeyPunctuation
	case '"', '\'', '”', '’', '»':
		return KeyClosingQuote
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return KeyLetter
	}
	return KeyOther
}
