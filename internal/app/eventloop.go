package app

import (
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/scriba-editor/scriba/internal/check"
	"github.com/scriba-editor/scriba/internal/surface"
)

// Run starts the background workers and drives the interactive event loop
// until quit. It is the only goroutine that mutates the buffer and the
// annotations; posted callbacks execute here in arrival order.
func (a *Application) Run() error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	if a.sched != nil {
		a.sched.Start()
	}
	a.startAutosave()

	for {
		a.editor.Render()

		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventMouse:
			a.handleMouse(ev)
		case *surface.CallbackEvent:
			ev.Run()
		case *tcell.EventKey:
			if err := a.handleKey(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
		}
	}
}

func (a *Application) handleKey(ev *tcell.EventKey) error {
	class, r := classifyKey(ev)
	switch class {
	case KeyControl:
		return a.handleControl(ev)
	case KeySpace:
		a.handleSpace()
	case KeyPeriod:
		a.handlePeriod()
	case KeyPunctuation:
		a.handlePunctuation(r)
	case KeyClosingQuote:
		a.handleClosingQuote(r)
	case KeyLetter, KeyOther:
		a.editor.InsertRune(r)
	}
	a.updateHover()
	return nil
}

func (a *Application) handleControl(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return ErrQuit
	case tcell.KeyCtrlS:
		a.save()
	case tcell.KeyCtrlT:
		a.toggleCheck()
	case tcell.KeyCtrlG:
		a.checkSelection()
	case tcell.KeyCtrlR:
		a.rewriteSelection()
	case tcell.KeyCtrlA:
		a.editor.ToggleAnchor()
	case tcell.KeyEscape:
		a.editor.ClearSelection()
		a.editor.ClearHover()
		a.manager.HoverEnd()
	case tcell.KeyEnter:
		a.editor.InsertNewline()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.editor.Backspace()
	case tcell.KeyUp:
		a.editor.MoveCursor(-1, 0)
		a.updateHover()
	case tcell.KeyDown:
		a.editor.MoveCursor(1, 0)
		a.updateHover()
	case tcell.KeyLeft:
		a.editor.MoveCursor(0, -1)
		a.updateHover()
	case tcell.KeyRight:
		a.editor.MoveCursor(0, 1)
		a.updateHover()
	case tcell.KeyTab:
		a.editor.InsertRune('\t')
	}
	return nil
}

// handleSpace applies the word replacements to the line prefix before the
// space lands. A prefix already in the cache was corrected earlier and is
// left alone.
func (a *Application) handleSpace() {
	prefix := a.editor.LinePrefix()
	if prefix != "" && !a.cache.Contains(prefix) {
		corrected := a.engine.ApplyWordReplacements(prefix)
		if corrected != prefix {
			a.editor.ReplaceLinePrefix(corrected)
		}
		a.cache.Put(prefix, corrected)
	}
	a.editor.InsertRune(' ')
}

// handlePeriod replaces a trailing wrong word before inserting the period.
func (a *Application) handlePeriod() {
	prefix := a.editor.LinePrefix()
	if replaced, ok := a.engine.ApplyPeriodTrigger(prefix); ok {
		a.editor.ReplaceLinePrefix(replaced)
	}
	a.editor.InsertRune('.')
}

// handlePunctuation inserts the punctuation rune, then lets the trigger
// fix the word before it and normalize the trailing space.
func (a *Application) handlePunctuation(r rune) {
	a.editor.InsertRune(r)
	prefix := a.editor.LinePrefix()
	if out, wordReplaced, spaceInserted := a.engine.ApplyPunctuationTrigger(prefix, r); wordReplaced || spaceInserted {
		a.editor.ReplaceLinePrefix(out)
	}
}

// handleClosingQuote corrects the prefix like a space would, then inserts
// the quote.
func (a *Application) handleClosingQuote(r rune) {
	prefix := a.editor.LinePrefix()
	if prefix != "" && !a.cache.Contains(prefix) {
		corrected := a.engine.ApplyWordReplacements(prefix)
		if corrected != prefix {
			a.editor.ReplaceLinePrefix(corrected)
		}
		a.cache.Put(prefix, corrected)
	}
	a.editor.InsertRune(r)
}

// handleMouse shows the message of the highlight under the pointer in the
// status line and records the hovered annotation.
func (a *Application) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := a.editor.PointAt(x, y)
	if h, ok := a.editor.HighlightAt(p); ok {
		a.editor.SetHover(h.Message)
		a.manager.HoverAt(p)
		return
	}
	a.editor.ClearHover()
	a.manager.HoverEnd()
}

// updateHover shows the annotation under the cursor in the status line.
func (a *Application) updateHover() {
	if ann, ok := a.manager.HoverAt(a.editor.Cursor()); ok {
		a.editor.SetHover(hoverText(ann))
		return
	}
	a.editor.ClearHover()
}

func (a *Application) save() {
	if err := a.editor.Save(); err != nil {
		a.logger.Warn("save failed: %v", err)
		a.editor.SetStatus("save failed: " + err.Error())
		return
	}
	a.editor.SetStatus("saved " + a.editor.Path())
}

func (a *Application) toggleCheck() {
	if a.sched == nil {
		a.editor.SetStatus("grammar check not configured")
		return
	}
	state := a.sched.State()
	if state.Enabled() {
		state.Disable()
		a.manager.RetireAll()
		a.editor.ClearHover()
		a.editor.SetStatus("grammar check off")
	} else {
		state.Enable()
		a.editor.SetStatus("grammar check on")
	}
}

func (a *Application) checkSelection() {
	if a.sched == nil {
		a.editor.SetStatus("grammar check not configured")
		return
	}
	if err := a.sched.CheckSelection(); err != nil {
		if errors.Is(err, check.ErrNoSelection) {
			a.editor.SetStatus("select text to check first")
			return
		}
		a.editor.SetStatus(err.Error())
	}
}

func (a *Application) rewriteSelection() {
	if a.dispatcher == nil {
		a.editor.SetStatus("rewrite not configured")
		return
	}
	sel, ok := a.editor.Selection()
	if !ok {
		a.editor.SetStatus("select text to rewrite first")
		return
	}
	prompt := rewritePrompt(a.editor.TextRange(sel))
	id := a.dispatcher.Dispatch(prompt)
	a.logger.Debug("dispatched rewrite request %d", id)
}

// rewritePrompt wraps the selected text in the rewrite instruction.
func rewritePrompt(text string) string {
	return "Rewrite the following text to improve clarity and flow. " +
		"Reply with the rewritten text only.\n\n" + text
}
