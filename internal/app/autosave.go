package app

import (
	"context"
	"time"
)

// startAutosave launches the periodic autosave loop. Saves are posted onto
// the interactive loop so they never race a keystroke. No-op when autosave
// is disabled or the editor has no backing file.
func (a *Application) startAutosave() {
	interval := time.Duration(a.cfg.Files.AutosaveInterval) * time.Second
	if interval <= 0 || a.editor.Path() == "" {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.autosaveCancel = cancel
	go a.autosaveLoop(ctx, interval)
}

func (a *Application) autosaveLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.editor.Post(func() {
				if !a.editor.Dirty() {
					return
				}
				if err := a.editor.Save(); err != nil {
					a.logger.Warn("autosave failed: %v", err)
					return
				}
				a.logger.Debug("autosaved %s", a.editor.Path())
			})
		}
	}
}
