// Package tui is the interactive board: colleague cards grouped by category,
// with keyboard and mouse drag-and-drop, forms, pings and settings.
package tui

import (
	"context"
	"io"

	"teamtz/internal/logging"
	"teamtz/internal/store"
	"teamtz/internal/zone"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type Options struct {
	Dir    string
	Config *store.Config
	Level  zerolog.Level
}

func Run(opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference(opts.Config)

	log, logCloser, err := logging.NewFile(opts.Dir, opts.Level)
	if err != nil {
		log = zerolog.Nop()
	}
	if logCloser != nil {
		defer logCloser.Close()
	}
	log.Info().Str("dir", opts.Dir).Msg("tui start")

	s := store.Store{Dir: opts.Dir, Log: log}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newAppModel(ctx, appDeps{
		open: func(ctx context.Context) (store.KV, io.Closer, error) {
			kv, err := s.OpenKV(ctx)
			if err != nil {
				return nil, nil, err
			}
			return kv, kv, nil
		},
		clock: zone.SystemClock{},
		log:   log,
		cfg:   opts.Config,
		state: s,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if fm, ok := final.(appModel); ok && fm.closer != nil {
		if cerr := fm.closer.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close store")
		}
	}
	log.Info().Msg("tui exit")
	return err
}
