package app

import (
	"github.com/corey/cfk/internal/domain/library"
	"github.com/corey/cfk/internal/ports"
)

// record appends a lifecycle event to the journal. Journal failures are
// logged; they never fail the transition itself.
func (k *Kernel) record(ev library.Event) {
	if k.journal == nil {
		return
	}
	entry := ports.JournalEntry{
		Library: ev.Library,
		Action:  string(ev.Action),
		Scope:   ev.Scope.String(),
		State:   k.stateOf(ev.Library),
		At:      ev.At,
	}
	if ev.Err != nil {
		entry.Error = ev.Err.Error()
	}
	if _, err := k.journal.Append(k.cfg.Profile, entry); err != nil {
		k.log.Error().Err(err).Str("library", ev.Library).Msg("journal append failed")
	}
}

func (k *Kernel) logEvent(ev library.Event) {
	if ev.Err != nil {
		k.log.Error().Err(ev.Err).Str("library", ev.Library).Str("action", string(ev.Action)).Msg("library transition failed")
		return
	}
	k.log.Debug().Str("library", ev.Library).Str("action", string(ev.Action)).Str("scope", ev.Scope.String()).Msg("library")
}

func (k *Kernel) stateOf(name string) string {
	lib, ok := k.Libraries.Get(name)
	if !ok {
		return ""
	}
	return lib.State().String()
}
