package journal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Mavwarf/webshell/internal/connectivity"
	"github.com/Mavwarf/webshell/internal/shell"
)

// Recorder writes shell events to a Store under one run session id.
// Recording is best-effort: failures are logged, never returned.
type Recorder struct {
	store   Store
	session string
	log     *slog.Logger
}

// NewRecorder starts a new session on store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store:   store,
		session: uuid.NewString(),
		log:     slog.Default().With("component", "journal"),
	}
}

// Session returns the run session id.
func (r *Recorder) Session() string { return r.session }

// Start records the beginning of a run.
func (r *Recorder) Start(version string) {
	r.record(Entry{Time: time.Now(), Kind: KindSession, Subject: "start", Detail: "version=" + version})
}

// Stop records the end of a run.
func (r *Recorder) Stop() {
	r.record(Entry{Time: time.Now(), Kind: KindSession, Subject: "stop"})
}

// Navigation records a classified navigation attempt.
func (r *Recorder) Navigation(ev shell.NavigationEvent) {
	r.record(Entry{
		Time:    ev.At,
		Kind:    KindNavigation,
		Subject: ev.Decision.Action.String(),
		URL:     ev.URL,
		Detail:  "origin=" + ev.Origin.String(),
	})
}

// Transition records a connectivity state change.
func (r *Recorder) Transition(t connectivity.Transition) {
	detail := fmt.Sprintf("from=%s cause=%s", t.From, t.Cause)
	if t.Cause == connectivity.CauseLoadFailed {
		detail += fmt.Sprintf(" code=%d", t.Code)
	}
	r.record(Entry{
		Time:    t.At,
		Kind:    KindTransition,
		Subject: t.To.String(),
		URL:     t.URL,
		Detail:  detail,
	})
}

func (r *Recorder) record(e Entry) {
	e.Session = r.session
	if err := r.store.Record(e); err != nil {
		r.log.Warn("journal write failed", "path", r.store.Path(), "err", err)
	}
}
