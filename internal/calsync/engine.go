package calsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chris-regnier/focusflow/internal/event"
	"github.com/chris-regnier/focusflow/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Policy decides which side wins when an event changed on both sides since
// the last sync.
type Policy string

const (
	PolicyRemote Policy = "remote"
	PolicyLocal  Policy = "local"
	PolicyNewest Policy = "newest"
)

// ParsePolicy validates a conflict policy name; empty means remote.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyRemote, nil
	case PolicyRemote, PolicyLocal, PolicyNewest:
		return p, nil
	}
	return "", fmt.Errorf("invalid conflict policy %q (use remote, local or newest)", s)
}

// Options bound a single sync run.
type Options struct {
	From   time.Time
	To     time.Time
	Policy Policy
	DryRun bool
}

// ItemError records a failure on a single event.
type ItemError struct {
	Op       string `json:"op"`
	EventID  string `json:"event_id,omitempty"`
	GoogleID string `json:"google_id,omitempty"`
	Err      string `json:"error"`
}

func (e ItemError) Error() string {
	id := e.EventID
	if id == "" {
		id = e.GoogleID
	}
	return fmt.Sprintf("%s %s: %s", e.Op, id, e.Err)
}

// Result counts what a sync run did.
type Result struct {
	Imported  int         `json:"imported"`  // remote events created locally
	Updated   int         `json:"updated"`   // local events overwritten by remote changes
	Exported  int         `json:"exported"`  // local events created remotely
	Pushed    int         `json:"pushed"`    // remote events overwritten by local changes
	Linked    int         `json:"linked"`    // local events matched to remote ones by title and time
	Removed   int         `json:"removed"`   // local events deleted because the remote one is gone
	Deleted   int         `json:"deleted"`   // queued remote deletions performed
	Conflicts int         `json:"conflicts"` // events changed on both sides
	Unchanged int         `json:"unchanged"`
	Errors    []ItemError `json:"errors,omitempty"`
	DryRun    bool        `json:"dry_run,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Changes returns the number of events written on either side.
func (r Result) Changes() int {
	return r.Imported + r.Updated + r.Exported + r.Pushed + r.Linked + r.Removed + r.Deleted
}

// Engine performs two-way synchronization between Store and Remote.
type Engine struct {
	Store  storage.Storage
	Remote Remote
	Logger *zap.Logger
	Retry  Retry
	// Concurrency bounds parallel remote inserts; default 4.
	Concurrency int
	Now         func() time.Time
}

func (e *Engine) now() time.Time {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return now().UTC().Truncate(time.Second)
}

func (e *Engine) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

type run struct {
	*Engine
	opts  Options
	log   *zap.Logger
	retry Retry

	mu  sync.Mutex
	res Result
}

func (r *run) inc(field *int) {
	r.mu.Lock()
	*field++
	r.mu.Unlock()
}

func (r *run) fail(op, eventID, googleID string, err error) {
	r.log.Warn("sync item failed",
		zap.String("op", op), zap.String("event", eventID), zap.String("google_id", googleID), zap.Error(err))
	r.mu.Lock()
	r.res.Errors = append(r.res.Errors, ItemError{Op: op, EventID: eventID, GoogleID: googleID, Err: err.Error()})
	r.mu.Unlock()
}

// mark records a successful sync. The sync time is never earlier than the
// event's own UpdatedAt, so a freshly written event is not seen as dirty.
func (r *run) mark(id, googleID, etag string, updatedAt time.Time) error {
	at := r.now()
	if updatedAt.After(at) {
		at = updatedAt
	}
	return r.Store.MarkEventSynced(id, googleID, etag, at)
}

// Sync runs one reconciliation pass. It returns an error only when the run
// could not proceed at all (remote listing failed, local store unreadable,
// context canceled); per-event failures are reported in Result.Errors.
func (e *Engine) Sync(ctx context.Context, opts Options) (Result, error) {
	if opts.Policy == "" {
		opts.Policy = PolicyRemote
	}
	if !opts.To.After(opts.From) {
		return Result{}, fmt.Errorf("invalid sync window %s to %s",
			opts.From.Format(time.RFC3339), opts.To.Format(time.RFC3339))
	}
	retry := e.Retry
	if retry.Attempts == 0 {
		retry = DefaultRetry
	}
	r := &run{
		Engine: e,
		opts:   opts,
		retry:  retry,
		log: e.log().With(
			zap.Time("from", opts.From), zap.Time("to", opts.To),
			zap.String("policy", string(opts.Policy)), zap.Bool("dry_run", opts.DryRun)),
	}
	r.res.StartedAt = e.now()
	r.res.DryRun = opts.DryRun
	r.log.Debug("calendar sync started")

	r.flushDeletes(ctx)

	var remote []RemoteEvent
	err := r.retry.Do(ctx, r.log, "list", func() error {
		var err error
		remote, err = e.Remote.ListEvents(ctx, opts.From, opts.To)
		return err
	})
	if err != nil {
		return r.finish(), fmt.Errorf("listing remote events: %w", err)
	}
	local, err := e.Store.ListEvents(storage.EventListOptions{From: &opts.From, To: &opts.To})
	if err != nil {
		return r.finish(), fmt.Errorf("listing local events: %w", err)
	}

	byGoogle := make(map[string]event.Event)
	var unlinked []event.Event
	byKey := make(map[string][]int)
	for _, l := range local {
		if l.GoogleID != "" {
			byGoogle[l.GoogleID] = l
			continue
		}
		byKey[l.MatchKey()] = append(byKey[l.MatchKey()], len(unlinked))
		unlinked = append(unlinked, l)
	}
	claimed := make([]bool, len(unlinked))
	seen := make(map[string]bool, len(remote))

	for _, re := range remote {
		if err := ctx.Err(); err != nil {
			return r.finish(), err
		}
		seen[re.ID] = true

		l, ok := byGoogle[re.ID]
		if !ok {
			// The linked local event may have moved outside the window.
			found, err := e.Store.GetEventByGoogleID(re.ID)
			switch {
			case err == nil:
				l, ok = found, true
			case !errors.Is(err, storage.ErrNotFound):
				r.fail("lookup", "", re.ID, err)
				continue
			}
		}
		if ok {
			r.reconcile(ctx, l, re)
			continue
		}

		matched := -1
		for _, i := range byKey[re.MatchKey()] {
			if !claimed[i] {
				matched = i
				break
			}
		}
		if matched >= 0 {
			claimed[matched] = true
			r.link(unlinked[matched], re)
			continue
		}
		r.importEvent(re)
	}

	for _, l := range local {
		if l.GoogleID != "" && !seen[l.GoogleID] {
			if err := ctx.Err(); err != nil {
				return r.finish(), err
			}
			r.confirm(ctx, l)
		}
	}

	var toExport []event.Event
	for i, l := range unlinked {
		if !claimed[i] {
			toExport = append(toExport, l)
		}
	}
	if err := r.export(ctx, toExport); err != nil {
		return r.finish(), err
	}

	res := r.finish()
	if !opts.DryRun {
		r.persist(res)
	}
	return res, nil
}

func (r *run) finish() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.res.FinishedAt = r.now()
	res := r.res
	r.log.Info("calendar sync finished",
		zap.Int("imported", res.Imported),
		zap.Int("updated", res.Updated),
		zap.Int("exported", res.Exported),
		zap.Int("pushed", res.Pushed),
		zap.Int("linked", res.Linked),
		zap.Int("removed", res.Removed),
		zap.Int("deleted", res.Deleted),
		zap.Int("conflicts", res.Conflicts),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("took", res.FinishedAt.Sub(res.StartedAt)))
	return res
}

func (r *run) persist(res Result) {
	if err := r.Store.SetSetting(LastSyncKey, res.FinishedAt.Format(time.RFC3339)); err != nil {
		r.log.Warn("saving last sync time", zap.Error(err))
	}
	data, err := json.Marshal(res)
	if err != nil {
		r.log.Warn("encoding sync result", zap.Error(err))
		return
	}
	if err := r.Store.SetSetting(LastResultKey, string(data)); err != nil {
		r.log.Warn("saving sync result", zap.Error(err))
	}
}

func (r *run) flushDeletes(ctx context.Context) {
	ids, err := PendingDeletes(r.Store)
	if err != nil {
		r.fail("pending", "", "", err)
		return
	}
	if len(ids) == 0 {
		return
	}
	var keep []string
	for _, id := range ids {
		if r.opts.DryRun {
			r.inc(&r.res.Deleted)
			continue
		}
		err := r.retry.Do(ctx, r.log, "delete", func() error {
			return r.Remote.DeleteEvent(ctx, id)
		})
		if err == nil || errors.Is(err, ErrRemoteNotFound) {
			r.inc(&r.res.Deleted)
			continue
		}
		keep = append(keep, id)
		r.fail("delete", "", id, err)
	}
	if r.opts.DryRun {
		return
	}
	if err := savePendingDeletes(r.Store, keep); err != nil {
		r.fail("pending", "", "", err)
	}
}

// remoteChanged reports whether the remote event changed since l was last synced.
func remoteChanged(l event.Event, re RemoteEvent) bool {
	if l.SyncedAt == nil {
		return true
	}
	if l.ETag != "" && re.ETag != "" {
		return l.ETag != re.ETag
	}
	return re.Updated.After(*l.SyncedAt)
}

func (r *run) remoteWins(l event.Event, re RemoteEvent) bool {
	switch r.opts.Policy {
	case PolicyLocal:
		return false
	case PolicyNewest:
		return !l.UpdatedAt.After(re.Updated)
	}
	return true
}

func (r *run) reconcile(ctx context.Context, l event.Event, re RemoteEvent) {
	changed, dirty := remoteChanged(l, re), l.Dirty()
	switch {
	case changed && dirty:
		r.inc(&r.res.Conflicts)
		r.log.Info("sync conflict",
			zap.String("event", l.ID), zap.String("google_id", re.ID), zap.Bool("remote_wins", r.remoteWins(l, re)))
		if r.remoteWins(l, re) {
			r.pull(l, re)
		} else {
			r.push(ctx, l, re.ID)
		}
	case changed:
		r.pull(l, re)
	case dirty:
		r.push(ctx, l, re.ID)
	default:
		r.inc(&r.res.Unchanged)
	}
}

// pull overwrites the local event with the remote one.
func (r *run) pull(l event.Event, re RemoteEvent) {
	if !r.opts.DryRun {
		re.apply(&l)
		updated, err := r.Store.UpdateEvent(l)
		if err != nil {
			r.fail("pull", l.ID, re.ID, err)
			return
		}
		if err := r.mark(updated.ID, re.ID, re.ETag, updated.UpdatedAt); err != nil {
			r.fail("pull", l.ID, re.ID, err)
			return
		}
	}
	r.inc(&r.res.Updated)
}

// push overwrites the remote event with the local one.
func (r *run) push(ctx context.Context, l event.Event, googleID string) {
	if !r.opts.DryRun {
		var out RemoteEvent
		err := r.retry.Do(ctx, r.log, "update", func() error {
			var err error
			out, err = r.Remote.UpdateEvent(ctx, googleID, l)
			return err
		})
		if err != nil {
			r.fail("push", l.ID, googleID, err)
			return
		}
		if err := r.mark(l.ID, googleID, out.ETag, l.UpdatedAt); err != nil {
			r.fail("push", l.ID, googleID, err)
			return
		}
	}
	r.inc(&r.res.Pushed)
}

// link attaches an unlinked local event to the remote event with the same
// title and start time instead of creating a duplicate.
func (r *run) link(l event.Event, re RemoteEvent) {
	if !r.opts.DryRun {
		if err := r.mark(l.ID, re.ID, re.ETag, l.UpdatedAt); err != nil {
			r.fail("link", l.ID, re.ID, err)
			return
		}
	}
	r.inc(&r.res.Linked)
}

func (r *run) importEvent(re RemoteEvent) {
	if !r.opts.DryRun {
		e, err := re.toLocal(r.now())
		if err != nil {
			r.fail("import", "", re.ID, err)
			return
		}
		if err := r.Store.CreateEvent(e); err != nil {
			r.fail("import", e.ID, re.ID, err)
			return
		}
		if err := r.mark(e.ID, re.ID, re.ETag, e.UpdatedAt); err != nil {
			r.fail("import", e.ID, re.ID, err)
			return
		}
	}
	r.inc(&r.res.Imported)
}

// confirm checks a linked event missing from the remote window. Events that
// moved out of the window are left alone; events deleted remotely are
// deleted locally unless they carry unsynced local edits.
func (r *run) confirm(ctx context.Context, l event.Event) {
	err := r.retry.Do(ctx, r.log, "get", func() error {
		_, err := r.Remote.GetEvent(ctx, l.GoogleID)
		return err
	})
	switch {
	case err == nil:
		r.inc(&r.res.Unchanged)
	case errors.Is(err, ErrRemoteNotFound):
		if l.Dirty() {
			r.log.Info("keeping locally edited event deleted remotely",
				zap.String("event", l.ID), zap.String("google_id", l.GoogleID))
			r.inc(&r.res.Conflicts)
			return
		}
		if !r.opts.DryRun {
			if err := r.Store.DeleteEvent(l.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
				r.fail("remove", l.ID, l.GoogleID, err)
				return
			}
		}
		r.inc(&r.res.Removed)
	default:
		r.fail("confirm", l.ID, l.GoogleID, err)
	}
}

// export inserts unlinked local events remotely, a few at a time.
func (r *run) export(ctx context.Context, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}
	limit := r.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, l := range events {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if r.opts.DryRun {
				r.inc(&r.res.Exported)
				return nil
			}
			var out RemoteEvent
			err := r.retry.Do(gctx, r.log, "insert", func() error {
				var err error
				out, err = r.Remote.InsertEvent(gctx, l)
				return err
			})
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				r.fail("export", l.ID, "", err)
				return nil
			}
			if err := r.mark(l.ID, out.ID, out.ETag, l.UpdatedAt); err != nil {
				r.fail("export", l.ID, out.ID, err)
				return nil
			}
			r.inc(&r.res.Exported)
			return nil
		})
	}
	return g.Wait()
}

// LastResult returns the result of the last completed sync, if any.
func LastResult(st storage.Storage) (Result, bool, error) {
	raw, err := st.GetSetting(LastResultKey)
	if errors.Is(err, storage.ErrNotFound) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Result{}, false, fmt.Errorf("decoding %s: %w", LastResultKey, err)
	}
	return res, true, nil
}
