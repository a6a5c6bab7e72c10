// Package service provides the core business service that implements
// the dependencies required by the HTTP API: it owns each match's event
// log, folds derived state after every accepted event, and drives the
// persistence and broadcast collaborators.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/sideout/internal/adapters/mq/queue"
	workerpool "github.com/okian/sideout/internal/adapters/mq/worker"
	"github.com/okian/sideout/internal/adapters/repository"
	"github.com/okian/sideout/internal/domain/dedupe"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/internal/domain/replay"
	"github.com/okian/sideout/internal/domain/rotation"
	"github.com/okian/sideout/internal/domain/stats"
	"github.com/okian/sideout/internal/domain/substitution"
	"github.com/okian/sideout/pkg/logger"
	"github.com/okian/sideout/pkg/metrics"
)

// Broadcaster receives the fresh snapshot after every accepted event.
type Broadcaster interface {
	Broadcast(matchID string, state replay.State)
}

// match is the in-memory scoring state for one loaded match. The log is
// the source of truth; state is always the fold of it.
type match struct {
	log       *model.Log
	state     replay.State
	ourSide   model.TeamSide
	homeName  string
	awayName  string
	dismissed []int

	eventsSinceSave int
	lastSaveTrigger time.Time
}

// Service implements the engine boundary for the scoring API.
type Service struct {
	mu sync.RWMutex

	matches map[string]*match

	// Core components
	deduper   dedupe.Deduper
	saveQueue queue.Queue
	savePool  *workerpool.Pool
	store     repository.Store

	broadcaster Broadcaster

	// Configuration
	dedupeSize         int
	saveQueueSize      int
	saveWorkerCount    int
	saveEventThreshold int
	saveInterval       time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the durable event store. Without one the service runs
// purely in memory and no save pipeline is started.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithBroadcaster sets the snapshot broadcaster.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) {
		s.broadcaster = b
	}
}

// WithDedupeSize sets the size of the intake deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSaveQueueSize bounds the save-request queue.
func WithSaveQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.saveQueueSize = size
		}
	}
}

// WithSaveWorkerCount sets the number of save workers.
func WithSaveWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.saveWorkerCount = count
		}
	}
}

// WithSaveThreshold triggers a save after this many appended events.
func WithSaveThreshold(events int) Option {
	return func(s *Service) {
		if events > 0 {
			s.saveEventThreshold = events
		}
	}
}

// WithSaveInterval triggers a save after this much elapsed time.
func WithSaveInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.saveInterval = d
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		matches:            make(map[string]*match),
		dedupeSize:         50_000,
		saveQueueSize:      1024,
		saveWorkerCount:    1,
		saveEventThreshold: 10,
		saveInterval:       30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting match scoring service...")

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.saveQueue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.saveQueueSize),
	)
	if s.store != nil {
		s.savePool = workerpool.NewPool(s.saveWorkerCount, s.saveQueue, s, s.store)
		s.savePool.Start(ctx)
	} else {
		s.logger.Warn(ctx, "no event store configured; running in memory only")
	}

	s.started = true
	s.logger.Info(ctx, "match scoring service started",
		logger.Int("saveWorkers", s.saveWorkerCount),
		logger.Int("saveQueueSize", s.saveQueueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping match scoring service...")

	if s.savePool != nil {
		_ = s.savePool.Shutdown(ctx)
	} else if s.saveQueue != nil {
		_ = s.saveQueue.Close()
	}

	s.started = false
	s.logger.Info(ctx, "match scoring service stopped")
}

// SeenAndRecord atomically checks if an event id was seen at intake and
// records it if not. Returns true if the event was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// LoadMatch seeds a match from a persisted event list and computes its
// initial derived state. Set summaries for sets strictly before the
// current one are auto-dismissed: on resume they count as acknowledged.
func (s *Service) LoadMatch(ctx context.Context, matchID string, events []model.Event, ourSide model.TeamSide, homeName, awayName string) (replay.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return replay.State{}, ErrNotStarted
	}

	m := &match{
		log:             model.NewLog(events),
		ourSide:         ourSide,
		homeName:        homeName,
		awayName:        awayName,
		lastSaveTrigger: time.Now(),
	}
	first := s.fold(m)
	for _, sc := range first.SetScores {
		if sc.SetNumber < first.CurrentSet {
			m.dismissed = append(m.dismissed, sc.SetNumber)
		}
	}
	m.state = s.fold(m)
	if m.state.DuplicatesDropped > 0 {
		s.logger.Warn(ctx, "duplicate event ids dropped on load",
			logger.String("matchID", matchID),
			logger.Int("dropped", m.state.DuplicatesDropped),
		)
	}
	s.matches[matchID] = m
	metrics.UpdateActiveMatches(len(s.matches))

	s.logger.Info(ctx, "match loaded",
		logger.String("matchID", matchID),
		logger.Int("events", m.log.Len()),
		logger.Int("currentSet", m.state.CurrentSet),
	)
	return m.state, nil
}

// AddEvent validates one proposed event against current derived state,
// appends it, re-folds, and runs set/match completion detection (which may
// append synthetic events). Rejections leave the log untouched.
func (s *Service) AddEvent(ctx context.Context, matchID string, e model.Event) (replay.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return replay.State{}, ErrNotStarted
	}

	m, ok := s.matches[matchID]
	if !ok {
		// First event for an unseen match starts a fresh log.
		m = &match{log: model.NewLog(nil), ourSide: model.TeamHome, lastSaveTrigger: time.Now()}
		m.state = s.fold(m)
		s.matches[matchID] = m
		metrics.UpdateActiveMatches(len(s.matches))
	}

	if err := s.validate(m, e); err != nil {
		metrics.RecordEventRejected(rejectionLabel(err))
		s.logger.Warn(ctx, "event rejected",
			logger.String("matchID", matchID),
			logger.String("kind", model.KindOf(e)),
			logger.Error(err),
		)
		return m.state, err
	}

	m.log.Append(e)
	m.eventsSinceSave++
	metrics.RecordEventAppended()
	m.state = s.fold(m)

	s.detectCompletion(ctx, matchID, m)

	s.broadcast(matchID, m.state)
	s.maybeTriggerSave(ctx, matchID, m, e)
	return m.state, nil
}

// Undo truncates one logical step from the log and re-folds. A point that
// triggered synthetic completion events is removed together with them.
func (s *Service) Undo(ctx context.Context, matchID string) (replay.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[matchID]
	if !ok {
		return replay.State{}, ErrUnknownMatch
	}
	span := replay.UndoSpan(m.log.Events())
	if span == 0 {
		return m.state, ErrNothingToUndo
	}
	m.log.Truncate(span)
	m.state = s.fold(m)
	metrics.RecordUndoStep()

	s.logger.Info(ctx, "undo applied",
		logger.String("matchID", matchID),
		logger.Int("truncated", span),
	)
	s.broadcast(matchID, m.state)
	s.triggerSave(ctx, matchID, m)
	return m.state, nil
}

// DismissSummary acknowledges a set summary so re-folds stop surfacing it.
func (s *Service) DismissSummary(ctx context.Context, matchID string, setNumber int) (replay.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[matchID]
	if !ok {
		return replay.State{}, ErrUnknownMatch
	}
	for _, n := range m.dismissed {
		if n == setNumber {
			return m.state, nil
		}
	}
	m.dismissed = append(m.dismissed, setNumber)
	m.state = s.fold(m)
	s.broadcast(matchID, m.state)
	return m.state, nil
}

// State returns the current derived snapshot for a match.
func (s *Service) State(_ context.Context, matchID string) (replay.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[matchID]
	if !ok {
		return replay.State{}, ErrUnknownMatch
	}
	return m.state, nil
}

// Stats computes per-player aggregates from the match's event list.
func (s *Service) Stats(_ context.Context, matchID string) (stats.MatchStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[matchID]
	if !ok {
		return stats.MatchStats{}, ErrUnknownMatch
	}
	return stats.Compute(m.log.Events()), nil
}

// EventsForSave supplies the save worker with the current event list.
func (s *Service) EventsForSave(matchID string) ([]model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[matchID]
	if !ok {
		return nil, false
	}
	return m.log.Events(), true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totalEvents := 0
	for _, m := range s.matches {
		totalEvents += m.log.Len()
	}
	out := map[string]interface{}{
		"started":     s.started,
		"matches":     len(s.matches),
		"totalEvents": totalEvents,
	}
	if s.deduper != nil {
		out["dedupeSize"] = s.deduper.Size()
	}
	return out
}

// fold recomputes derived state from the match's full log.
func (s *Service) fold(m *match) replay.State {
	start := time.Now()
	st := replay.Fold(m.log.Events(),
		replay.WithOurSide(m.ourSide),
		replay.WithTeamNames(m.homeName, m.awayName),
		replay.WithDismissedSets(m.dismissed),
	)
	metrics.RecordFoldLatency(float64(time.Since(start).Milliseconds()))
	return st
}

// validate gates a proposed event on current derived state. Precondition
// violations and domain-rule rejections surface here, before any append.
func (s *Service) validate(m *match, e model.Event) error {
	if m.state.MatchFinished {
		return ErrMatchFinished
	}

	switch ev := e.(type) {
	case model.PointForUs, model.PointForOpponent, model.ReceptionEvaluated,
		model.FreeballSent, model.FreeballReceived:
		if m.state.SetFinished {
			return ErrSetFinished
		}
		if !m.state.HasLineup {
			return ErrNoLineup
		}
	case model.Substitution:
		if !m.state.HasLineup {
			return ErrNoLineup
		}
		if ev.LiberoSwap {
			// Libero changes are unlimited and bypass the validator.
			return nil
		}
		onCourt := rotation.OnCourtIDs(m.state.EffectiveLineup())
		return m.state.Subs.Validate(ev.PlayerOutID, ev.PlayerIn.ID, onCourt)
	case model.TimeoutCalled:
		switch ev.Side {
		case model.SideUs:
			if m.state.TimeoutsUs >= replay.TimeoutsPerSet {
				return ErrTimeoutLimit
			}
		case model.SideOpponent:
			if m.state.TimeoutsOpponent >= replay.TimeoutsPerSet {
				return ErrTimeoutLimit
			}
		}
	}
	return nil
}

// detectCompletion checks the active set after a scoring fold and appends
// synthetic set-ended / set-started events. Synthetic events are ordinary
// log entries with the same undo semantics as user-issued ones.
func (s *Service) detectCompletion(ctx context.Context, matchID string, m *match) {
	winner, done := m.state.CompletedWinner()
	if !done {
		return
	}

	endedSet := m.state.CurrentSet
	m.log.Append(model.SetEnded{
		Meta:      s.syntheticMeta(matchID),
		SetNumber: endedSet,
		HomeScore: m.state.HomeScore,
		AwayScore: m.state.AwayScore,
		Winner:    winner,
	})
	m.eventsSinceSave++
	metrics.RecordSyntheticEvent()
	m.state = s.fold(m)

	if m.state.MatchFinished {
		s.logger.Info(ctx, "match finished",
			logger.String("matchID", matchID),
			logger.Int("setsWonHome", m.state.SetsWonHome),
			logger.Int("setsWonAway", m.state.SetsWonAway),
		)
		return
	}

	m.log.Append(model.SetStarted{
		Meta:      s.syntheticMeta(matchID),
		SetNumber: endedSet + 1,
	})
	m.eventsSinceSave++
	metrics.RecordSyntheticEvent()
	m.state = s.fold(m)

	s.logger.Info(ctx, "set finished",
		logger.String("matchID", matchID),
		logger.Int("set", endedSet),
		logger.String("winner", string(winner)),
	)
}

func (s *Service) syntheticMeta(matchID string) model.Meta {
	return model.Meta{
		ID:      uuid.NewString(),
		MatchID: matchID,
		At:      time.Now().UTC(),
	}
}

func (s *Service) broadcast(matchID string, st replay.State) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(matchID, st)
	}
}

// maybeTriggerSave enqueues a durable save when enough events or time have
// accumulated, or when the event itself warrants an immediate save.
func (s *Service) maybeTriggerSave(ctx context.Context, matchID string, m *match, e model.Event) {
	immediate := false
	switch e.(type) {
	case model.SetEnded:
		immediate = true
	default:
		if m.state.SetFinished || m.state.MatchFinished {
			immediate = true
		}
	}
	if !immediate &&
		m.eventsSinceSave < s.saveEventThreshold &&
		time.Since(m.lastSaveTrigger) < s.saveInterval {
		return
	}
	s.triggerSave(ctx, matchID, m)
}

// triggerSave is fire-and-forget: a refused enqueue is logged and the next
// trigger retries with the full event list.
func (s *Service) triggerSave(ctx context.Context, matchID string, m *match) {
	if s.store == nil || s.saveQueue == nil {
		return
	}
	if ok := s.saveQueue.Enqueue(ctx, queue.SaveRequest{MatchID: matchID}); !ok {
		s.logger.Warn(ctx, "save queue refused request",
			logger.String("matchID", matchID),
		)
		return
	}
	m.eventsSinceSave = 0
	m.lastSaveTrigger = time.Now()
}

// rejectionLabel maps rejection errors to low-cardinality metric labels.
func rejectionLabel(err error) string {
	switch {
	case errors.Is(err, ErrMatchFinished):
		return "match_finished"
	case errors.Is(err, ErrSetFinished):
		return "set_finished"
	case errors.Is(err, ErrNoLineup):
		return "no_lineup"
	case errors.Is(err, ErrTimeoutLimit):
		return "timeout_limit"
	case errors.Is(err, substitution.ErrLimitReached):
		return "sub_limit"
	case errors.Is(err, substitution.ErrNotOnCourt):
		return "sub_not_on_court"
	case errors.Is(err, substitution.ErrAlreadyOnCourt):
		return "sub_already_on_court"
	case errors.Is(err, substitution.ErrPairedElsewhere):
		return "sub_paired_elsewhere"
	case errors.Is(err, substitution.ErrPairExhausted):
		return "sub_pair_exhausted"
	default:
		return "other"
	}
}
