package searchkit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/searchkit/internal/metrics"
	"github.com/kailas-cloud/searchkit/internal/store"
)

const defaultDebounce = 10 * time.Millisecond

// Manager is the searchkit entry point. It reconciles the registered
// widget set into one search request per targeted index, dispatches them
// through the configured SearchClient, and folds the asynchronous responses
// back into a single observable SearchState.
//
// All state mutation goes through whole-state replacement on the internal
// store, which serializes change handling and response handling; widget
// contributions and reconciliation are synchronous, network calls are the
// only suspension points.
type Manager struct {
	client   SearchClient
	base     Parameters
	index    string
	logger   *zap.Logger
	debounce time.Duration

	registry *registry
	orch     *orchestrator
	store    *store.Store[SearchState]

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	skip   bool
	dirty  bool
	timer  *time.Timer
	closed bool
}

// New creates a Manager. WithIndex and WithSearchClient are required.
func New(opts ...Option) (*Manager, error) {
	cfg := &managerConfig{debounce: defaultDebounce}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.index == "" {
		return nil, errors.New("searchkit: primary index name required (use WithIndex)")
	}
	if cfg.client == nil {
		return nil, errors.New("searchkit: search client required (use WithSearchClient)")
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Base parameters are an immutable floor: widgets fold on top of a
	// clone and never see the caller's maps.
	base := cfg.base.Clone()
	base.Index = cfg.index
	if cfg.highlightPreTag != "" {
		base.HighlightPreTag = cfg.highlightPreTag
	}
	if cfg.highlightPostTag != "" {
		base.HighlightPostTag = cfg.highlightPostTag
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		client:   cfg.client,
		base:     base,
		index:    cfg.index,
		logger:   logger,
		debounce: cfg.debounce,
		orch:     newOrchestrator(cfg.index),
		store:    store.New(SearchState{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	m.registry = newRegistry(m.handleWidgetsChange)
	return m, nil
}

// Close detaches the manager: pending scheduled cycles are dropped and
// in-flight responses become no-ops. It does not abort network calls.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()
	m.cancel()
}

// State returns the current state snapshot.
func (m *Manager) State() SearchState {
	return m.store.Get()
}

// Subscribe registers fn for every state replacement and returns a cancel
// function. fn runs synchronously on the mutating goroutine and must not
// block; panics inside fn are not recovered.
func (m *Manager) Subscribe(fn func(SearchState)) (cancel func()) {
	return m.store.Subscribe(fn)
}

// Register adds a widget. Membership changes recompute metadata and
// schedule a debounced search cycle.
func (m *Manager) Register(w *Widget) {
	m.registry.register(w)
}

// Unregister removes a previously registered widget.
func (m *Manager) Unregister(w *Widget) {
	m.registry.unregister(w)
}

// Widgets returns the registered widgets in registration order.
func (m *Manager) Widgets() []*Widget {
	return m.registry.list()
}

// WidgetUpdated signals that a registered widget's declared configuration
// changed. Metadata is recomputed and a search cycle scheduled, exactly as
// for a membership change.
func (m *Manager) WidgetUpdated() {
	m.registry.touched()
}

// SetExternalConfig bulk-replaces the widget configuration snapshot, e.g.
// from a deep link. The proposed configuration is folded through every
// widget's Transition capability before it is stored.
func (m *Manager) SetExternalConfig(next Config) {
	widgets := m.registry.list()
	m.store.Update(func(s SearchState) SearchState {
		final := transitionConfig(widgets, s.Config, next.Clone())
		s.Config = final
		s.Metadata = collectMetadata(widgets, final)
		return s
	})
	m.scheduleSearch()
}

// TransitionConfig folds a proposed configuration through the widgets'
// Transition capabilities without storing anything.
func (m *Manager) TransitionConfig(next Config) Config {
	return transitionConfig(m.registry.list(), m.store.Get().Config, next.Clone())
}

// SkipSearch pauses the triggering of new search cycles, e.g. during a
// batched widget update. Changes made while paused are coalesced into a
// single cycle on ResumeSearch.
func (m *Manager) SkipSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skip = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
		m.dirty = true
	}
}

// ResumeSearch re-enables triggering and runs one cycle if changes arrived
// while paused.
func (m *Manager) ResumeSearch() {
	m.mu.Lock()
	m.skip = false
	dirty := m.dirty
	m.mu.Unlock()
	if dirty {
		m.scheduleSearch()
	}
}

// Search composes the current widget set and dispatches one search cycle
// immediately, regardless of the skip flag. The call returns once all
// requests are dispatched; results arrive through the state.
func (m *Manager) Search(ctx context.Context) {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()
	m.runCycle(ctx)
}

// handleWidgetsChange is the registry's onChange hook.
func (m *Manager) handleWidgetsChange() {
	widgets := m.registry.list()
	m.store.Update(func(s SearchState) SearchState {
		s.Metadata = collectMetadata(widgets, s.Config)
		return s
	})
	m.scheduleSearch()
}

// scheduleSearch arms the debounce timer; changes arriving while a timer is
// pending coalesce into the same cycle.
func (m *Manager) scheduleSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if m.skip {
		m.dirty = true
		return
	}
	if m.timer != nil {
		return
	}
	m.timer = time.AfterFunc(m.debounce, func() {
		m.mu.Lock()
		m.timer = nil
		m.mu.Unlock()
		m.runCycle(m.ctx)
	})
}

// runCycle executes one compose -> plan -> dispatch round. The index
// mapping is fully committed by plan before any request goes out; response
// arrival order is unconstrained.
func (m *Manager) runCycle(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.dirty = false
	m.mu.Unlock()

	widgets := m.registry.list()
	comp := compose(widgets, m.base)
	gen, reqs, _ := m.orch.plan(comp)

	m.store.Update(func(s SearchState) SearchState {
		s.Searching = true
		return s
	})

	metrics.SearchCycleRequests.Observe(float64(len(reqs)))
	m.logger.Debug("dispatching search cycle",
		zap.Uint64("generation", gen),
		zap.Int("requests", len(reqs)),
		zap.Int("derived_groups", len(comp.groups)),
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, req := range reqs {
		req := req
		g.Go(func() error {
			resp, err := m.client.Search(gctx, Request{Index: req.physical, Params: req.params})
			if err != nil {
				metrics.SearchRequestsTotal.WithLabelValues(req.logical, "error").Inc()
				m.handleError(gen, req.physical, err)
				// A failed request is terminal for itself only; siblings
				// keep running.
				return nil
			}
			metrics.SearchRequestsTotal.WithLabelValues(req.logical, "ok").Inc()
			m.handleResponse(gen, req.physical, resp)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		metrics.SearchCycleDuration.Observe(time.Since(start).Seconds())
		m.logger.Debug("search cycle settled",
			zap.Uint64("generation", gen),
			zap.Duration("took", time.Since(start)),
		)
	}()
}

// handleResponse reconciles one successful response. Responses whose
// physical index cannot be resolved against the current mapping belong to a
// torn-down cycle and are dropped silently: their logical target is
// unknown.
func (m *Manager) handleResponse(gen uint64, physical string, resp *Response) {
	logical, multi, ok := m.orch.resolve(gen, physical)
	if !ok {
		metrics.StaleResponsesTotal.Inc()
		m.logger.Debug("dropping response for torn-down context",
			zap.String("physical_index", physical),
			zap.Uint64("generation", gen),
		)
		return
	}
	m.store.Update(func(s SearchState) SearchState {
		return reconcileSearch(s, searchEvent{logical: logical, multi: multi, response: resp})
	})
}

// handleError records one failed request. Stale errors are dropped like
// stale responses.
func (m *Manager) handleError(gen uint64, physical string, err error) {
	if _, _, ok := m.orch.resolve(gen, physical); !ok {
		metrics.StaleResponsesTotal.Inc()
		return
	}
	m.store.Update(func(s SearchState) SearchState {
		return reconcileSearch(s, searchEvent{err: err})
	})
}
