// Package index implements the query engine's public three-operation API
// (spec §6): Init, Search, GetEntry, and the Uninitialized -> LoadingCore ->
// Ready -> (LoadingExtended -> ReadyExtended) lifecycle of spec §4.10.
package index

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AntonIsraelsson/cryptobib-search/internal/artifact"
	"github.com/AntonIsraelsson/cryptobib-search/internal/docstore"
	"github.com/AntonIsraelsson/cryptobib-search/internal/logging"
	"github.com/AntonIsraelsson/cryptobib-search/internal/matcher"
	"github.com/AntonIsraelsson/cryptobib-search/internal/metrics"
	"github.com/AntonIsraelsson/cryptobib-search/internal/query"
	"github.com/AntonIsraelsson/cryptobib-search/internal/types"
)

func decodeResult(ds *artifact.Docstore, docID uint32) (types.Result, error) {
	return docstore.Decode(ds.Blob, ds.Offsets, docID)
}

// ErrNotReady is returned when Search or GetEntry is called before Init
// has completed (spec §7, NotReady).
var ErrNotReady = errors.New("index: engine not ready")

// ErrNotFound is returned by GetEntry when idOrKey resolves to nothing.
var ErrNotFound = errors.New("index: entry not found")

// Options mirrors the caller-facing search options of spec §6.
type Options struct {
	Limit       int
	UseExtended bool
	// Fuzzy is reserved; fuzzy/edit-distance matching is an explicit
	// non-goal (spec §1) and this field has no effect.
	Fuzzy bool
}

// Engine is one loaded query engine instance. Loaded artifacts are
// immutable and may be shared by read-only reference among any number of
// concurrent Search/GetEntry calls without synchronization (spec §5).
type Engine struct {
	artifactRoot string
	metrics      *metrics.Metrics

	st atomic.Int32

	core *artifact.Tier
	ds   *artifact.Docstore
	idm  map[string]uint32

	extMu sync.RWMutex
	ext   *artifact.Tier
	loadG singleflight.Group
}

// New returns an unitialized Engine bound to m. m may be nil, in which
// case metrics are not recorded.
func New(m *metrics.Metrics) *Engine {
	return &Engine{metrics: m}
}

func (e *Engine) state() State { return State(e.st.Load()) }

func (e *Engine) setState(s State) { e.st.Store(int32(s)) }

// Init acquires the core tier and docstore from artifactRoot, the only
// suspension point besides the one-shot extended-tier load (spec §5).
func (e *Engine) Init(artifactRoot string) error {
	e.artifactRoot = artifactRoot
	e.setState(LoadingCore)
	logging.Info("index: loading core tier", artifactRoot)
	ts := time.Now()

	core, err := artifact.LoadTier(artifactRoot, types.TierCore)
	if err != nil {
		e.recordTierLoad(types.TierCore, "error")
		return fmt.Errorf("index: load core tier: %w", err)
	}
	ds, err := artifact.LoadDocstore(artifactRoot, core.Meta.NumDocs)
	if err != nil {
		e.recordTierLoad(types.TierCore, "error")
		return fmt.Errorf("index: load docstore: %w", err)
	}
	idm, err := artifact.LoadIDMap(artifactRoot)
	if err != nil {
		e.recordTierLoad(types.TierCore, "error")
		return fmt.Errorf("index: load idmap: %w", err)
	}

	e.core = core
	e.ds = ds
	e.idm = idm
	e.setState(Ready)
	e.recordTierLoad(types.TierCore, "ok")
	e.recordTierDuration(types.TierCore, time.Since(ts))
	logging.Info("index: core tier ready", time.Since(ts), core.Meta.NumDocs)
	return nil
}

// ensureExtended loads the extended tier exactly once; concurrent callers
// coalesce onto a single in-flight load via singleflight (spec §5).
func (e *Engine) ensureExtended() error {
	e.extMu.RLock()
	loaded := e.ext != nil
	e.extMu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := e.loadG.Do("ext", func() (interface{}, error) {
		e.extMu.RLock()
		already := e.ext != nil
		e.extMu.RUnlock()
		if already {
			return nil, nil
		}
		e.setState(LoadingExtended)
		ts := time.Now()
		ext, loadErr := artifact.LoadTier(e.artifactRoot, types.TierExtended)
		if loadErr != nil {
			e.setState(Ready)
			e.recordTierLoad(types.TierExtended, "error")
			return nil, fmt.Errorf("index: load extended tier: %w", loadErr)
		}
		e.extMu.Lock()
		e.ext = ext
		e.extMu.Unlock()
		e.setState(ReadyExtended)
		e.recordTierLoad(types.TierExtended, "ok")
		e.recordTierDuration(types.TierExtended, time.Since(ts))
		logging.Info("index: extended tier ready", time.Since(ts))
		return nil, nil
	})
	return err
}

// Search executes queryString against the engine and returns ranked,
// materialized result records (spec §4.10, §6).
func (e *Engine) Search(queryString string, opts Options) ([]types.Result, error) {
	st := e.state()
	if st != Ready && st != ReadyExtended {
		return nil, ErrNotReady
	}

	ts := time.Now()
	parsed := query.Parse(queryString)

	useExt := opts.UseExtended || needsExtended(queryString, parsed.Tokens)
	var ext *artifact.Tier
	if useExt {
		if err := e.ensureExtended(); err != nil {
			// Extended load failure is non-fatal for core-only
			// queries; fall back to core-only per spec §4.10's
			// failure semantics and retry on a subsequent query.
			logging.Error("index: extended tier load failed, falling back to core", err)
		} else {
			e.extMu.RLock()
			ext = e.ext
			e.extMu.RUnlock()
		}
	}

	scored, err := matcher.Match(e.core, ext, e.ds, parsed, matcher.Options{Limit: opts.Limit})
	if err != nil {
		e.recordQuery("error", ext != nil, time.Since(ts))
		return nil, fmt.Errorf("index: match: %w", err)
	}

	results := make([]types.Result, 0, len(scored))
	for _, s := range scored {
		rec, decErr := decodeResult(e.ds, s.DocID)
		if decErr != nil {
			e.recordQuery("error", ext != nil, time.Since(ts))
			return nil, fmt.Errorf("index: materialize doc %d: %w", s.DocID, decErr)
		}
		results = append(results, rec)
	}

	outcome := "hit"
	if len(results) == 0 {
		outcome = "empty"
	}
	e.recordQuery(outcome, ext != nil, time.Since(ts))
	if e.metrics != nil {
		e.metrics.QueryResultsCount.Observe(float64(len(results)))
	}
	return results, nil
}

// GetEntry resolves idOrKey (tried first as a docId string, then as a
// key) to a materialized result record.
func (e *Engine) GetEntry(idOrKey string) (*types.Result, error) {
	st := e.state()
	if st != Ready && st != ReadyExtended {
		return nil, ErrNotReady
	}
	docID, ok := parseDocID(idOrKey)
	if !ok {
		docID, ok = e.idm[idOrKey]
	}
	if !ok {
		return nil, ErrNotFound
	}
	rec, err := decodeResult(e.ds, docID)
	if err != nil {
		return nil, fmt.Errorf("index: materialize doc %d: %w", docID, err)
	}
	return &rec, nil
}

func parseDocID(s string) (uint32, bool) {
	var n uint32
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint32(c-'0')
	}
	return n, true
}

func (e *Engine) recordTierLoad(tier types.Tier, outcome string) {
	if e.metrics == nil {
		return
	}
	e.metrics.TierLoadsTotal.WithLabelValues(tier.String(), outcome).Inc()
}

func (e *Engine) recordTierDuration(tier types.Tier, d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.TierLoadDuration.WithLabelValues(tier.String()).Observe(d.Seconds())
}

func (e *Engine) recordQuery(outcome string, extended bool, d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	tier := types.TierCore.String()
	if extended {
		tier = types.TierExtended.String()
	}
	e.metrics.QueryLatency.WithLabelValues(tier).Observe(d.Seconds())
}
