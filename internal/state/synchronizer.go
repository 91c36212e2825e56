// Package state owns the local view of remote truth: pool and balance
// snapshots refreshed on a poll interval, and the debounced quote
// recomputation triggered by user input.
package state

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gardendex/internal/model"
)

// Reader is the view-call surface the synchronizer polls.
type Reader interface {
	PoolInfo(ctx context.Context) (model.PoolState, error)
	TokenABalance(ctx context.Context, owner common.Address) (*big.Int, error)
	TokenBBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	LPBalance(ctx context.Context, owner common.Address) (*big.Int, error)
}

// Snapshot is the atomically-replaced view of remote state.
type Snapshot struct {
	Pool      model.PoolState
	Balances  model.Balances
	FetchedAt time.Time
}

// QuoteFunc recomputes the displayed quote. It may perform a remote
// read, so its result can arrive after newer input superseded it.
type QuoteFunc func(ctx context.Context) (string, error)

// Options configures a Synchronizer.
type Options struct {
	Interval time.Duration
	Debounce time.Duration
	Logger   *zap.Logger
	// OnQuote is invoked whenever the displayed quote changes,
	// including when it is cleared.
	OnQuote func(text string)
}

// Synchronizer owns one view's timeline. Create it when the view
// activates and cancel Run's context on teardown or account change;
// nothing here is process-global.
type Synchronizer struct {
	reader Reader
	owner  common.Address
	opts   Options
	logger *zap.Logger

	snap  atomic.Pointer[Snapshot]
	quote atomic.Pointer[quoteValue]

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

type quoteValue struct {
	text string
	ok   bool
}

// New builds a Synchronizer for one account's view.
func New(reader Reader, owner common.Address, opts Options) *Synchronizer {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		reader: reader,
		owner:  owner,
		opts:   opts,
		logger: logger,
	}
}

// Run drives the poll loop until ctx is cancelled. The first refresh
// happens immediately; ticks are interval-spaced and not serialized
// against a slow predecessor, so overlapping slow ticks are possible
// and harmless (snapshot replacement is atomic).
func (s *Synchronizer) Run(ctx context.Context) {
	s.Refresh(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Clear()
			return
		case <-ticker.C:
			go s.Refresh(ctx)
		}
	}
}

// Refresh fetches the pool state and balances concurrently and
// replaces the snapshot wholesale. On any failure the last-known
// snapshot is retained and nothing surfaces to the user; transient
// read failures self-heal on the next tick.
func (s *Synchronizer) Refresh(ctx context.Context) {
	next := &Snapshot{FetchedAt: time.Now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pool, err := s.reader.PoolInfo(gctx)
		if err == nil {
			next.Pool = pool
		}
		return err
	})
	g.Go(func() error {
		balance, err := s.reader.TokenABalance(gctx, s.owner)
		if err == nil {
			next.Balances.TokenA = balance
		}
		return err
	})
	g.Go(func() error {
		balance, err := s.reader.TokenBBalance(gctx, s.owner)
		if err == nil {
			next.Balances.TokenB = balance
		}
		return err
	})
	g.Go(func() error {
		balance, err := s.reader.LPBalance(gctx, s.owner)
		if err == nil {
			next.Balances.LP = balance
		}
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("refresh failed, keeping last snapshot", zap.Error(err))
		return
	}

	s.snap.Store(next)
}

// Snapshot returns the current view of remote state, if one has been
// fetched yet.
func (s *Synchronizer) Snapshot() (Snapshot, bool) {
	p := s.snap.Load()
	if p == nil {
		return Snapshot{}, false
	}
	return *p, true
}

// Schedule arms a debounced recomputation. Any schedule or clear
// before the delay elapses supersedes this one: the pending timer is
// stopped, and a computation already in flight has its result
// discarded when it resolves, because it carries a stale generation.
func (s *Synchronizer) Schedule(ctx context.Context, compute QuoteFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.Debounce, func() {
		text, err := compute(ctx)
		if err != nil {
			if s.currentGen(gen) {
				s.logger.Warn("quote recomputation failed", zap.Error(err))
			}
			return
		}
		s.applyIfCurrent(gen, text)
	})
}

// Clear drops any pending or in-flight recomputation and blanks the
// quote immediately. Used for empty or invalid input and zero-reserve
// pools, which must not wait out the debounce delay.
func (s *Synchronizer) Clear() {
	s.mu.Lock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.quote.Store(&quoteValue{})
	cb := s.opts.OnQuote
	s.mu.Unlock()

	if cb != nil {
		cb("")
	}
}

// Quote returns the currently displayed quote.
func (s *Synchronizer) Quote() (string, bool) {
	v := s.quote.Load()
	if v == nil {
		return "", false
	}
	return v.text, v.ok
}

func (s *Synchronizer) currentGen(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// applyIfCurrent stores the computed quote unless a newer schedule or
// clear bumped the generation while the computation was in flight.
func (s *Synchronizer) applyIfCurrent(gen uint64, text string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.quote.Store(&quoteValue{text: text, ok: true})
	cb := s.opts.OnQuote
	s.mu.Unlock()

	if cb != nil {
		cb(text)
	}
}
