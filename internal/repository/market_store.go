package repository

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/knowledge-market/internal/models"
)

// State is everything one market owns. Market is nil until a market is opened.
type State struct {
	Market      *models.Market
	Submissions map[string]*models.GroupSubmission
	Sessions    map[string]*models.StudentSession
}

func NewState() *State {
	return &State{
		Submissions: make(map[string]*models.GroupSubmission),
		Sessions:    make(map[string]*models.StudentSession),
	}
}

// IsOpen reports whether a market is currently running.
func (s *State) IsOpen() bool {
	return s.Market != nil && s.Market.IsOpen
}

func (s *State) Clone() *State {
	c := &State{
		Market:      s.Market.Clone(),
		Submissions: make(map[string]*models.GroupSubmission, len(s.Submissions)),
		Sessions:    make(map[string]*models.StudentSession, len(s.Sessions)),
	}
	for group, sub := range s.Submissions {
		c.Submissions[group] = sub.Clone()
	}
	for id, sess := range s.Sessions {
		c.Sessions[id] = sess.Clone()
	}
	return c
}

// MarketStore serializes access to the shared state of one market.
//
// Update runs fn against a private copy of the state under the write lock and
// publishes the copy only when fn returns nil, so a failed operation never
// leaves a partial change behind. View runs fn under the read lock; fn must
// not keep references to the state after it returns.
type MarketStore interface {
	View(ctx context.Context, fn func(s *State) error) error
	Update(ctx context.Context, fn func(s *State) error) error
}

type marketStore struct {
	mu     sync.RWMutex
	state  *State
	logger zerolog.Logger
}

func NewMarketStore(logger zerolog.Logger) MarketStore {
	return &marketStore{
		state:  NewState(),
		logger: logger,
	}
}

func (r *marketStore) View(ctx context.Context, fn func(s *State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return fn(r.state)
}

func (r *marketStore) Update(ctx context.Context, fn func(s *State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.state.Clone()
	if err := fn(next); err != nil {
		r.logger.Debug().Err(err).Msg("State change rejected")
		return err
	}
	r.state = next

	return nil
}
