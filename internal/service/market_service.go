package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/knowledge-market/internal/models"
	"github.com/RubachokBoss/knowledge-market/internal/repository"
	"github.com/RubachokBoss/knowledge-market/internal/rotation"
	"github.com/RubachokBoss/knowledge-market/internal/service/integration"
	"github.com/RubachokBoss/knowledge-market/internal/storage"
	"github.com/RubachokBoss/knowledge-market/pkg/accesscode"
)

// MarketService holds the teacher-side operations of the activity.
type MarketService interface {
	OpenMarket(ctx context.Context, req *models.OpenMarketRequest) (*models.MarketSnapshot, error)
	AdvancePhase(ctx context.Context) (*models.Market, error)
	AdvanceRound(ctx context.Context) (*models.Market, error)
	CloseMarket(ctx context.Context) error
	GetSnapshot(ctx context.Context) (*models.MarketSnapshot, error)
	GetSchedule(ctx context.Context) (*models.ScheduleResponse, error)
}

type marketService struct {
	store       repository.MarketStore
	archiveRepo repository.ArchiveRepository
	blobs       storage.BlobStore
	publisher   integration.EventPublisher
	newCode     accesscode.Generator
	maxGroups   int
	logger      zerolog.Logger
}

func NewMarketService(
	store repository.MarketStore,
	archiveRepo repository.ArchiveRepository,
	blobs storage.BlobStore,
	publisher integration.EventPublisher,
	newCode accesscode.Generator,
	maxGroups int,
	logger zerolog.Logger,
) MarketService {
	return &marketService{
		store:       store,
		archiveRepo: archiveRepo,
		blobs:       blobs,
		publisher:   publisher,
		newCode:     newCode,
		maxGroups:   maxGroups,
		logger:      logger,
	}
}

func (s *marketService) OpenMarket(ctx context.Context, req *models.OpenMarketRequest) (*models.MarketSnapshot, error) {
	groups, err := s.cleanRoster(req)
	if err != nil {
		return nil, err
	}

	var snapshot *models.MarketSnapshot
	err = s.store.Update(ctx, func(st *repository.State) error {
		if st.IsOpen() {
			return fmt.Errorf("%w: a market is already open", models.ErrInvalidTransition)
		}

		market := &models.Market{
			ID:         uuid.New().String(),
			ClassName:  cleanString(req.ClassName),
			AccessCode: s.newCode(),
			Groups:     groups,
			IsOpen:     true,
			Phase:      models.PhaseTeaching,
			Round:      0,
			OpenedAt:   time.Now().UTC(),
		}

		fresh := repository.NewState()
		fresh.Market = market
		for _, g := range groups {
			fresh.Submissions[g.Name] = &models.GroupSubmission{Group: g.Name}
		}
		*st = *fresh

		snapshot = buildSnapshot(st)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("market_id", snapshot.ID).
		Str("class_name", snapshot.ClassName).
		Int("groups", len(snapshot.Groups)).
		Msg("Market opened")

	publish(ctx, s.publisher, s.logger, newEvent(models.EventMarketOpened, &snapshot.Market))

	return snapshot, nil
}

// cleanRoster trims the request in place and checks the roster rules that the
// validate tags cannot express.
func (s *marketService) cleanRoster(req *models.OpenMarketRequest) ([]models.Group, error) {
	req.ClassName = cleanString(req.ClassName)
	for i := range req.Groups {
		req.Groups[i].Name = cleanString(req.Groups[i].Name)
		req.Groups[i].Topic = cleanString(req.Groups[i].Topic)
	}

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var fields []models.FieldError
	if s.maxGroups > 0 && len(req.Groups) > s.maxGroups {
		fields = append(fields, models.FieldError{
			Field: "groups",
			Error: fmt.Sprintf("must contain at most %d item(s)", s.maxGroups),
		})
	}

	seen := make(map[string]bool, len(req.Groups))
	groups := make([]models.Group, 0, len(req.Groups))
	for i, g := range req.Groups {
		if seen[g.Name] {
			fields = append(fields, models.FieldError{
				Field: fmt.Sprintf("groups[%d].name", i),
				Error: fmt.Sprintf("duplicate group name %q", g.Name),
			})
			continue
		}
		seen[g.Name] = true
		groups = append(groups, models.Group{Name: g.Name, Topic: g.Topic})
	}

	if len(fields) > 0 {
		return nil, models.NewValidationError(fields...)
	}
	return groups, nil
}

func (s *marketService) AdvancePhase(ctx context.Context) (*models.Market, error) {
	var market *models.Market
	err := s.store.Update(ctx, func(st *repository.State) error {
		if !st.IsOpen() {
			return fmt.Errorf("%w: no open market", models.ErrInvalidTransition)
		}

		m := st.Market
		next, ok := m.Phase.Next()
		if !ok {
			return fmt.Errorf("%w: no phase after %s", models.ErrInvalidTransition, m.Phase)
		}

		switch next {
		case models.PhaseRotating:
			// a single group has nobody to visit and stays at round 0
			if len(m.Groups) >= 2 {
				m.Round = 1
			} else {
				m.Round = 0
			}
		case models.PhaseReporting:
			m.Round = 0
		}
		m.Phase = next

		market = m.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("market_id", market.ID).
		Str("phase", market.Phase.String()).
		Int("round", market.Round).
		Msg("Phase advanced")

	publish(ctx, s.publisher, s.logger, newEvent(models.EventPhaseAdvanced, market))

	return market, nil
}

func (s *marketService) AdvanceRound(ctx context.Context) (*models.Market, error) {
	var market *models.Market
	err := s.store.Update(ctx, func(st *repository.State) error {
		if !st.IsOpen() {
			return fmt.Errorf("%w: no open market", models.ErrInvalidTransition)
		}

		m := st.Market
		if m.Phase != models.PhaseRotating {
			return fmt.Errorf("%w: rounds only advance while rotating, phase is %s", models.ErrInvalidTransition, m.Phase)
		}
		if m.Round >= m.LastRound() {
			return fmt.Errorf("%w: round %d is the last round", models.ErrInvalidTransition, m.Round)
		}

		m.Round++
		market = m.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("market_id", market.ID).
		Int("round", market.Round).
		Int("last_round", market.LastRound()).
		Msg("Round advanced")

	publish(ctx, s.publisher, s.logger, newEvent(models.EventRoundAdvanced, market))

	return market, nil
}

func (s *marketService) CloseMarket(ctx context.Context) error {
	var (
		closed  *models.Market
		archive *models.MarketArchive
	)
	err := s.store.Update(ctx, func(st *repository.State) error {
		if !st.IsOpen() {
			return models.ErrMarketClosed
		}

		closed = st.Market.Clone()
		archive = buildArchive(st)
		*st = *repository.NewState()
		return nil
	})
	if err != nil {
		return err
	}

	// The reset is committed; cleanup below cannot bring the market back and
	// must not be cut short by the caller going away.
	ctx = context.WithoutCancel(ctx)

	if err := s.blobs.DeletePrefix(ctx, marketBlobPrefix(closed.ID)); err != nil {
		s.logger.Error().Err(err).Str("market_id", closed.ID).Msg("Failed to delete market images")
	}

	if err := s.archiveRepo.Save(ctx, archive); err != nil {
		s.logger.Error().Err(err).Str("market_id", closed.ID).Msg("Failed to archive market")
	}

	s.logger.Info().
		Str("market_id", closed.ID).
		Str("class_name", closed.ClassName).
		Str("phase", closed.Phase.String()).
		Msg("Market closed")

	closed.IsOpen = false
	publish(ctx, s.publisher, s.logger, newEvent(models.EventMarketClosed, closed))

	return nil
}

func (s *marketService) GetSnapshot(ctx context.Context) (*models.MarketSnapshot, error) {
	var snapshot *models.MarketSnapshot
	err := s.store.View(ctx, func(st *repository.State) error {
		snapshot = buildSnapshot(st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *marketService) GetSchedule(ctx context.Context) (*models.ScheduleResponse, error) {
	var groups []string
	err := s.store.View(ctx, func(st *repository.State) error {
		if !st.IsOpen() {
			return models.ErrMarketClosed
		}
		for _, g := range st.Market.Groups {
			groups = append(groups, g.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	table := rotation.Schedule(len(groups))
	rounds := make([][]string, 0, len(table))
	for _, row := range table {
		names := make([]string, len(row))
		for i, target := range row {
			names[i] = groups[target]
		}
		rounds = append(rounds, names)
	}

	return &models.ScheduleResponse{
		Groups: groups,
		Rounds: rounds,
	}, nil
}

// buildSnapshot copies the dashboard view out of st. A market that was never
// opened reads as not_started with no groups.
func buildSnapshot(st *repository.State) *models.MarketSnapshot {
	if st.Market == nil {
		return &models.MarketSnapshot{
			Market: models.Market{
				Groups: []models.Group{},
				Phase:  models.PhaseNotStarted,
			},
			Statuses: []models.GroupStatus{},
		}
	}

	counts := make(map[string]int, len(st.Market.Groups))
	for _, sess := range st.Sessions {
		counts[sess.Group]++
	}

	m := st.Market.Clone()
	statuses := make([]models.GroupStatus, 0, len(m.Groups))
	for _, g := range m.Groups {
		status := models.GroupStatus{Group: g, StudentCount: counts[g.Name]}
		if sub, ok := st.Submissions[g.Name]; ok {
			status.TeachingSubmitted = sub.TeachingSubmitted
			status.HasImage = sub.TeachingImage != nil
			status.ReportSubmitted = sub.ReportSubmitted
		}
		statuses = append(statuses, status)
	}

	return &models.MarketSnapshot{
		Market:   *m,
		Statuses: statuses,
	}
}

func buildArchive(st *repository.State) *models.MarketArchive {
	m := st.Market
	counts := make(map[string]int, len(m.Groups))
	for _, sess := range st.Sessions {
		counts[sess.Group]++
	}

	archive := &models.MarketArchive{
		ID:          m.ID,
		ClassName:   m.ClassName,
		AccessCode:  m.AccessCode,
		Phase:       m.Phase,
		OpenedAt:    m.OpenedAt.Unix(),
		ClosedAt:    time.Now().Unix(),
		Submissions: make([]models.GroupArchive, 0, len(m.Groups)),
	}
	for i, g := range m.Groups {
		ga := models.GroupArchive{
			Position:     i,
			Group:        g.Name,
			Topic:        g.Topic,
			StudentCount: counts[g.Name],
		}
		if sub, ok := st.Submissions[g.Name]; ok {
			ga.TeachingText = sub.TeachingText
			ga.ReportText = sub.ReportText
			ga.ReportSubmitted = sub.ReportSubmitted
		}
		archive.Submissions = append(archive.Submissions, ga)
	}
	return archive
}

func marketBlobPrefix(marketID string) string {
	return "markets/" + marketID + "/"
}
