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
	"github.com/RubachokBoss/knowledge-market/pkg/accesscode"
)

// StudentService manages student sessions and their personal notes.
// Every session is addressed by its own ID; students never share one.
type StudentService interface {
	Join(ctx context.Context, req *models.JoinRequest) (*models.JoinResponse, error)
	GetSession(ctx context.Context, sessionID string) (*models.StudentSession, error)
	LeaveSession(ctx context.Context, sessionID string) error
	RecordNote(ctx context.Context, sessionID, topic, text string) (*models.StudentSession, error)
	CurrentAssignment(ctx context.Context, sessionID string) (*models.Assignment, error)
}

type studentService struct {
	store     repository.MarketStore
	publisher integration.EventPublisher
	logger    zerolog.Logger
}

func NewStudentService(store repository.MarketStore, publisher integration.EventPublisher, logger zerolog.Logger) StudentService {
	return &studentService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Join checks, in order: the market is open, the access code matches, then the
// name and group. A wrong code is reported even when the other fields are bad.
func (s *studentService) Join(ctx context.Context, req *models.JoinRequest) (*models.JoinResponse, error) {
	req.Name = cleanString(req.Name)
	req.Group = cleanString(req.Group)

	var (
		resp   *models.JoinResponse
		market *models.Market
	)
	err := s.store.Update(ctx, func(st *repository.State) error {
		if !st.IsOpen() {
			return models.ErrMarketClosed
		}
		if !accesscode.Equal(req.AccessCode, st.Market.AccessCode) {
			return models.ErrInvalidAccessCode
		}
		if err := validateStruct(req); err != nil {
			return err
		}
		topic, ok := st.Market.TopicOf(req.Group)
		if !ok {
			return models.NewValidationError(models.FieldError{
				Field: "group",
				Error: fmt.Sprintf("group %q is not part of this market", req.Group),
			})
		}

		session := &models.StudentSession{
			ID:       uuid.New().String(),
			Name:     req.Name,
			Group:    req.Group,
			Notes:    make(map[string]string),
			JoinedAt: time.Now().UTC(),
		}
		st.Sessions[session.ID] = session

		resp = &models.JoinResponse{
			SessionID: session.ID,
			Session:   session.Clone(),
			Topic:     topic,
		}
		market = st.Market.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("session_id", resp.SessionID).
		Str("group", req.Group).
		Msg("Student joined")

	event := newEvent(models.EventStudentJoined, market)
	event.Group = req.Group
	event.Student = req.Name
	publish(ctx, s.publisher, s.logger, event)

	return resp, nil
}

func (s *studentService) GetSession(ctx context.Context, sessionID string) (*models.StudentSession, error) {
	var result *models.StudentSession
	err := s.store.View(ctx, func(st *repository.State) error {
		session, err := lookupSession(st, sessionID)
		if err != nil {
			return err
		}
		result = session.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *studentService) LeaveSession(ctx context.Context, sessionID string) error {
	err := s.store.Update(ctx, func(st *repository.State) error {
		if _, err := lookupSession(st, sessionID); err != nil {
			return err
		}
		delete(st.Sessions, sessionID)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("session_id", sessionID).Msg("Student left")
	return nil
}

// RecordNote overwrites the note for topic. Notes can be written only while
// groups rotate; they stay readable afterwards.
func (s *studentService) RecordNote(ctx context.Context, sessionID, topic, text string) (*models.StudentSession, error) {
	var result *models.StudentSession
	err := s.store.Update(ctx, func(st *repository.State) error {
		session, err := lookupSession(st, sessionID)
		if err != nil {
			return err
		}
		if !st.Market.HasTopic(topic) {
			return fmt.Errorf("%w: topic %q not found", models.ErrNotFound, topic)
		}
		if !st.Market.Phase.Allows(models.ActionRecordNote) {
			return fmt.Errorf("%w: notes are recorded only while rotating, phase is %s",
				models.ErrInvalidPhase, st.Market.Phase)
		}

		session.Notes[topic] = text
		result = session.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("topic", topic).
		Msg("Note recorded")

	return result, nil
}

func (s *studentService) CurrentAssignment(ctx context.Context, sessionID string) (*models.Assignment, error) {
	var result *models.Assignment
	err := s.store.View(ctx, func(st *repository.State) error {
		session, err := lookupSession(st, sessionID)
		if err != nil {
			return err
		}

		m := st.Market
		if m.Phase != models.PhaseRotating || m.Round < 1 {
			return fmt.Errorf("%w: no rotation is running, phase is %s", models.ErrInvalidPhase, m.Phase)
		}

		n := len(m.Groups)
		idx := m.GroupIndex(session.Group)
		target := m.Groups[rotation.VisitTarget(idx, m.Round, n)]
		visitor := m.Groups[rotation.Visitor(idx, m.Round, n)]

		result = &models.Assignment{
			Round:        m.Round,
			Group:        session.Group,
			TargetGroup:  target.Name,
			TargetTopic:  target.Topic,
			VisitorGroup: visitor.Name,
			VisitorTopic: visitor.Topic,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func lookupSession(st *repository.State, sessionID string) (*models.StudentSession, error) {
	if !st.IsOpen() {
		return nil, models.ErrMarketClosed
	}
	session, ok := st.Sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %q not found", models.ErrNotFound, sessionID)
	}
	return session, nil
}
