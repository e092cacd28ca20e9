package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/knowledge-market/internal/models"
)

func TestJoin(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.students.Join(ctx, &models.JoinRequest{AccessCode: testCode, Name: "Minji", Group: "A"})
	assert.ErrorIs(t, err, models.ErrMarketClosed)

	env.open(t, "A", "X", "B", "Y")

	tests := []struct {
		name string
		req  *models.JoinRequest
		want error
	}{
		{name: "wrong code", req: &models.JoinRequest{AccessCode: "KM-NOPE", Name: "Minji", Group: "A"}, want: models.ErrInvalidAccessCode},
		{name: "wrong code wins over bad fields", req: &models.JoinRequest{AccessCode: "KM-NOPE", Name: "", Group: "Q"}, want: models.ErrInvalidAccessCode},
		{name: "empty code", req: &models.JoinRequest{Name: "Minji", Group: "A"}, want: models.ErrInvalidAccessCode},
		{name: "empty name", req: &models.JoinRequest{AccessCode: testCode, Name: "  ", Group: "A"}, want: models.ErrValidation},
		{name: "unknown group", req: &models.JoinRequest{AccessCode: testCode, Name: "Minji", Group: "Q"}, want: models.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.students.Join(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	resp, err := env.students.Join(ctx, &models.JoinRequest{AccessCode: " km-test ", Name: " Minji ", Group: "B"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "Y", resp.Topic)
	assert.Equal(t, "Minji", resp.Session.Name)
	assert.Equal(t, "B", resp.Session.Group)
	assert.Empty(t, resp.Session.Notes)

	snap, err := env.market.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Statuses[0].StudentCount)
	assert.Equal(t, 1, snap.Statuses[1].StudentCount)
}

func TestJoinDoesNotOverwriteOtherStudents(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.open(t, "A", "X", "B", "Y")

	const students = 50
	ids := make([]string, students)
	var wg sync.WaitGroup
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			group := "A"
			if i%2 == 1 {
				group = "B"
			}
			resp, err := env.students.Join(ctx, &models.JoinRequest{AccessCode: testCode, Name: "student", Group: group})
			if assert.NoError(t, err) {
				ids[i] = resp.SessionID
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, students)
	for _, id := range ids {
		require.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}

	snap, err := env.market.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, students/2, snap.Statuses[0].StudentCount)
	assert.Equal(t, students/2, snap.Statuses[1].StudentCount)
}

func TestRecordNote(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.open(t, "A", "X", "B", "Y", "C", "Z")
	session := env.join(t, "Minji", "A")

	_, err := env.students.RecordNote(ctx, session, "Y", "too early")
	assert.ErrorIs(t, err, models.ErrInvalidPhase)

	_, err = env.market.AdvancePhase(ctx)
	require.NoError(t, err)

	_, err = env.students.RecordNote(ctx, session, "Q", "no such topic")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = env.students.RecordNote(ctx, "missing", "Y", "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = env.students.RecordNote(ctx, session, "Y", "first")
	require.NoError(t, err)
	got, err := env.students.RecordNote(ctx, session, "Y", "second")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Y": "second"}, got.Notes)

	_, err = env.students.RecordNote(ctx, session, "Z", "")
	require.NoError(t, err)

	_, err = env.market.AdvancePhase(ctx)
	require.NoError(t, err)

	_, err = env.students.RecordNote(ctx, session, "Y", "after rotation")
	assert.ErrorIs(t, err, models.ErrInvalidPhase)

	// notes stay readable after the rotation ends
	got, err = env.students.GetSession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Y": "second", "Z": ""}, got.Notes)
}

func TestGetSessionIsACopy(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.open(t, "A", "X", "B", "Y")
	session := env.join(t, "Minji", "A")

	got, err := env.students.GetSession(ctx, session)
	require.NoError(t, err)
	got.Notes["Y"] = "tampered"
	got.Name = "Someone"

	got, err = env.students.GetSession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "Minji", got.Name)
	assert.Empty(t, got.Notes)

	_, err = env.students.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLeaveSession(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.open(t, "A", "X", "B", "Y")
	session := env.join(t, "Minji", "A")

	require.NoError(t, env.students.LeaveSession(ctx, session))

	_, err := env.students.GetSession(ctx, session)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, env.students.LeaveSession(ctx, session), models.ErrNotFound)
}

func TestMarketActivityEndToEnd(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.open(t, "A", "X", "B", "Y", "C", "Z")

	sessions := map[string]string{
		"A": env.join(t, "Minji", "A"),
		"B": env.join(t, "Jisoo", "B"),
		"C": env.join(t, "Hana", "C"),
	}

	for _, g := range []string{"A", "B", "C"} {
		_, err := env.submissions.SubmitTeachingMaterial(ctx, g, &models.SubmitTeachingRequest{Text: "material " + g})
		require.NoError(t, err)
	}

	_, err := env.students.CurrentAssignment(ctx, sessions["A"])
	assert.ErrorIs(t, err, models.ErrInvalidPhase)

	m, err := env.market.AdvancePhase(ctx)
	require.NoError(t, err)
	require.Equal(t, models.PhaseRotating, m.Phase)
	require.Equal(t, 1, m.Round)

	rounds := []struct {
		round   int
		target  map[string]string
		visitor map[string]string
	}{
		{
			round:   1,
			target:  map[string]string{"A": "B", "B": "C", "C": "A"},
			visitor: map[string]string{"A": "C", "B": "A", "C": "B"},
		},
		{
			round:   2,
			target:  map[string]string{"A": "C", "B": "A", "C": "B"},
			visitor: map[string]string{"A": "B", "B": "C", "C": "A"},
		},
	}
	topics := map[string]string{"A": "X", "B": "Y", "C": "Z"}

	for i, rr := range rounds {
		if i > 0 {
			m, err = env.market.AdvanceRound(ctx)
			require.NoError(t, err)
			require.Equal(t, rr.round, m.Round)
		}
		for g, id := range sessions {
			a, err := env.students.CurrentAssignment(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, rr.round, a.Round)
			assert.Equal(t, g, a.Group)
			assert.Equal(t, rr.target[g], a.TargetGroup)
			assert.Equal(t, topics[rr.target[g]], a.TargetTopic)
			assert.Equal(t, rr.visitor[g], a.VisitorGroup)

			_, err = env.students.RecordNote(ctx, id, a.TargetTopic, "notes on "+a.TargetTopic)
			require.NoError(t, err)
		}
	}

	_, err = env.market.AdvanceRound(ctx)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	m, err = env.market.AdvancePhase(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseReporting, m.Phase)
	assert.Equal(t, 0, m.Round)

	for g := range sessions {
		_, err := env.submissions.SubmitReport(ctx, g, &models.SubmitReportRequest{Text: "report " + g})
		require.NoError(t, err)
	}

	// every student visited both other topics
	for g, id := range sessions {
		s, err := env.students.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Len(t, s.Notes, 2)
		assert.NotContains(t, s.Notes, topics[g])
	}

	require.NoError(t, env.market.CloseMarket(ctx))
	require.Len(t, env.archive.archives, 1)
	for i, ga := range env.archive.archives[0].Submissions {
		assert.Equal(t, i, ga.Position)
		assert.True(t, ga.ReportSubmitted)
	}
}
