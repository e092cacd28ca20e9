package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/knowledge-market/internal/models"
	"github.com/RubachokBoss/knowledge-market/internal/repository"
	"github.com/RubachokBoss/knowledge-market/internal/storage"
	"github.com/RubachokBoss/knowledge-market/pkg/accesscode"
)

const testCode = "KM-TEST"

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.MarketEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *models.MarketEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]models.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type recordingArchive struct {
	mu       sync.Mutex
	archives []*models.MarketArchive
	ctxErrs  []error
}

func (r *recordingArchive) Save(ctx context.Context, archive *models.MarketArchive) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archives = append(r.archives, archive)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return nil
}

// cancelingBlobStore cancels the caller's request context as soon as market
// images are being deleted.
type cancelingBlobStore struct {
	storage.BlobStore
	cancel context.CancelFunc
}

func (s *cancelingBlobStore) DeletePrefix(ctx context.Context, prefix string) error {
	s.cancel()
	return s.BlobStore.DeletePrefix(ctx, prefix)
}

type testEnv struct {
	market      MarketService
	submissions SubmissionService
	students    StudentService
	blobs       storage.BlobStore
	publisher   *recordingPublisher
	archive     *recordingArchive
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	log := zerolog.Nop()
	store := repository.NewMarketStore(log)
	blobs := storage.NewMemoryStore()
	pub := &recordingPublisher{}
	arch := &recordingArchive{}

	return &testEnv{
		market:      NewMarketService(store, arch, blobs, pub, accesscode.Static(testCode), 32, log),
		submissions: NewSubmissionService(store, blobs, pub, 1<<20, log),
		students:    NewStudentService(store, pub, log),
		blobs:       blobs,
		publisher:   pub,
		archive:     arch,
	}
}

func rosterRequest(pairs ...string) *models.OpenMarketRequest {
	req := &models.OpenMarketRequest{ClassName: "History 5-1"}
	for i := 0; i+1 < len(pairs); i += 2 {
		req.Groups = append(req.Groups, models.GroupInput{Name: pairs[i], Topic: pairs[i+1]})
	}
	return req
}

func (e *testEnv) open(t *testing.T, pairs ...string) *models.MarketSnapshot {
	t.Helper()
	snap, err := e.market.OpenMarket(context.Background(), rosterRequest(pairs...))
	require.NoError(t, err)
	return snap
}

func (e *testEnv) join(t *testing.T, name, group string) string {
	t.Helper()
	resp, err := e.students.Join(context.Background(), &models.JoinRequest{
		AccessCode: testCode,
		Name:       name,
		Group:      group,
	})
	require.NoError(t, err)
	return resp.SessionID
}
