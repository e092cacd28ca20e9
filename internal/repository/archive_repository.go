package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/knowledge-market/internal/models"
)

// ArchiveRepository keeps the outcome of closed markets. Archives are written
// once at close time and are never loaded back into a live market.
type ArchiveRepository interface {
	Save(ctx context.Context, archive *models.MarketArchive) error
}

type archiveRepository struct {
	*PostgresRepository
}

func NewArchiveRepository(db *sql.DB, logger zerolog.Logger) ArchiveRepository {
	return &archiveRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *archiveRepository) Save(ctx context.Context, archive *models.MarketArchive) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO market_archives (id, class_name, access_code, final_phase, opened_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.ExecContext(ctx, query,
		archive.ID,
		archive.ClassName,
		archive.AccessCode,
		archive.Phase.String(),
		time.Unix(archive.OpenedAt, 0).UTC(),
		time.Unix(archive.ClosedAt, 0).UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert market archive: %w", err)
	}

	groupQuery := `
		INSERT INTO group_archives (
			market_id, position, group_name, topic, teaching_text, report_text, report_submitted, student_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, g := range archive.Submissions {
		_, err = tx.ExecContext(ctx, groupQuery,
			archive.ID,
			g.Position,
			g.Group,
			g.Topic,
			g.TeachingText,
			g.ReportText,
			g.ReportSubmitted,
			g.StudentCount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group archive %q: %w", g.Group, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive: %w", err)
	}

	r.logger.Info().
		Str("archive_id", archive.ID).
		Str("class_name", archive.ClassName).
		Int("groups", len(archive.Submissions)).
		Msg("Market archived")

	return nil
}

type nopArchiveRepository struct{}

// NewNopArchiveRepository is used when archiving is disabled.
func NewNopArchiveRepository() ArchiveRepository {
	return nopArchiveRepository{}
}

func (nopArchiveRepository) Save(context.Context, *models.MarketArchive) error {
	return nil
}
