package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatasetVideo is one video record of the bulk dataset, with embedded snapshots.
type DatasetVideo struct {
	ID             string            `json:"id"`
	CreatorID      string            `json:"creator_id"`
	VideoCreatedAt time.Time         `json:"video_created_at"`
	ViewsCount     int64             `json:"views_count"`
	LikesCount     int64             `json:"likes_count"`
	CommentsCount  int64             `json:"comments_count"`
	ReportsCount   int64             `json:"reports_count"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Snapshots      []DatasetSnapshot `json:"snapshots"`
}

// DatasetSnapshot is one snapshot row of the bulk dataset.
type DatasetSnapshot struct {
	ID                 string    `json:"id"`
	VideoID            string    `json:"video_id"`
	ViewsCount         int64     `json:"views_count"`
	LikesCount         int64     `json:"likes_count"`
	CommentsCount      int64     `json:"comments_count"`
	ReportsCount       int64     `json:"reports_count"`
	DeltaViewsCount    int64     `json:"delta_views_count"`
	DeltaLikesCount    int64     `json:"delta_likes_count"`
	DeltaCommentsCount int64     `json:"delta_comments_count"`
	DeltaReportsCount  int64     `json:"delta_reports_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ParseDataset decodes the dataset payload: a JSON object with a single top-level
// "videos" list.
func ParseDataset(data []byte) ([]DatasetVideo, error) {
	var payload struct {
		Videos *[]DatasetVideo `json:"videos"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if payload.Videos == nil {
		return nil, fmt.Errorf(`parse dataset: expected an object with a "videos" list`)
	}
	return *payload.Videos, nil
}

const upsertVideoSQL = `
INSERT INTO videos (id, creator_id, video_created_at,
                    views_count, likes_count, comments_count, reports_count,
                    created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    creator_id       = EXCLUDED.creator_id,
    video_created_at = EXCLUDED.video_created_at,
    views_count      = EXCLUDED.views_count,
    likes_count      = EXCLUDED.likes_count,
    comments_count   = EXCLUDED.comments_count,
    reports_count    = EXCLUDED.reports_count,
    created_at       = EXCLUDED.created_at,
    updated_at       = EXCLUDED.updated_at`

const upsertSnapshotSQL = `
INSERT INTO video_snapshots (id, video_id,
                             views_count, likes_count, comments_count, reports_count,
                             delta_views_count, delta_likes_count,
                             delta_comments_count, delta_reports_count,
                             created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
    video_id             = EXCLUDED.video_id,
    views_count          = EXCLUDED.views_count,
    likes_count          = EXCLUDED.likes_count,
    comments_count       = EXCLUDED.comments_count,
    reports_count        = EXCLUDED.reports_count,
    delta_views_count    = EXCLUDED.delta_views_count,
    delta_likes_count    = EXCLUDED.delta_likes_count,
    delta_comments_count = EXCLUDED.delta_comments_count,
    delta_reports_count  = EXCLUDED.delta_reports_count,
    created_at           = EXCLUDED.created_at,
    updated_at           = EXCLUDED.updated_at`

// LoadOptions configures a bulk dataset load.
type LoadOptions struct {
	// Truncate empties both tables before loading.
	Truncate bool
	// BatchSize is the number of rows per pgx batch; <= 0 uses 1000.
	BatchSize int
}

// LoadDataset upserts the dataset into videos and video_snapshots inside one
// transaction, batching snapshot inserts.
func LoadDataset(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool, videos []DatasetVideo, opts LoadOptions) error {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if opts.Truncate {
		if _, err := tx.Exec(ctx, "TRUNCATE video_snapshots, videos"); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}

	snapshots := 0
	batch := &pgx.Batch{}
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("send batch: %w", err)
		}
		batch = &pgx.Batch{}
		return nil
	}

	for _, v := range videos {
		batch.Queue(upsertVideoSQL,
			v.ID, v.CreatorID, v.VideoCreatedAt,
			v.ViewsCount, v.LikesCount, v.CommentsCount, v.ReportsCount,
			v.CreatedAt, v.UpdatedAt)
		for _, s := range v.Snapshots {
			batch.Queue(upsertSnapshotSQL,
				s.ID, s.VideoID,
				s.ViewsCount, s.LikesCount, s.CommentsCount, s.ReportsCount,
				s.DeltaViewsCount, s.DeltaLikesCount, s.DeltaCommentsCount, s.DeltaReportsCount,
				s.CreatedAt, s.UpdatedAt)
			snapshots++
		}
		if batch.Len() >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	log.Info("dataset loaded", "videos", len(videos), "snapshots", snapshots)
	return nil
}
