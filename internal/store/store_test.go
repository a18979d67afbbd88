package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDataset(t *testing.T) {
	t.Parallel()

	t.Run("videos with embedded snapshots", func(t *testing.T) {
		t.Parallel()
		videos, err := ParseDataset([]byte(`{
			"videos": [
				{
					"id": "v1",
					"creator_id": "c1",
					"video_created_at": "2025-11-01T10:00:00Z",
					"views_count": 100,
					"likes_count": 10,
					"comments_count": 2,
					"reports_count": 0,
					"created_at": "2025-11-01T10:00:00Z",
					"updated_at": "2025-11-03T10:00:00Z",
					"snapshots": [
						{
							"id": "s1",
							"video_id": "v1",
							"views_count": 50,
							"likes_count": 5,
							"comments_count": 1,
							"reports_count": 0,
							"delta_views_count": 50,
							"delta_likes_count": 5,
							"delta_comments_count": 1,
							"delta_reports_count": 0,
							"created_at": "2025-11-02T10:00:00Z",
							"updated_at": "2025-11-02T10:00:00Z"
						}
					]
				}
			]
		}`))
		require.NoError(t, err)
		require.Len(t, videos, 1)
		require.Equal(t, "v1", videos[0].ID)
		require.Equal(t, int64(100), videos[0].ViewsCount)
		require.Len(t, videos[0].Snapshots, 1)
		require.Equal(t, int64(50), videos[0].Snapshots[0].DeltaViewsCount)
	})

	t.Run("empty videos list", func(t *testing.T) {
		t.Parallel()
		videos, err := ParseDataset([]byte(`{"videos": []}`))
		require.NoError(t, err)
		require.Empty(t, videos)
	})

	t.Run("missing videos key", func(t *testing.T) {
		t.Parallel()
		_, err := ParseDataset([]byte(`{"items": []}`))
		require.ErrorContains(t, err, `"videos"`)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		_, err := ParseDataset([]byte(`[`))
		require.Error(t, err)
	})
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	stmts := splitStatements(`
		CREATE TABLE a (id TEXT);

		CREATE INDEX idx_a ON a (id);
	`)
	require.Equal(t, []string{
		"CREATE TABLE a (id TEXT)",
		"CREATE INDEX idx_a ON a (id)",
	}, stmts)

	require.Nil(t, splitStatements("  ;  ; "))
}
