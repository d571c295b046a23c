package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/tailor"
	"github.com/born-ml/tailor/internal/tensor"
	"github.com/google/go-cmp/cmp"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db := must.M1(Open(filepath.Join(t.TempDir(), "runs.db")))
	t.Cleanup(func() { db.Close() })
	return db
}

func records() []tailor.Record {
	return []tailor.Record{
		{Name: "fc", NumParams: 10, Trainable: true, Tensor: graph.Resolved{Shape: tensor.Shape{1, 2}, DType: tensor.Float32}},
		{Name: "probe", Tensor: graph.Unresolved{}},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := &Run{Model: "mlp", Source: "models.hcl", InputShape: []int{1, 4}, CreatedAt: created, Records: records()}
	id, err := db.SaveRun(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)

	loaded, err := db.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "mlp", loaded.Model)
	assert.Equal(t, "models.hcl", loaded.Source)
	assert.Equal(t, []int{1, 4}, loaded.InputShape)
	assert.True(t, created.Equal(loaded.CreatedAt))
	assert.Empty(t, cmp.Diff(records(), loaded.Records))
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	for _, model := range []string{"mlp", "cnn", "mlp"} {
		_, err := db.SaveRun(ctx, &Run{Model: model, InputShape: []int{1}, Records: records()})
		require.NoError(t, err)
	}

	all, err := db.ListRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID, "newest first")
	assert.Nil(t, all[0].Records)
	assert.False(t, all[0].CreatedAt.IsZero())

	mlp, err := db.ListRuns(ctx, "mlp")
	require.NoError(t, err)
	require.Len(t, mlp, 2)
	assert.Equal(t, []int64{3, 1}, []int64{mlp[0].ID, mlp[1].ID})

	none, err := db.ListRuns(ctx, "vit")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteRun(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	id := must.M1(db.SaveRun(ctx, &Run{Model: "mlp", InputShape: []int{1, 4}, Records: records()}))
	require.NoError(t, db.DeleteRun(ctx, id))

	_, err := db.LoadRun(ctx, id)
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, db.DeleteRun(ctx, id), ErrRunNotFound)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	db := must.M1(Open(path))
	id := must.M1(db.SaveRun(ctx, &Run{Model: "mlp", InputShape: []int{2, 4}, Records: records()}))
	require.NoError(t, db.Close())

	db = must.M1(Open(path))
	defer db.Close()
	run, err := db.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Len(t, run.Records, 2)
}
