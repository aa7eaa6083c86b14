package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"posu-analytics/internal/model"
	"posu-analytics/internal/testutil"
)

func TestReportLifecycle(t *testing.T) {
	database := testutil.NewDB(t)
	repo := NewReportRepository(database)
	ctx := context.Background()

	first := &model.Report{Type: "total_revenue", Period: "today", Files: datatypes.JSON(`[{"filename":"total_revenue_20240313_143000.pdf"}]`)}
	second := &model.Report{Type: "combined", Period: "last_7_days", Files: datatypes.JSON(`[]`)}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	reports, total, err := repo.List(ctx, model.ReportHistoryFilter{Type: "combined"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, reports, 1)
	assert.Equal(t, second.ID, reports[0].ID)

	ok, err := repo.ReferencesFile(ctx, "total_revenue_20240313_143000.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.Restore(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotDeleted)

	require.NoError(t, repo.SoftDelete(ctx, first.ID))
	assert.ErrorIs(t, repo.SoftDelete(ctx, first.ID), ErrNotFound)

	_, total, err = repo.List(ctx, model.ReportHistoryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = repo.List(ctx, model.ReportHistoryFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	restored, err := repo.Restore(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, restored.DeletedAt.Valid)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFindByPrincipalRequiresMatchingRole(t *testing.T) {
	database := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, database)
	repo := NewActorRepository(database)

	admin := fx.Actor(model.RoleAdmin, "Ivy", "Tan")

	actor, err := repo.FindByPrincipal(context.Background(), model.Principal{ActorID: admin.ID, Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Ivy Tan", actor.FullName())

	_, err = repo.FindByPrincipal(context.Background(), model.Principal{ActorID: admin.ID, Role: model.RoleHead})
	assert.ErrorIs(t, err, ErrNotFound)
}
