package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posu-analytics/internal/model"
	"posu-analytics/internal/repository"
	"posu-analytics/internal/testutil"
)

func TestAuditListVisibilityByRank(t *testing.T) {
	database := testutil.NewDB(t)
	svc := NewAuditService(repository.NewAuditRepository(database))
	ctx := context.Background()

	var logs []model.AuditLog
	for _, role := range model.Roles() {
		logs = append(logs, model.AuditLog{ActorRole: role, ActorName: string(role) + " user", Action: "Report Generated", CreatedAt: testNow})
	}
	require.NoError(t, database.Create(&logs).Error)

	visible := func(role model.Role) []model.Role {
		page, err := svc.List(ctx, model.Principal{ActorID: 1, Role: role}, AuditQuery{})
		require.NoError(t, err)
		var seen []model.Role
		for _, entry := range page.Logs {
			seen = append(seen, entry.ActorRole)
		}
		return seen
	}

	assert.ElementsMatch(t, model.Roles(), visible(model.RoleHead))
	assert.ElementsMatch(t, []model.Role{model.RoleDeputy, model.RoleAdmin, model.RoleEnforcer}, visible(model.RoleDeputy))
	assert.ElementsMatch(t, []model.Role{model.RoleAdmin, model.RoleEnforcer}, visible(model.RoleAdmin))

	_, err := svc.List(ctx, model.Principal{ActorID: 1, Role: model.RoleEnforcer}, AuditQuery{})
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	page, err := svc.List(ctx, model.Principal{ActorID: 1, Role: model.RoleHead}, AuditQuery{Search: "deputy", PerPage: 500})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, model.RoleDeputy, page.Logs[0].ActorRole)
	assert.Equal(t, model.MaxPerPage, page.Pagination.PerPage)
}
