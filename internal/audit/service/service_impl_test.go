package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/benchstay/internal/audit/domain"
	"github.com/smallbiznis/benchstay/internal/audit/repository"
	"github.com/smallbiznis/benchstay/internal/clock"
	obscontext "github.com/smallbiznis/benchstay/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuditService(t *testing.T) (auditdomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, db, clk
}

func TestRecordStoresActorAndChanges(t *testing.T) {
	svc, db, _ := setupAuditService(t)
	ctx := obscontext.WithActor(context.Background(), "front-office")
	ctx = obscontext.WithRequestID(ctx, "req-9")

	err := svc.Record(ctx, db, auditdomain.EntityDailyRecord, snowflake.ID(77), auditdomain.ActionCreate, map[string]any{
		"rooms_sold": 150,
	})
	require.NoError(t, err)

	logs, err := svc.List(context.Background(), auditdomain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "front-office", logs[0].PerformedBy)
	assert.Equal(t, snowflake.ID(77), logs[0].EntityID)
	assert.Equal(t, "req-9", logs[0].Changes["request_id"])
	assert.Equal(t, json.Number("150"), logs[0].Changes["rooms_sold"])
}

func TestRecordRejectsMissingAction(t *testing.T) {
	svc, db, _ := setupAuditService(t)
	err := svc.Record(context.Background(), db, auditdomain.EntityHotel, 1, " ", nil)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestListNewestFirstWithLimit(t *testing.T) {
	svc, db, clk := setupAuditService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(ctx, db, auditdomain.EntityCompetitor, snowflake.ID(i+1), auditdomain.ActionUpdate, nil))
		clk.Advance(time.Minute)
	}

	logs, err := svc.List(ctx, auditdomain.ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, snowflake.ID(3), logs[0].EntityID)
	assert.Equal(t, "system", logs[0].PerformedBy)
}
