package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from daily_records"))
	assert.Equal(t, "UPDATE", operationFromSQL("WITH x AS (SELECT 1) UPDATE performance_indices SET mpi_rank = 1"))
	assert.Equal(t, "INSERT", operationFromSQL(`INSERT INTO "market_snapshots" ("id","hotel_id") VALUES (1,2) ON CONFLICT ("hotel_id","date") DO UPDATE SET "mpi"="excluded"."mpi"`))
	assert.Equal(t, "DELETE", operationFromSQL("DELETE FROM performance_indices WHERE competitor_id IN (SELECT id FROM competitors)"))
	assert.Equal(t, "SELECT", operationFromSQL("(SELECT 1) UNION (SELECT 2)"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), GormLoggerConfigFor(false))

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "INSERT INTO x", 0 }, errors.New("boom"))
	assert.Equal(t, 1, logs.FilterMessage("gorm.query").Len())
}

func TestGormLoggerWarnsOnSlowQuery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: time.Millisecond})

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 1, logs.FilterMessage("gorm.slow_query").Len())
}
