package testutil

import (
	"testing"

	"github.com/hsn2-platform/worker-core/objectmodel"
	"github.com/stretchr/testify/assert"
)

func TestMockLoggerRecordsEntries(t *testing.T) {
	logger := NewMockLogger()

	logger.Info("task_accepted", "task_id", 1)
	logger.Error("object_request_failed")

	logs := logger.GetLogs()
	assert.Len(t, logs, 2)
	assert.Equal(t, "info", logs[0].Level)
	assert.Equal(t, "error", logs[1].Level)
	assert.True(t, logger.HasLog("info", "task_accepted"))
	assert.Equal(t, 1, logs[0].Fields["task_id"])
}

func TestMockLoggerClear(t *testing.T) {
	logger := NewMockLogger()
	logger.Warn("something")
	logger.Clear()
	assert.Empty(t, logger.GetLogs())
}

func TestNewTestObject(t *testing.T) {
	obj := NewTestObject(42, "url", "http://example.com")
	assert.Equal(t, uint64(42), *obj.ObjectID())
	assert.True(t, obj.IsSet("url"))
	attr, ok := obj.Get("url")
	assert.True(t, ok)
	assert.Equal(t, objectmodel.KindString, attr.Kind)
	assert.Equal(t, "http://example.com", attr.Value)
}

func TestNewTestFlagObject(t *testing.T) {
	obj := NewTestFlagObject(1, "Bad")
	assert.True(t, obj.IsSet("Bad"))
	attr, ok := obj.Get("Bad")
	assert.True(t, ok)
	assert.Equal(t, objectmodel.KindEmpty, attr.Kind)
}
