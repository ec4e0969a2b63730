package logger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger()

	assert.NotNil(t, logger)
	assert.Len(t, logger.Logs(), 0)
	assert.Nil(t, logger.metadata)
}

func TestTestLoggerMethods(t *testing.T) {
	logger := NewTestLogger()

	logger.Trace("Trace message", 1)
	logger.Debug("Debug message", 2)
	logger.Info("Info message", 3)
	logger.Warn("Warn message", 4)
	logger.Error("Error message", 5)

	logs := logger.Logs()
	assert.Len(t, logs, 5)

	assert.Equal(t, "TRACE", logs[0].Severity)
	assert.Equal(t, "Trace message", logs[0].Message)
	assert.Equal(t, []interface{}{1}, logs[0].Arguments)

	assert.Equal(t, "DEBUG", logs[1].Severity)
	assert.Equal(t, "INFO", logs[2].Severity)
	assert.Equal(t, "WARNING", logs[3].Severity)
	assert.Equal(t, "ERROR", logs[4].Severity)
	assert.Equal(t, []interface{}{5}, logs[4].Arguments)
	assert.Equal(t, 1, logger.Count("ERROR"))
}

func TestTestLoggerWith(t *testing.T) {
	logger := NewTestLogger()

	metadata := map[string]interface{}{
		"key1": "value1",
		"key2": 42,
	}

	testLogger, ok := logger.With(metadata).(*TestLogger)
	assert.True(t, ok)
	assert.Equal(t, metadata, testLogger.metadata)

	testLogger2, ok := WithKV(testLogger, "key3", true).(*TestLogger)
	assert.True(t, ok)
	assert.Equal(t, "value1", testLogger2.metadata["key1"])
	assert.Equal(t, 42, testLogger2.metadata["key2"])
	assert.Equal(t, true, testLogger2.metadata["key3"])
	assert.NotContains(t, testLogger.metadata, "key3")

	testLogger2.Info("shared")
	assert.Len(t, logger.Logs(), 1, "derived loggers record into the parent")
	assert.Equal(t, true, logger.Logs()[0].Metadata["key3"])
}

func TestTestLoggerWithPrefix(t *testing.T) {
	logger := NewTestLogger()
	logger.WithPrefix("[cache]").Warn("sweep")
	assert.Equal(t, "[cache] sweep", logger.Logs()[0].Message)
}

func TestTestLoggerConcurrent(t *testing.T) {
	logger := NewTestLogger()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Debug(fmt.Sprintf("worker %d", i))
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16*50, logger.Count("DEBUG"))
}
