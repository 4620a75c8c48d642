package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "reddit-bde", cfg.StreamName)
	assert.Equal(t, "tbl_reddit_processed", cfg.TableName)
	assert.Equal(t, "LATEST", cfg.IteratorType)
	assert.Equal(t, int32(100), cfg.GetRecordsLimit)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 55*time.Minute, cfg.RunDuration)
	assert.InDelta(t, 3.0, cfg.AnomalyThreshold, 1e-9)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REDSTREAM_STREAM_NAME", "my-stream")
	t.Setenv("REDSTREAM_ITERATOR_TYPE", "TRIM_HORIZON")
	t.Setenv("REDSTREAM_RUN_DURATION", "2m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "my-stream", cfg.StreamName)
	assert.Equal(t, "TRIM_HORIZON", cfg.IteratorType)
	assert.Equal(t, 2*time.Minute, cfg.RunDuration)
}

func TestLoad_RejectsBadIteratorType(t *testing.T) {
	t.Setenv("REDSTREAM_ITERATOR_TYPE", "AT_TIMESTAMP")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate_RequiresStreamAndTable(t *testing.T) {
	cfg := &Config{IteratorType: "LATEST", GetRecordsLimit: 100}
	assert.Error(t, cfg.Validate())

	cfg.StreamName = "s"
	assert.Error(t, cfg.Validate())

	cfg.TableName = "t"
	assert.NoError(t, cfg.Validate())
}
