package logging_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/infrastructure/config"
	"github.com/andrescamacho/industry-go/internal/infrastructure/logging"
)

func TestLogger_WritesJSONWithMetadata(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, config.LoggingConfig{Level: "info", Format: "json"}, nil)

	// Act
	logger.Log(common.LevelInfo, "Price stats updated", map[string]interface{}{"region_id": 10000002, "updated": 3})

	// Assert
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Price stats updated", entry["msg"])
	assert.Equal(t, float64(10000002), entry["region_id"])
	assert.Equal(t, float64(3), entry["updated"])
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, config.LoggingConfig{Level: "warn", Format: "text"}, nil)

	// Act
	logger.Log(common.LevelInfo, "hidden", nil)
	logger.Log(common.LevelError, "shown", map[string]interface{}{"item_id": 34})

	// Assert
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "item_id=34")
}

func TestLogger_WithAddsFields(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, config.LoggingConfig{Level: "debug", Format: "text"}, nil)

	// Act
	logger.With(map[string]interface{}{"run_id": "r1"}).Log(common.LevelDebug, "item estimated", nil)

	// Assert
	assert.True(t, strings.Contains(buf.String(), "run_id=r1"))
}

func TestNew_FileOutput(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "industry.log")

	// Act
	logger, err := logging.New(config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: path})

	// Assert
	require.NoError(t, err)
	logger.Log(common.LevelInfo, "started", nil)
	assert.NoError(t, logger.Close())
}
