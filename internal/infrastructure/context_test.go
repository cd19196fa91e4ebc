package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureRunID(t *testing.T) {
	ctx := EnsureRunID(context.Background())
	runID := GetRunID(ctx)
	assert.NotEmpty(t, runID)

	// an existing id is kept
	assert.Equal(t, runID, GetRunID(EnsureRunID(ctx)))
}

func TestWithComponentAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithError(WithComponent(logger, "pipeline"), errors.New("boom")).Info("stage failed")
	assert.Contains(t, buf.String(), `"component":"pipeline"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)

	buf.Reset()
	WithError(logger, nil).Info("ok")
	assert.NotContains(t, buf.String(), `"error"`)
}
