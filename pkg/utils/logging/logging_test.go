package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
)

func TestFromFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.SetDefault(logger)

	gt.Value(t, logging.From(context.Background())).Equal(logger)
}

func TestWithEmbedsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := logging.With(context.Background(), logger)

	logging.From(ctx).Info("hello", "form_id", "f1")
	gt.String(t, buf.String()).Contains(`"form_id":"f1"`)
}
