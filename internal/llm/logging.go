package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/boom724/boomguru/internal/store"
)

// LoggingProvider is a decorator that logs every LLM request and records
// it as a persisted event.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with structured logging and event recording.
// A nil eventRepo disables persistence but keeps the log line.
func WithLogging(p Provider, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	stage := StageFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latency := time.Since(start)

	fields := logrus.Fields{
		"stage":      stage,
		"model":      l.inner.ModelID(),
		"latency_ms": latency.Milliseconds(),
	}
	if resp != nil {
		fields["input_tokens"] = resp.Usage.InputTokens
		fields["output_tokens"] = resp.Usage.OutputTokens
	}
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("LLM request failed")
	} else {
		logrus.WithFields(fields).Info("LLM request completed")
	}

	data := store.LLMEvent{
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Stage:       stage,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// Record the event but don't fail the request if persistence fails.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMEvent(ctx, data); logErr != nil {
			logrus.WithError(logErr).Warn("failed to record LLM event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
// Image payloads are elided; a base64 data URL is megabytes of noise.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		if m.ImageURL != "" {
			b.WriteString(fmt.Sprintf("<image: %d bytes>\n", len(m.ImageURL)))
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
