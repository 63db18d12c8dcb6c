package logging

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	sampledHeader   = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"
	unsampledHeader = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-00"
	wantResource    = "projects/test-project/traces/3d23d071b5bfd6579171efce907685cb"
)

func TestParseTraceparent(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		ok      bool
		sampled bool
	}{
		{"sampled", sampledHeader, true, true},
		{"not sampled", unsampledHeader, true, false},
		{"empty", "", false, false},
		{"legacy cloud trace format", "105445aa7843bc8bf206b120001000/1;o=1", false, false},
		{"short trace id", "00-3d23d071-08f067aa0ba902b7-01", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, ok := parseTraceparent(tt.header)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if tp.TraceID != "3d23d071b5bfd6579171efce907685cb" || tp.SpanID != "08f067aa0ba902b7" {
				t.Fatalf("unexpected parse result: %+v", tp)
			}
			if tp.Sampled != tt.sampled {
				t.Fatalf("expected sampled=%v, got %v", tt.sampled, tp.Sampled)
			}
		})
	}
}

func TestTraceFields(t *testing.T) {
	fields := traceFields(sampledHeader, "test-project")
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[0].Key != "logging.googleapis.com/trace" || fields[0].String != wantResource {
		t.Fatalf("unexpected trace field: %+v", fields[0])
	}
	if fields[1].Key != "logging.googleapis.com/spanId" || fields[1].String != "08f067aa0ba902b7" {
		t.Fatalf("unexpected span field: %+v", fields[1])
	}
	if fields[2].Key != "logging.googleapis.com/trace_sampled" || fields[2].Type != zapcore.BoolType ||
		fields[2].Integer != 1 {
		t.Fatalf("unexpected sampled field: %+v", fields[2])
	}
}

func TestTraceFieldsInvalid(t *testing.T) {
	if fields := traceFields("invalid", "test-project"); fields != nil {
		t.Fatalf("expected nil fields for invalid header, got %v", fields)
	}
	if fields := traceFields(sampledHeader, ""); fields != nil {
		t.Fatalf("expected nil fields when projectID missing, got %v", fields)
	}
}

func TestTraceResource(t *testing.T) {
	if got := traceResource(sampledHeader, "test-project"); got != wantResource {
		t.Fatalf("expected %s, got %s", wantResource, got)
	}
	if got := traceResource(sampledHeader, ""); got != "" {
		t.Fatalf("expected empty resource without project, got %s", got)
	}
	if got := traceResource("invalid", "test-project"); got != "" {
		t.Fatalf("expected empty resource for invalid header, got %s", got)
	}
}

func TestLoggerWithTraceAddsCloudFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	logger := loggerWithTrace(zap.New(core), sampledHeader, "test-project", "req-123")
	logger.Info("hello")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := fieldMap(entries[0].Context)
	if f, ok := fields["logging.googleapis.com/trace"]; !ok || f.String != wantResource {
		t.Fatalf("trace field mismatch: %+v", fields)
	}
	if f, ok := fields["requestId"]; !ok || f.String != "req-123" {
		t.Fatalf("requestId field mismatch: %+v", fields)
	}
}

func TestLoggerWithTraceNoFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	if logger := loggerWithTrace(base, "", "", ""); logger != base {
		t.Fatal("expected base logger when there are no fields")
	}
	if logger := loggerWithTrace(nil, "", "", "req-1"); logger == nil {
		t.Fatal("expected non-nil logger for nil base")
	}
	if len(recorded.All()) != 0 {
		t.Fatal("expected no entries")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "", "value", "other"); got != "value" {
		t.Fatalf("expected 'value', got %q", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestResolveProjectIDPriority(t *testing.T) {
	origProjectID := cachedProjectID
	t.Cleanup(func() {
		cachedProjectID = origProjectID
		projectIDOnce = sync.Once{}
		projectIDOnce.Do(func() {})
	})

	tests := []struct {
		name     string
		envVars  map[string]string
		expected string
	}{
		{"GOOGLE_CLOUD_PROJECT first", map[string]string{"GOOGLE_CLOUD_PROJECT": "a", "GCP_PROJECT": "b"}, "a"},
		{"GCP_PROJECT fallback", map[string]string{"GCP_PROJECT": "b", "GCLOUD_PROJECT": "c"}, "b"},
		{"GCLOUD_PROJECT fallback", map[string]string{"GCLOUD_PROJECT": "c", "PROJECT_ID": "d"}, "c"},
		{"PROJECT_ID fallback", map[string]string{"PROJECT_ID": "d"}, "d"},
		{"empty when unset", map[string]string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projectIDOnce = sync.Once{}
			cachedProjectID = ""
			for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT", "PROJECT_ID"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			if got := resolveProjectID(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
