package logging

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context: {version}-{trace-id}-{parent-id}-{trace-flags}
var traceparentRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

var (
	projectIDOnce   sync.Once
	cachedProjectID string
)

// traceparent is the parsed form of a W3C traceparent header.
type traceparent struct {
	TraceID string
	SpanID  string
	Sampled bool
}

func parseTraceparent(header string) (traceparent, bool) {
	m := traceparentRe.FindStringSubmatch(header)
	if len(m) != 5 {
		return traceparent{}, false
	}
	return traceparent{TraceID: m[2], SpanID: m[3], Sampled: m[4] == "01"}, true
}

// resource renders the Cloud Trace resource name for the given project.
func (tp traceparent) resource(projectID string) string {
	return fmt.Sprintf("projects/%s/traces/%s", projectID, tp.TraceID)
}

func loggerWithTrace(base *zap.Logger, header, projectID, requestID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	fields := traceFields(header, projectID)
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

func traceFields(header, projectID string) []zap.Field {
	if projectID == "" {
		return nil
	}
	tp, ok := parseTraceparent(header)
	if !ok {
		return nil
	}
	return []zap.Field{
		zap.String("logging.googleapis.com/trace", tp.resource(projectID)),
		zap.String("logging.googleapis.com/spanId", tp.SpanID),
		zap.Bool("logging.googleapis.com/trace_sampled", tp.Sampled),
	}
}

// traceResource returns the correlation ID derived from the header, or "" when unavailable.
func traceResource(header, projectID string) string {
	if projectID == "" {
		return ""
	}
	tp, ok := parseTraceparent(header)
	if !ok {
		return ""
	}
	return tp.resource(projectID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveProjectID() string {
	projectIDOnce.Do(func() {
		cachedProjectID = firstNonEmpty(
			os.Getenv("GOOGLE_CLOUD_PROJECT"),
			os.Getenv("GCP_PROJECT"),
			os.Getenv("GCLOUD_PROJECT"),
			os.Getenv("PROJECT_ID"),
		)
	})
	return cachedProjectID
}
