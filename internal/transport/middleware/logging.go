package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/timekeeper/pkg/logger"
)

const (
	redacted = "[FILTERED]"

	// bodies beyond this are cut before logging
	maxLoggedBody = 4 << 10
)

// sensitiveFields are matched as substrings of header names and JSON keys.
var sensitiveFields = []string{
	"password",
	"hash",
	"salt",
	"token",
	"authorization",
	"cookie",
	"secret",
	"session",
	"invitation",
	"credential",
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(name, field) {
			return true
		}
	}
	return false
}

// LoggingMiddleware logs each request at debug and its outcome at a level
// that follows the status code. It reads the request logger set by
// RequestID. Bodies are only captured while debug is on.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lg := logger.From(r.Context())
		verbose := lg.Enabled(r.Context(), slog.LevelDebug)

		if verbose {
			logRequest(lg, r)
		}

		rec := &statusRecorder{ResponseWriter: w, capture: verbose}
		next.ServeHTTP(rec, r)

		logOutcome(lg, r, rec, time.Since(start))
	})
}

// statusRecorder remembers the status and size of a response and, when
// asked to, a copy of its body.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	size    int
	capture bool
	body    bytes.Buffer
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.capture && s.body.Len() < maxLoggedBody {
		s.body.Write(b)
	}
	n, err := s.ResponseWriter.Write(b)
	s.size += n
	return n, err
}

func logRequest(lg *slog.Logger, r *http.Request) {
	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	lg.Debug("incoming request",
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", redactHeaders(r.Header),
		"body", redactBody(body),
	)
}

func logOutcome(lg *slog.Logger, r *http.Request, rec *statusRecorder, took time.Duration) {
	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}

	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", status,
		"duration_ms", took.Milliseconds(),
		"response_size", rec.size,
	}
	if rec.capture {
		attrs = append(attrs, "body", redactBody(rec.body.Bytes()))
	}
	lg.Log(r.Context(), level, "response", attrs...)
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody masks sensitive keys in a JSON body. Anything that is not
// JSON is dropped entirely if it mentions a sensitive word.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		if isSensitive(string(body)) {
			return redacted
		}
		return string(body)
	}

	out, err := json.Marshal(redactValue(doc))
	if err != nil {
		return redacted
	}
	return string(out)
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for key, value := range t {
			if isSensitive(key) {
				t[key] = redacted
			} else {
				t[key] = redactValue(value)
			}
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = redactValue(item)
		}
		return t
	default:
		return v
	}
}
