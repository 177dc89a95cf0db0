package middleware

import (
	"net/http"
	"strings"

	"paws/pkg/logger"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// ContentTypeValidation requires JSON bodies on writes. Paths listed in
// formPaths take form-encoded bodies instead, as Slack posts interactions.
func ContentTypeValidation(log *logger.Logger, formPaths ...string) func(http.Handler) http.Handler {
	forms := make(map[string]struct{}, len(formPaths))
	for _, p := range formPaths {
		forms[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r.Method) {
				expected := contentTypeJSON
				if _, ok := forms[r.URL.Path]; ok {
					expected = contentTypeForm
				}

				contentType := extractContentType(r.Header.Get("Content-Type"))
				if contentType != expected {
					rejectInvalidContentType(w, log, r, contentType, expected)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}

	mediaType, _, _ := strings.Cut(header, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func rejectInvalidContentType(w http.ResponseWriter, log *logger.Logger, r *http.Request, contentType, expected string) {
	log.Warn("Invalid Content-Type header",
		"request_id", RequestID(r.Context()),
		"content_type", contentType,
		"expected", expected,
		"path", r.URL.Path,
		"method", r.Method,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnsupportedMediaType)
	_, _ = w.Write([]byte(`{"error":"Content-Type must be ` + expected + `"}`))
}
