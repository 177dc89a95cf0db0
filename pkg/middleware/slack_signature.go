package middleware

import (
	"bytes"
	"io"
	"net/http"

	"paws/pkg/logger"

	"github.com/slack-go/slack"
)

// SlackSignatureVerification rejects requests that were not signed with the
// Slack app's signing secret. The body is restored for the next handler.
func SlackSignatureVerification(signingSecret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verifier, err := slack.NewSecretsVerifier(r.Header, signingSecret)
			if err != nil {
				logAndReject(w, log, r, err.Error())
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				logAndReject(w, log, r, "Failed to read request body")
				return
			}

			if _, err := verifier.Write(body); err != nil {
				logAndReject(w, log, r, "Failed to hash request body")
				return
			}
			if err := verifier.Ensure(); err != nil {
				logAndReject(w, log, r, "Invalid request signature")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	return body, nil
}

func logAndReject(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Slack request verification failed",
		"request_id", RequestID(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}
