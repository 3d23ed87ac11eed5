package github

import (
	"net/http"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errGitHubTransient)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func statusError(status int, raw []byte) error {
	err := crerr.Newf("github status=%d body=%s", status, abbreviateBody(raw))
	if isRetryableStatus(status) {
		return crerr.Mark(err, errGitHubTransient)
	}
	return err
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > maxErrorSnippet {
		return body[:maxErrorSnippet] + "..."
	}
	return body
}

func stripNewlines(v string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(v)
}
