//go:build e2e

package e2e

import (
	"net/http"
	nethttptest "net/http/httptest"
	"strings"
	"testing"
	"time"

	"commerce-server/tests/common/httptest"

	"github.com/gin-gonic/gin"
)

const lockConflictMessage = "lock is held by another request"

// PerformWithRetry repeats a request while it is rejected by a held lock.
func PerformWithRetry(t *testing.T, router *gin.Engine, method, path string, body any) *nethttptest.ResponseRecorder {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for {
		w := httptest.PerformRequest(t, router, method, path, body)
		if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), lockConflictMessage) || time.Now().After(deadline) {
			return w
		}
		time.Sleep(5 * time.Millisecond)
	}
}
