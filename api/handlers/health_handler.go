package handlers

import (
	"net/http"
	"os/exec"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ytmp3-go/internal/app"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler reports worker state and whether the external tools the
// pipeline runs can be found
type HealthHandler struct {
	queueMgr *app.QueueManager
	tools    map[string]string
	lookPath func(file string) (string, error)
}

// NewHealthHandler creates a health handler. tools maps a program name to
// the binary configured for it.
func NewHealthHandler(queueMgr *app.QueueManager, tools map[string]string) *HealthHandler {
	return &HealthHandler{
		queueMgr: queueMgr,
		tools:    tools,
		lookPath: exec.LookPath,
	}
}

// ToolStatus is where a configured binary resolved to
type ToolStatus struct {
	Binary string `json:"binary"`
	Path   string `json:"path,omitempty"`
	Found  bool   `json:"found"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string                `json:"status"`
	Version string                `json:"version"`
	Queue   QueueStatus           `json:"queue"`
	Tools   map[string]ToolStatus `json:"tools,omitempty"`
}

// QueueStatus describes the worker
type QueueStatus struct {
	Running    bool   `json:"running"`
	CurrentJob string `json:"current_job,omitempty"`
}

// Health handles GET /health. A missing tool degrades the status but the
// endpoint still answers 200.
func (h *HealthHandler) Health(c *gin.Context) {
	tools, missing := h.checkTools()

	status := "ok"
	if len(missing) > 0 {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:  status,
		Version: Version,
		Queue: QueueStatus{
			Running:    h.queueMgr.IsRunning(),
			CurrentJob: h.queueMgr.CurrentJob(),
		},
		Tools: tools,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.queueMgr.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "queue manager not running",
		})
		return
	}

	if _, missing := h.checkTools(); len(missing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"reason":  "required tools not found",
			"missing": missing,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// checkTools resolves every configured binary. missing is sorted by name.
func (h *HealthHandler) checkTools() (map[string]ToolStatus, []string) {
	if len(h.tools) == 0 {
		return nil, nil
	}

	statuses := make(map[string]ToolStatus, len(h.tools))
	var missing []string
	for name, binary := range h.tools {
		st := ToolStatus{Binary: binary}
		if path, err := h.lookPath(binary); err == nil {
			st.Path = path
			st.Found = true
		} else {
			missing = append(missing, name)
		}
		statuses[name] = st
	}
	sort.Strings(missing)
	return statuses, missing
}
