package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/ytmp3-go/internal/app"
	"github.com/yourusername/ytmp3-go/internal/domain"
)

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	queueMgr      *app.QueueManager
	defaultFolder string
	logger        *zap.Logger
}

// NewJobHandler creates a new job handler. defaultFolder is used when a
// request names no folder.
func NewJobHandler(queueMgr *app.QueueManager, defaultFolder string, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		queueMgr:      queueMgr,
		defaultFolder: defaultFolder,
		logger:        logger,
	}
}

// AddJobRequest represents a request to queue a video or playlist
type AddJobRequest struct {
	URL    string `json:"url" binding:"required"`
	Folder string `json:"folder,omitempty"`
}

// JobDetail is a job together with its item results
type JobDetail struct {
	*domain.Job
	Items []*domain.JobItem `json:"items"`
}

// AddJob handles POST /api/v1/jobs
func (h *JobHandler) AddJob(c *gin.Context) {
	var req AddJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := domain.ValidateURL(req.URL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = h.defaultFolder
	}

	job, err := h.queueMgr.AddJob(req.URL, folder)
	if err != nil {
		if errors.Is(err, app.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to add job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, job)
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id := c.Param("id")

	job, err := h.queueMgr.GetJob(id)
	if err != nil {
		if errors.Is(err, app.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items, err := h.queueMgr.JobItems(id)
	if err != nil {
		h.logger.Error("Failed to load job items", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, JobDetail{Job: job, Items: items})
}

// ListJobs handles GET /api/v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	var filters domain.JobFilters

	if status := c.Query("status"); status != "" {
		s := domain.JobStatus(status)
		if !domain.ValidateStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status: " + status})
			return
		}
		filters.Status = s
	}
	if kind := c.Query("kind"); kind != "" {
		filters.Kind = domain.JobKind(kind)
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	jobs, err := h.queueMgr.ListJobs(filters)
	if err != nil {
		h.logger.Error("Failed to list jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetStats handles GET /api/v1/jobs/stats
func (h *JobHandler) GetStats(c *gin.Context) {
	stats, err := h.queueMgr.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// CancelJob handles POST /api/v1/jobs/:id/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	id := c.Param("id")

	if err := h.queueMgr.CancelJob(id); err != nil {
		if errors.Is(err, app.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Warn("Failed to cancel job", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "stop requested"})
}

// StopCurrent handles POST /api/v1/stop
func (h *JobHandler) StopCurrent(c *gin.Context) {
	if !h.queueMgr.CancelCurrent() {
		c.JSON(http.StatusConflict, gin.H{"error": "no job is running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stop requested"})
}

// ProgressResponse is the latest pipeline event with its rendered status line
type ProgressResponse struct {
	Running bool          `json:"running"`
	JobID   string        `json:"job_id,omitempty"`
	Status  string        `json:"status"`
	Event   *domain.Event `json:"event,omitempty"`
}

// GetProgress handles GET /api/v1/progress
func (h *JobHandler) GetProgress(c *gin.Context) {
	resp := ProgressResponse{
		JobID:  h.queueMgr.CurrentJob(),
		Status: "Idle",
	}
	resp.Running = resp.JobID != ""

	if e, ok := h.queueMgr.Progress(); ok {
		resp.Event = &e
		resp.Status = e.StatusText()
	}

	c.JSON(http.StatusOK, resp)
}
