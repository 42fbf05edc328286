package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"voicetasks/internal/model"
	"voicetasks/internal/pipeline"
	"voicetasks/internal/utils"
)

// Handler serves the pipeline over HTTP.
type Handler struct {
	orch        *pipeline.Orchestrator
	uploadDir   string
	defaultLang model.Language
}

func NewHandler(orch *pipeline.Orchestrator, uploadDir string, defaultLang model.Language) *Handler {
	return &Handler{orch: orch, uploadDir: uploadDir, defaultLang: defaultLang}
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	// Health check
	r.GET("/health", healthCheck)

	// API v1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/pipeline", h.pipelineStatus)

		v1.POST("/recording/start", h.startRecording)
		v1.POST("/recording/chunks", h.writeChunk)
		v1.POST("/recording/stop", h.stopRecording)
		v1.POST("/recordings", h.uploadRecording)

		v1.GET("/runs", h.listRuns)
		v1.GET("/runs/:run_id", h.getRun)

		v1.POST("/calendar/export", h.exportTasks)
	}
}

// healthCheck returns server health status
func healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "voicetasks",
	})
}

func (h *Handler) pipelineStatus(c *gin.Context) {
	st := h.orch.Status()
	utils.Success(c, gin.H{
		"state":        st.State,
		"language":     st.Language,
		"session":      st.Session,
		"recorder":     st.Recorder,
		"stt_provider": st.STTProvider,
		"export_mode":  st.ExportMode,
	})
}

func (h *Handler) listRuns(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.Error(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs := h.orch.Runs().List(limit)
	utils.Success(c, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

func (h *Handler) getRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("run_id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "run_id must be a UUID")
		return
	}

	run, ok := h.orch.Runs().Get(id)
	if !ok {
		utils.Error(c, http.StatusNotFound, "run not found")
		return
	}

	utils.Success(c, gin.H{"run": run})
}

// ExportRequest carries the tasks to put on the calendar
type ExportRequest struct {
	Tasks []model.Task `json:"tasks"`
}

func (h *Handler) exportTasks(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	for _, t := range req.Tasks {
		if t.Title == "" {
			utils.Error(c, http.StatusBadRequest, "every task needs a title")
			return
		}
	}

	res, err := h.orch.Export(c.Request.Context(), req.Tasks)
	if err != nil {
		log.Printf("[Export] Failed: %v", err)
		respondError(c, err)
		return
	}

	if res.Payload != nil {
		utils.Attachment(c, res.FileName, "text/calendar; charset=utf-8", res.Payload)
		return
	}

	utils.Success(c, gin.H{
		"mode":       res.Mode,
		"successful": res.Successful,
		"failed":     res.Failed,
		"event_ids":  res.EventIDs,
		"message":    pipeline.ExportMessage(res),
	})
}
