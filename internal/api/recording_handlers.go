package api

import (
	"context"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"voicetasks/internal/capture"
	"voicetasks/internal/model"
	"voicetasks/internal/pipeline"
	"voicetasks/internal/storage"
	"voicetasks/internal/utils"
)

const maxAudioBytes = capture.MaxClipBytes

var allowedAudioExts = []string{".m4a", ".mp3", ".wav", ".aac", ".ogg", ".webm", ".caf", ".aiff", ".aif"}

// StartRequest selects the transcription language for a recording
type StartRequest struct {
	Language string `json:"language"`
}

func (h *Handler) startRecording(c *gin.Context) {
	var req StartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	lang, err := h.language(req.Language)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.orch.StartCapture(c.Request.Context(), lang); err != nil {
		log.Printf("[Recording] Start failed: %v", err)
		respondError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"state":    pipeline.StateRecording,
		"language": lang,
	})
}

// writeChunk appends the raw request body to the live recording
func (h *Handler) writeChunk(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxAudioBytes))
	if err != nil {
		utils.Error(c, http.StatusRequestEntityTooLarge, "chunk exceeds 25MB limit")
		return
	}
	if len(body) == 0 {
		utils.Error(c, http.StatusBadRequest, "empty audio chunk")
		return
	}

	if err := h.orch.WriteChunk(body, c.ContentType()); err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, gin.H{"received": len(body)})
}

func (h *Handler) stopRecording(c *gin.Context) {
	// processing runs to completion even if the client goes away
	res, err := h.orch.StopCapture(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		log.Printf("[Recording] Processing failed: %v", err)
		respondError(c, err)
		return
	}

	respondResult(c, res)
}

// uploadRecording processes an audio file recorded on the client
func (h *Handler) uploadRecording(c *gin.Context) {
	log.Printf("[Upload] Content-Type: %s", c.GetHeader("Content-Type"))

	if c.Request.MultipartForm == nil {
		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			log.Printf("[Upload] Failed to parse multipart form: %v", err)
			utils.Error(c, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
			return
		}
	}

	file, err := c.FormFile("audio_file")
	if err != nil {
		// Try alternative field names
		if file, err = c.FormFile("audio"); err != nil {
			if file, err = c.FormFile("file"); err != nil {
				utils.Error(c, http.StatusBadRequest, "audio_file is required")
				return
			}
		}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	valid := false
	for _, allowed := range allowedAudioExts {
		if ext == allowed {
			valid = true
			break
		}
	}
	if !valid {
		utils.Error(c, http.StatusBadRequest, "unsupported audio format. Supported: m4a, mp3, wav, aac, ogg, webm, caf, aiff")
		return
	}

	if file.Size > maxAudioBytes {
		utils.Error(c, http.StatusBadRequest, "file size exceeds 25MB limit")
		return
	}

	lang, err := h.language(c.PostForm("language"))
	if err != nil {
		respondError(c, err)
		return
	}

	clip, err := storage.SaveUpload(file, h.uploadDir)
	if err != nil {
		log.Printf("[Upload] Error saving audio: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to save audio file")
		return
	}
	log.Printf("[Upload] Audio saved: %s (%d bytes)", clip.Locator, clip.SizeBytes)

	res, err := h.orch.Process(context.WithoutCancel(c.Request.Context()), clip, lang)
	if err != nil {
		log.Printf("[Upload] Processing failed: %v", err)
		respondError(c, err)
		return
	}

	respondResult(c, res)
}

func (h *Handler) language(code string) (model.Language, error) {
	if code == "" {
		return h.defaultLang, nil
	}
	return model.ParseLanguage(code)
}

func respondResult(c *gin.Context, res *pipeline.Result) {
	utils.Success(c, gin.H{
		"run_id":     res.RunID,
		"status":     model.RunStatusProcessed,
		"language":   res.Language,
		"transcript": res.Transcript,
		"tasks":      res.Tasks,
	})
}
