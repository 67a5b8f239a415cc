package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docqa/internal/app"
	"docqa/internal/extractor"
	"docqa/internal/logger"
)

const sessionKey = "session"

var allowedExt = map[string]bool{".pdf": true, ".md": true, ".markdown": true, ".txt": true, ".text": true}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "docqa",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) CreateSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, toSessionResponse(sess))
}

// withSession loads the :id session or aborts with 404.
func (s *Server) withSession(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func session(c *gin.Context) *app.Session {
	return c.MustGet(sessionKey).(*app.Session)
}

func (s *Server) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, toSessionResponse(session(c)))
}

func (s *Server) DeleteSession(c *gin.Context) {
	s.sessions.Delete(session(c).ID)
	c.Status(http.StatusNoContent)
}

// UploadDocument accepts a multipart "file" field and processes it
// synchronously.
func (s *Server) UploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": app.MsgNoFile})
		return
	}

	name := filepath.Base(file.Filename)
	if !allowedExt[strings.ToLower(filepath.Ext(name))] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported file type: " + filepath.Ext(name)})
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		logger.Error("Failed to create upload dir: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	dir, err := os.MkdirTemp(s.uploadDir, "upload-")
	if err != nil {
		logger.Error("Failed to create upload dir: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		logger.Error("Failed to save upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	sess := session(c)
	rep := s.app.ProcessDocument(c.Request.Context(), sess, path)
	resp := processResponse{
		Success:    rep.Success,
		Message:    rep.Message,
		Collection: rep.Collection,
		Pages:      rep.Pages,
		Chunks:     rep.Chunks,
		OCRUsed:    rep.OCRUsed,
		Indexed:    rep.Indexed,
		State:      sess.State(),
	}
	if !rep.Success {
		status := http.StatusInternalServerError
		if errors.Is(rep.Err, extractor.ErrUnsupportedType) {
			status = http.StatusUnsupportedMediaType
		}
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) AskQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	sess := session(c)
	if sess.Document() == nil {
		c.JSON(http.StatusConflict, gin.H{"error": app.MsgNoDocument})
		return
	}

	ans := s.app.Ask(c.Request.Context(), sess, req.Question)
	resp := answerResponse{Answer: ans.Text, Route: ans.Route}
	for _, r := range ans.Sources {
		resp.Sources = append(resp.Sources, sourceResponse{ID: r.ID, Text: r.Text, Distance: r.Distance})
	}
	if ans.Err != nil {
		resp.Error = ans.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Summarize(c *gin.Context) {
	summary, err := s.app.Summarize(c.Request.Context(), session(c))
	if errors.Is(err, app.ErrNoDocument) {
		c.JSON(http.StatusConflict, gin.H{"error": summary})
		return
	}
	resp := summaryResponse{Summary: summary}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetHistory(c *gin.Context) {
	history := session(c).History()
	if history == nil {
		history = []app.Exchange{}
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (s *Server) ClearHistory(c *gin.Context) {
	session(c).ClearHistory()
	c.Status(http.StatusNoContent)
}
