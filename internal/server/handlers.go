package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
)

const maxBodySize = 1 << 20 // 1MB

func (s *Server) handleList(c *gin.Context) {
	tasks, err := s.repo.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.mapper.ToWireSlice(tasks))
}

func (s *Server) handleGet(c *gin.Context) {
	task, err := s.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.mapper.ToWire(task))
}

func (s *Server) handleCreate(c *gin.Context) {
	draft, ok := s.bindDraft(c)
	if !ok {
		return
	}

	task, err := s.repo.Create(c.Request.Context(), draft)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.mapper.ToWire(task))
}

func (s *Server) handleUpdate(c *gin.Context) {
	draft, ok := s.bindDraft(c)
	if !ok {
		return
	}

	task, err := s.repo.Update(c.Request.Context(), c.Param("id"), draft)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.mapper.ToWire(task))
}

func (s *Server) handleDelete(c *gin.Context) {
	task, err := s.repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.mapper.ToWire(task))
}

// bindDraft decodes the request body. Server-owned fields in the body
// (id, timestamps) are ignored.
func (s *Server) bindDraft(c *gin.Context) (domain.Draft, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var body domain.WireTask
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return domain.Draft{}, false
	}
	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return domain.Draft{}, false
	}

	draft, err := s.mapper.ToDraft(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return domain.Draft{}, false
	}
	return draft, true
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.IsErrorType(err, errors.ErrorTypeValidation), errors.IsErrorType(err, errors.ErrorTypeInvalidInput):
		status = http.StatusBadRequest
	case errors.IsErrorType(err, errors.ErrorTypeDuplicateID):
		status = http.StatusConflict
	}

	if errors.ShouldLogError(err) {
		logging.Debugf("server: %s %s: %v\n", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": errors.GetUserMessage(err)})
}
