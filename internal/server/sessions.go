package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oda-hub/deprecated-renku-aqs/internal/explore"
)

type nodeRequest struct {
	Node string `json:"node" binding:"required"`
}

type toggleRequest struct {
	Type    string `json:"type"`
	Subset  string `json:"subset"`
	Config  string `json:"config"`
	Enabled bool   `json:"enabled"`
}

type layoutRequest struct {
	Layout string `json:"layout" binding:"required"`
}

type sessionHandler func(c *gin.Context, s *explore.Session) error

// withSession resolves :id, runs h and answers with the resulting view
func (s *Server) withSession(h sessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		action := c.FullPath()[strings.LastIndex(c.FullPath(), "/")+1:]
		session, ok := s.lookup(c.Param("id"))
		if !ok {
			s.metrics.actions.WithLabelValues(action, "404").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		if err := h(c, session); err != nil {
			status := statusFor(err)
			s.metrics.actions.WithLabelValues(action, strconv.Itoa(status)).Inc()
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		s.metrics.actions.WithLabelValues(action, "200").Inc()
		c.JSON(http.StatusOK, session.View())
	}
}

// badRequest marks a malformed request body
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, explore.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, explore.ErrNotClickable),
		errors.Is(err, explore.ErrUnknownSubset),
		errors.Is(err, explore.ErrUnknownType),
		errors.Is(err, explore.ErrUnknownLayout),
		errors.Is(err, explore.ErrUnknownConfig):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return badRequest{err}
	}
	return nil
}

func (s *Server) handleCreate(c *gin.Context) {
	o, err := s.open(c.Request.Context())
	if err != nil {
		s.logger.Error("open session", "error", err)
		s.metrics.failures.Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Location", "/api/sessions/"+o.id)
	c.JSON(http.StatusCreated, gin.H{"id": o.id, "view": o.session.View()})
}

func (s *Server) handleDelete(c *gin.Context) {
	s.mu.Lock()
	_, ok := s.sessions[c.Param("id")]
	delete(s.sessions, c.Param("id"))
	s.metrics.sessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleView(*gin.Context, *explore.Session) error { return nil }

func (s *Server) handleExpand(c *gin.Context, session *explore.Session) error {
	var req nodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return session.Expand(req.Node)
}

func (s *Server) handleCollapse(c *gin.Context, session *explore.Session) error {
	var req nodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return session.Collapse(req.Node)
}

func (s *Server) handleReduction(c *gin.Context, session *explore.Session) error {
	var req toggleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return session.ToggleReduction(req.Type, req.Enabled)
}

func (s *Server) handleSubset(c *gin.Context, session *explore.Session) error {
	var req toggleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return session.ToggleSubset(req.Subset, req.Enabled)
}

func (s *Server) handleGraphConfig(c *gin.Context, session *explore.Session) error {
	var req toggleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return session.ToggleGraphConfig(req.Config, req.Enabled)
}

func (s *Server) handleLayout(c *gin.Context, session *explore.Session) error {
	var req layoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return session.SetLayout(explore.Layout(req.Layout))
}

func (s *Server) handleReset(_ *gin.Context, session *explore.Session) error {
	session.Reset()
	return nil
}
