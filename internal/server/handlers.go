package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/store"
)

type removeInput struct {
	Key []string `json:"key" binding:"required"`
}

// listCircles returns one page. Query: current, pageSize, name, desc.
func (s *Server) listCircles(c *gin.Context) {
	current, _ := strconv.Atoi(c.Query("current"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	p := model.PageParams{
		Current:  current,
		PageSize: size,
		Name:     c.Query("name"),
		Desc:     c.Query("desc"),
	}.Normalize()

	rows, total, err := s.store.List(c.Request.Context(), p)
	if err != nil {
		s.fail(c, err, "Could not fetch circles")
		return
	}
	c.JSON(http.StatusOK, model.Page{Data: rows, Total: total, Success: true})
}

func (s *Server) getCircle(c *gin.Context) {
	circle, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err, "Could not fetch circle")
		return
	}
	c.JSON(http.StatusOK, circle)
}

func (s *Server) createCircle(c *gin.Context) {
	var in model.NewDraft
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	circle, err := s.store.Create(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err, "Failed to create circle")
		return
	}
	c.JSON(http.StatusCreated, circle)
}

func (s *Server) updateCircle(c *gin.Context) {
	var in model.ExistingPatch
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in.ID = c.Param("id")
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	circle, err := s.store.Update(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err, "Failed to update circle")
		return
	}
	c.JSON(http.StatusOK, circle)
}

func (s *Server) removeCircles(c *gin.Context) {
	var in removeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := s.store.Delete(c.Request.Context(), in.Key)
	if err != nil {
		s.fail(c, err, "Failed to delete circles")
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

// uploadAvatar stores one image under a fresh UUID name and returns its URL.
func (s *Server) uploadAvatar(c *gin.Context) {
	limit := int64(s.opt.MaxUploadMB) << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+512<<10)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing or too large"})
		return
	}
	if fh.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("only images up to %dMB are accepted", s.opt.MaxUploadMB)})
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err, "Could not read upload")
		return
	}
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	f.Close()
	if _, err := model.CheckAvatar(fh.Size, head[:n]); err != nil {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	}

	if s.opt.UploadDir == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are disabled"})
		return
	}
	if err := os.MkdirAll(s.opt.UploadDir, 0o755); err != nil {
		s.fail(c, err, "Could not create upload directory")
		return
	}
	name := uuid.NewString() + filepath.Ext(fh.Filename)
	if err := c.SaveUploadedFile(fh, filepath.Join(s.opt.UploadDir, name)); err != nil {
		s.fail(c, err, "Could not save file")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":  "/uploads/" + name,
		"name": fh.Filename,
		"size": fh.Size,
	})
}

// fail maps store errors to statuses. Anything unexpected is logged and
// reported with msg only.
func (s *Server) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.log.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
