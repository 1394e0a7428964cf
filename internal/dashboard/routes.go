package dashboard

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sotuphap-angiang/vbtrack/internal/document"
	"github.com/sotuphap-angiang/vbtrack/internal/handler"
	"github.com/sotuphap-angiang/vbtrack/internal/importer"
	"github.com/sotuphap-angiang/vbtrack/internal/store"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, s *server) {
	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/import", s.handleImport)
	api.GET("/imports", s.handleImportHistory)
	api.GET("/events", s.handleEvents)
	api.GET("/report", s.handleReport)

	api.GET("/documents", s.handleDocumentList)
	api.POST("/documents", s.handleDocumentCreate)
	api.PUT("/documents/:id", s.handleDocumentUpdate)
	api.DELETE("/documents", s.handleDocumentDelete)

	api.GET("/handlers", s.handleHandlerList)
	api.POST("/handlers", s.handleHandlerCreate)
	api.PUT("/handlers/:id", s.handleHandlerUpdate)
	api.DELETE("/handlers/:id", s.handleHandlerDelete)

	api.GET("/agencies", s.handleAgencies)
}

func (s *server) handleHealth(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "importing": s.importing(c.Request.Context())})
}

// handleImport accepts a multipart upload in the "file" field and runs the
// import synchronously, answering with the import log.
func (s *server) handleImport(c *gin.Context) {
	limit := s.cfg.Server.MaxUploadMB << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, importer.Result{
				Logs:  []string{fmt.Sprintf("❌ File exceeds the %d MB upload limit.", s.cfg.Server.MaxUploadMB)},
				Error: true,
			})
			return
		}
		c.JSON(http.StatusBadRequest, importer.Result{Logs: []string{"❌ No Excel file was uploaded."}, Error: true})
		return
	}
	if fh.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, importer.Result{
			Logs:  []string{fmt.Sprintf("❌ File exceeds the %d MB upload limit.", s.cfg.Server.MaxUploadMB)},
			Error: true,
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, importer.Result{Logs: []string{fmt.Sprintf("❌ Error: %v", err)}, Error: true})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, importer.Result{Logs: []string{fmt.Sprintf("❌ Error: %v", err)}, Error: true})
		return
	}

	res, err := s.runner.Run(c.Request.Context(), importer.Source{
		Name:    fh.Filename,
		Data:    data,
		Trigger: importer.TriggerUpload,
	})
	c.JSON(importStatus(res, err), res)
}

// importStatus maps an import outcome to its HTTP status.
func importStatus(res importer.Result, err error) int {
	switch {
	case errors.Is(err, importer.ErrImportRunning):
		return http.StatusConflict
	case err != nil:
		return http.StatusInternalServerError
	case res.State == importer.StateAborted:
		return http.StatusBadRequest
	case res.Error:
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

func (s *server) handleImportHistory(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	runs, err := s.store.ListImportRuns(c.Request.Context(), limit)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (s *server) handleReport(c *gin.Context) {
	var f store.DocumentFilter
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
			return
		}
		f.Year = year
	}
	d, err := Report(c.Request.Context(), s.store, s.cfg.Report, f)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *server) handleDocumentList(c *gin.Context) {
	var q document.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := document.List(s.db.WithContext(c.Request.Context()), q)
	if err != nil {
		s.documentError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *server) handleDocumentCreate(c *gin.Context) {
	var in document.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Year == 0 {
		in.Year = s.cfg.Year
	}
	doc, err := document.Create(s.db.WithContext(c.Request.Context()), in)
	if err != nil {
		s.documentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

func (s *server) handleDocumentUpdate(c *gin.Context) {
	var in document.Fields
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := document.Update(s.db.WithContext(c.Request.Context()), c.Param("id"), in)
	if err != nil {
		s.documentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

type deleteDocumentsRequest struct {
	IDs     []string `json:"ids"`
	DocType string   `json:"doc_type"`
	Status  string   `json:"status"`
}

func (s *server) handleDocumentDelete(c *gin.Context) {
	var req deleteDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := document.Delete(s.db.WithContext(c.Request.Context()), req.IDs, req.DocType, req.Status)
	if err != nil {
		s.documentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (s *server) documentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, document.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, document.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.internalError(c, err)
	}
}

func (s *server) handleHandlerList(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	list, err := handler.List(s.db.WithContext(c.Request.Context()), activeOnly)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *server) handleHandlerCreate(c *gin.Context) {
	var in handler.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h, err := handler.Create(s.db.WithContext(c.Request.Context()), in.Name)
	if err != nil {
		s.handlerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h)
}

func (s *server) handleHandlerUpdate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in handler.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h, err := handler.Update(s.db.WithContext(c.Request.Context()), id, in)
	if err != nil {
		s.handlerError(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *server) handleHandlerDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := handler.Delete(s.db.WithContext(c.Request.Context()), id); err != nil {
		s.handlerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *server) handlerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, handler.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, handler.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, handler.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.internalError(c, err)
	}
}

func (s *server) handleAgencies(c *gin.Context) {
	agencies, err := s.store.ListAgencies(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, agencies)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func (s *server) internalError(c *gin.Context, err error) {
	s.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
