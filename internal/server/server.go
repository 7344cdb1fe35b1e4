// Package server exposes report generation over HTTP.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"koken-report/internal/logger"
	"koken-report/internal/report"
	"koken-report/internal/service"
	"koken-report/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"

	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	maxTemplateSize = 20 << 20
)

// Server is the HTTP front of the report service
type Server struct {
	router *gin.Engine
	svc    *service.Service
}

// NewServer creates the server and registers its routes
func NewServer(svc *service.Service, devMode bool) *Server {
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router: gin.New(),
		svc:    svc,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), requestID(), accessLog())

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.GET("/persons", s.listPersons)
		api.GET("/persons/:id/periodic-report", s.periodicReport)
		api.POST("/persons/:id/fill", s.fillTemplate)
	}
}

// Run starts listening on addr
func (s *Server) Run(addr string) error {
	logger.Info("listening on %s", addr)
	return s.router.Run(addr)
}

// ServeHTTP lets the server be used directly as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("%s %s %d %s [%s]", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Millisecond), c.GetString("request_id"))
	}
}

// GET /api/persons
func (s *Server) listPersons(c *gin.Context) {
	persons, err := s.svc.Persons()
	if err != nil {
		s.fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(persons))
	for _, p := range persons {
		items = append(items, gin.H{
			"id":           p.ID,
			"name":         p.Name,
			"report_month": p.ReportMonth,
			"status":       p.Status,
		})
	}
	c.JSON(http.StatusOK, gin.H{"persons": items})
}

// GET /api/persons/:id/periodic-report
func (s *Server) periodicReport(c *gin.Context) {
	doc, err := s.svc.PeriodicReport(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if doc.Result != nil && doc.Result.BankDropped > 0 {
		c.Header("X-Bank-Rows-Dropped", fmt.Sprint(doc.Result.BankDropped))
	}
	sendFile(c, doc)
}

// POST /api/persons/:id/fill (multipart field "template")
func (s *Server) fillTemplate(c *gin.Context) {
	fh, err := c.FormFile("template")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "テンプレートファイルが添付されていません"})
		return
	}
	if fh.Size > maxTemplateSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "テンプレートファイルが大きすぎます"})
		return
	}

	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".xlsx", ".xlsm", ".docx":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "対応していないテンプレート形式です"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, err)
		return
	}

	doc, err := s.svc.FillTemplate(c.Param("id"), fh.Filename, data)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.fail(c, err)
			return
		}
		logger.Warn("fill %s for %s: %v", fh.Filename, c.Param("id"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "テンプレートを処理できません"})
		return
	}
	sendFile(c, doc)
}

// fail maps service errors onto status codes
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "対象者が見つかりません"})
	case errors.Is(err, report.ErrTemplateNotFound):
		// the wrapped error names the server-side path; only the log gets it
		logger.Error("template: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": report.ErrTemplateNotFound.Error()})
	case errors.Is(err, report.ErrTemplateUnreadable):
		logger.Error("template: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": report.ErrTemplateUnreadable.Error()})
	default:
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "内部エラーが発生しました"})
	}
}

func sendFile(c *gin.Context, doc *service.Document) {
	mime := mimeXLSX
	if strings.EqualFold(filepath.Ext(doc.FileName), ".docx") {
		mime = mimeDOCX
	}
	c.Header("Content-Disposition", contentDisposition(doc.FileName))
	c.Data(http.StatusOK, mime, doc.Data)
}

// contentDisposition keeps an ASCII fallback name and the UTF-8 name per RFC 6266
func contentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename="report%s"; filename*=UTF-8''%s`,
		filepath.Ext(name), url.PathEscape(name))
}
