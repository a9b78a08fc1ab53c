package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"realestate-scraper/models"
	"realestate-scraper/scraper"
	"realestate-scraper/services"
	"realestate-scraper/utils"
)

// Runner triggers a scrape run on demand.
type Runner interface {
	RunOnce(ctx context.Context) (*models.ScrapeReport, error)
}

// ListingSource reads the stored listings back for reporting.
type ListingSource interface {
	FetchAll(ctx context.Context) ([]*models.Listing, error)
}

// Server exposes the scrape trigger and insights over HTTP.
type Server struct {
	engine   *gin.Engine
	runner   Runner
	source   ListingSource
	insights *services.InsightService
	logger   *utils.Logger
}

func New(runner Runner, source ListingSource, insights *services.InsightService, logger *utils.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:   gin.New(),
		runner:   runner,
		source:   source,
		insights: insights,
		logger:   logger,
	}

	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.POST("/scrape", s.handleScrape)
		api.GET("/insights", s.handleInsights)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleScrape(c *gin.Context) {
	s.logger.Info("Scrape triggered via HTTP")

	// The run outlives the request: a client disconnect or proxy timeout
	// must not cancel a scrape already in flight.
	report, err := s.runner.RunOnce(context.Background())
	if err != nil {
		if errors.Is(err, scraper.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "A scrape run is already in progress",
			})
			return
		}
		s.logger.Error("Scrape run failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to scrape listings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Scraped %d listings, wrote %d (skipped %d)",
			report.RawCount, report.Written, report.SkippedCount),
	})
}

func (s *Server) handleInsights(c *gin.Context) {
	listings, err := s.source.FetchAll(c.Request.Context())
	if err != nil {
		s.logger.Error("Fetching listings for insights failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load listings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"insights": s.insights.Generate(listings),
	})
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("HTTP server listening on %s", addr)
	return s.engine.Run(addr)
}

// Handler exposes the underlying router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
