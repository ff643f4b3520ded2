package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *StatusServer) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"uptime":    time.Since(s.appeared).String(),
			"component": "courseselect",
			"version":   version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Ready once the websocket is up; a disconnected client cannot act.
	s.router.GET("/ready", func(c *gin.Context) {
		snap := s.source.Snapshot()
		status := http.StatusOK
		if !snap.Connected {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready":           snap.Connected,
			"enrollment_open": snap.EnrollmentOpen,
			"uptime":          time.Since(s.appeared).String(),
			"version":         version,
		})
	})

	s.router.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.source.Snapshot())
	})

	s.router.GET("/state/courses/:course", func(c *gin.Context) {
		course, ok := s.source.Snapshot().Course(c.Param("course"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		c.JSON(http.StatusOK, course)
	})

	s.router.GET("/state/confirmed", func(c *gin.Context) {
		snap := s.source.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"confirmed": snap.Confirmed,
			"groups":    snap.ConfirmedView,
		})
	})
}
