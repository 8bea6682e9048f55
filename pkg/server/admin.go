package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"objrepo/pkg/cluster"
	"objrepo/pkg/observability"
	"objrepo/pkg/registry"
)

type objectView struct {
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Language string    `json:"language"`
	Version  string    `json:"version"`
	Region   string    `json:"region"`
	LastSeen time.Time `json:"last_seen"`
}

// NewAdminRouter serves health, status, object listing and prometheus metrics.
func NewAdminRouter(node *cluster.Node, store *registry.Store, metricsPath string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": node.Uptime().String(),
		})
	})

	r.GET("/status", func(c *gin.Context) {
		leader, role := node.Status()
		c.JSON(http.StatusOK, gin.H{
			"node_id":        node.ID(),
			"role":           string(role),
			"leader":         leader,
			"uptime_seconds": node.UptimeSeconds(),
			"objects":        store.Len(),
			"ttl_seconds":    int64(store.TTL() / time.Second),
		})
	})

	r.GET("/objects", func(c *gin.Context) {
		objs := store.List()
		out := make([]objectView, 0, len(objs))
		for _, o := range objs {
			out = append(out, objectView(o))
		}
		c.JSON(http.StatusOK, out)
	})

	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	observability.RegisterMetrics()
	r.GET(metricsPath, gin.WrapH(promhttp.Handler()))

	return r
}
