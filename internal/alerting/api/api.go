// Package api exposes the read-only administrative surface. It reads
// stored state and history; it never mutates anything the scheduler
// owns.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/novesfi/canton-sentinel/internal/alerting/history"
	"github.com/novesfi/canton-sentinel/internal/alerting/registry"
	"github.com/novesfi/canton-sentinel/internal/alerting/state"
)

type Api struct {
	instances []*registry.Instance
	store     state.Store
	hist      *history.Writer
}

func New(router *gin.Engine, instances []*registry.Instance, store state.Store, hist *history.Writer) *Api {
	api := &Api{instances: instances, store: store, hist: hist}
	api.setupRouters(router)
	return api
}

func (a *Api) setupRouters(router *gin.Engine) {
	router.GET("/healthz", a.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/v1/alerts", a.listAlerts)
	router.GET("/v1/snapshots", a.listSnapshots)
}

func (a *Api) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type alertView struct {
	Family   string `json:"family"`
	Index    int    `json:"index,omitempty"`
	Name     string `json:"name"`
	Interval string `json:"interval"`
	Status   string `json:"status"`
}

func (a *Api) listAlerts(c *gin.Context) {
	out := make([]alertView, 0, len(a.instances))
	for _, inst := range a.instances {
		v := alertView{
			Family:   inst.ID.Family,
			Index:    inst.ID.Index,
			Name:     inst.Name,
			Interval: inst.Interval.String(),
			Status:   string(state.StatusNormal),
		}
		if rec, found, err := a.store.Get(c.Request.Context(), inst.ID); err == nil && found {
			v.Status = string(rec.Status)
		}
		out = append(out, v)
	}
	c.JSON(http.StatusOK, gin.H{"alerts": out})
}

func (a *Api) listSnapshots(c *gin.Context) {
	family := c.Query("family")
	if family == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "family is required"})
		return
	}
	index, _ := strconv.Atoi(c.DefaultQuery("index", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := a.hist.Recent(c.Request.Context(), family, index, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": rows})
}
