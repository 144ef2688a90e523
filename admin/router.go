package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arloliu/solo/internal/logging"
	"github.com/arloliu/solo/types"
)

// Controller is the part of the election manager the admin routes drive.
type Controller interface {
	Release() error
	State() types.State
	Identity() types.Identity
}

// LeaderStatus is the body of GET /management/leader.
type LeaderStatus struct {
	LeaseID       string     `json:"leaseId"`
	Token         string     `json:"token"`
	State         string     `json:"state"`
	Leader        bool       `json:"leader"`
	LastHeartbeat *time.Time `json:"lastHeartbeat,omitempty"`
}

type options struct {
	logger   types.Logger
	gatherer prometheus.Gatherer
}

// Option configures the router.
type Option func(*options)

// WithLogger sets the logger used by the handlers.
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithGatherer mounts GET /metrics backed by gatherer.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(o *options) {
		o.gatherer = gatherer
	}
}

type handlers struct {
	ctrl   Controller
	logger types.Logger
}

// NewRouter builds the gin engine serving the management routes for ctrl.
func NewRouter(ctrl Controller, opts ...Option) *gin.Engine {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	h := &handlers{ctrl: ctrl, logger: o.logger}

	r := gin.New()
	r.Use(gin.Recovery())

	mgmt := r.Group("/management")
	mgmt.POST("/shutdown", h.shutdown)
	mgmt.GET("/leader", h.leader)

	if o.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

func (h *handlers) shutdown(c *gin.Context) {
	id := h.ctrl.Identity()

	if err := h.ctrl.Release(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrNotStarted) {
			status = http.StatusConflict
		}
		h.logger.Warn("administrative release failed", "lease_id", id.ID, "error", err)
		c.JSON(status, gin.H{"error": err.Error()})

		return
	}

	h.logger.Info("lease released by administrative request", "lease_id", id.ID, "token", id.Token)
	c.JSON(http.StatusOK, gin.H{"state": h.ctrl.State().String()})
}

func (h *handlers) leader(c *gin.Context) {
	id := h.ctrl.Identity()
	state := h.ctrl.State()

	status := LeaderStatus{
		LeaseID: id.ID,
		Token:   id.Token,
		State:   state.String(),
		Leader:  state == types.StateLeader,
	}
	if !id.LastHeartbeat.IsZero() {
		hb := id.LastHeartbeat
		status.LastHeartbeat = &hb
	}

	c.JSON(http.StatusOK, status)
}
