package main

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// StatusResponse is the data model sent when status endpoint is called.
type StatusResponse struct {
	RequestID string `json:"requestid"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

var statusMessages = map[string]string{
	RoleEditor:  "Hello. Books editor is available. Enjoy :)",
	RoleBackend: "Hello. Books service is available. Enjoy :)",
}

// Status provides basics details about the application to the public users.
func (c *Core) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	resp := StatusResponse{
		RequestID: requestID,
		Status:    fmt.Sprintf("up & running since %.0f mins", c.clock.Now().Sub(c.stats.started).Minutes()),
		Message:   statusMessages[c.config.Role],
	}
	if err := WriteResponse(r.Context(), w, http.StatusOK, resp); err != nil {
		c.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetStatistics provides useful details about the application to the internal ops users.
func (c *Core) GetStatistics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	c.stats.mu.RLock()
	status := make(map[int]uint64, len(c.stats.status))
	for code, count := range c.stats.status {
		status[code] = count
	}
	c.stats.mu.RUnlock()

	err := WriteResponse(r.Context(), w, http.StatusOK,
		map[string]interface{}{
			"requestid":     requestID,
			"app.role":      c.config.Role,
			"app.version":   c.stats.version,
			"app.container": c.stats.container,
			"app.platform":  c.stats.platform,
			"go.version":    c.stats.runtime,
			"called":        atomic.LoadUint64(&c.stats.called),
			"started":       c.stats.started.Format(time.RFC1123),
			"uptime":        fmt.Sprintf("%.0f mins", c.clock.Now().Sub(c.stats.started).Minutes()),
			"status":        status,
		},
	)
	if err != nil {
		c.logger.Error("failed to send statistics response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetConfigs serves current in-use configurations/settings. Secrets are masked.
func (c *Core) GetConfigs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	config := *c.config
	if config.Redis.Password != "" {
		config.Redis.Password = "***"
	}
	if err := WriteResponse(r.Context(), w, http.StatusOK, map[string]interface{}{"configs": config}); err != nil {
		c.logger.Error("failed to send settings response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// NotFound answers unknown routes with a json body naming the route.
// It runs outside the middlewares so the request id is generated here.
func (c *Core) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := c.ids.Generate(RequestIDPrefix)
		c.recordStatus(http.StatusNotFound)
		err := WriteResponse(r.Context(), w, http.StatusNotFound,
			map[string]string{
				"requestid": requestID,
				"message":   "route does not exist",
				"path":      r.Method + " " + r.URL.Path,
			},
		)
		if err != nil {
			c.logger.Error("failed to send not found response", zap.String("request.id", requestID), zap.Error(err))
		}
	})
}
