package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupOpsRoutes injects the status and internal operations endpoints.
func (c *Core) SetupOpsRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/status", m.public(c.Status))
	if c.config.OpsEndpointsEnable {
		router.GET("/ops/configs", m.ops(c.GetConfigs))
		router.GET("/ops/stats", m.ops(c.GetStatistics))
	}
	return router
}
