// Package admin exposes the HTTP management surface of a solo instance.
//
// Routes:
//   - POST /management/shutdown hands leadership over by calling Release
//   - GET /management/leader reports the local view of the lease
//   - GET /metrics serves Prometheus metrics when a gatherer is configured
package admin
