package router

import (
	"net/http"

	"github.com/ticketmail/ticketmail/internal/handler"
	"github.com/ticketmail/ticketmail/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	// API index
	mux.HandleFunc("GET /api/{$}", h.Routes)

	// Email routes
	mux.HandleFunc("GET /emails/{$}", h.ListEmails)
	mux.HandleFunc("POST /emails/{$}", h.CreateEmail)
	mux.HandleFunc("GET /emails/{id}/{$}", h.GetEmail)
	mux.HandleFunc("PUT /emails/{id}/{$}", h.UpdateEmail)
	mux.HandleFunc("DELETE /emails/{id}/{$}", h.DeleteEmail)

	// Broadcast routes
	mux.HandleFunc("POST /broadcast/send", h.SendBroadcast)
	mux.HandleFunc("GET /broadcast/logs", h.ListBroadcastLogs)

	// Subscriber routes
	mux.HandleFunc("GET /subscribers/{$}", h.ListSubscribers)
	mux.HandleFunc("POST /subscribers/{$}", h.CreateSubscriber)
	mux.HandleFunc("GET /subscribers/{idOrEmail}/{$}", h.GetSubscriber)
	mux.HandleFunc("PUT /subscribers/{idOrEmail}/{$}", h.UpdateSubscriber)
	mux.HandleFunc("DELETE /subscribers/{idOrEmail}/{$}", h.DeleteSubscriber)

	// Apply middleware stack
	var root http.Handler = mux

	// CORS for the configured frontends
	root = mw.CORS(allowedOrigins)(root)

	// Security headers
	root = mw.SecurityHeaders(root)

	// Request logging
	root = mw.Logger(root)

	// Timing
	root = mw.Timing(root)

	// Request ID
	root = mw.RequestID(root)

	// Panic recovery (outermost)
	root = mw.Recover(root)

	return root
}
