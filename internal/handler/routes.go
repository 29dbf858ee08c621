package handler

import "net/http"

// RouteInfo describes one API endpoint for the index listing.
type RouteInfo struct {
	Endpoint    string `json:"endpoint"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

// Routes returns the API index: every endpoint with a short description.
func (h *Handler) Routes(w http.ResponseWriter, r *http.Request) {
	routes := []RouteInfo{
		{"/emails/", "GET", "Returns an array of stored emails"},
		{"/emails/", "POST", "Stores an email and sends it to its recipient"},
		{"/emails/{id}/", "GET", "Returns a single email"},
		{"/emails/{id}/", "PUT", "Updates an email's subject or message"},
		{"/emails/{id}/", "DELETE", "Deletes an email"},
		{"/broadcast/send", "POST", "Sends a newsletter to a list of recipients"},
		{"/broadcast/logs", "GET", "Returns past broadcasts with delivery counts"},
		{"/subscribers/", "GET", "Returns the active subscriber list"},
		{"/subscribers/", "POST", "Adds or reactivates a subscriber"},
		{"/subscribers/{idOrEmail}/", "GET", "Returns a single subscriber"},
		{"/subscribers/{idOrEmail}/", "PUT", "Updates a subscriber"},
		{"/subscribers/{idOrEmail}/", "DELETE", "Unsubscribes a subscriber"},
	}
	writeJSON(w, http.StatusOK, routes)
}
