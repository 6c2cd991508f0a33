package server

import "net/http"

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /processes", s.handleProcesses)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /categories/time", s.handleCategoryTime)
	mux.HandleFunc("GET /usage", s.handleTotalUsage)
	mux.HandleFunc("GET /ontime", s.handleOnTime)
	mux.HandleFunc("GET /uptime", s.handleUptime)
	mux.HandleFunc("POST /categories", s.handleSetCategory)

	return mux
}
