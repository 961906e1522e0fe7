package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"complyq/internal/repository"
	"complyq/internal/service"
	"complyq/internal/transport/rest/handler"
	"complyq/internal/transport/rest/middleware"
	"complyq/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	AssessmentService *service.AssessmentService
	Frameworks        repository.FrameworkRepository
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	frameworkHandler := handler.NewFrameworkHandler(c.Frameworks)
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentService, c.AuthService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/assessments/start", assessmentHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/assessments/resume", assessmentHandler.Resume).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/dashboard", wsHandler.DashboardWS).Methods("GET")
	v1.HandleFunc("/ws/assessments/{assessmentId}", wsHandler.RespondentWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes (require admin auth)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/frameworks", frameworkHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/frameworks", frameworkHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/frameworks/{frameworkId}", frameworkHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/frameworks/{frameworkId}", frameworkHandler.Update).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/frameworks/{frameworkId}", frameworkHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/assessments/{assessmentId}/result", assessmentHandler.Result).Methods("GET", "OPTIONS")

	// Respondent routes (require respondent auth; assessment id comes from the token)
	respondentRoutes := v1.NewRoute().Subrouter()
	respondentRoutes.Use(authMW.RequireRespondent)

	respondentRoutes.HandleFunc("/assessments/current/answers", assessmentHandler.Answer).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/current/next", assessmentHandler.Next).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/current/previous", assessmentHandler.Previous).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/current/jump", assessmentHandler.Jump).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/current/progress", assessmentHandler.Progress).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/current/save", assessmentHandler.Save).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/current/complete", assessmentHandler.Complete).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/current", assessmentHandler.Abandon).Methods("DELETE", "OPTIONS")
	respondentRoutes.HandleFunc("/assessments/current/questions/{questionId}/help", assessmentHandler.Help).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
