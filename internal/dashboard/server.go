package dashboard

import (
	"context"
	"crypto/subtle"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/discovery"
	"github.com/leadscout/discovery-bot/internal/models"
	"github.com/leadscout/discovery-bot/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	exportLimit      = 10000
)

// Server exposes the read-only query surface and manual trigger endpoints.
type Server struct {
	config    *config.Config
	rules     config.Rules
	store     store.Store
	discovery *discovery.Service
}

// NewServer creates a dashboard server.
func NewServer(cfg *config.Config, rules config.Rules, st store.Store, discoverySvc *discovery.Service) *Server {
	return &Server{
		config:    cfg,
		rules:     rules,
		store:     st,
		discovery: discoverySvc,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	router.HandleFunc("/api/businesses", s.handleBusinesses).Methods("GET")
	router.HandleFunc("/api/statistics", s.handleStatistics).Methods("GET")
	router.HandleFunc("/api/categories", s.handleCategories).Methods("GET")
	router.HandleFunc("/api/export/csv", s.handleExportCSV).Methods("GET")
	router.HandleFunc("/api/trigger/{source}", s.requireAuth(s.handleTrigger)).Methods("POST")

	return router
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.config.DashboardAuthEnabled {
			next(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.DashboardUsername)) == 1
		passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.DashboardPassword)) == 1

		if !ok || !usernameMatch || !passwordMatch {
			w.Header().Set("WWW-Authenticate", `Basic realm="discovery-bot"`)
			writeError(w, http.StatusUnauthorized, "incorrect credentials")
			return
		}

		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.discovery.GetMetrics()))
}

func (s *Server) handleBusinesses(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxListLimit {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
			return
		}
		limit = parsed
	}

	businesses, err := s.store.RecentBusinesses(r.Context(), limit,
		r.URL.Query().Get("platform"), r.URL.Query().Get("category"))
	if err != nil {
		logrus.Errorf("Error fetching businesses: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch businesses")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(businesses),
		"data":    businesses,
	})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Statistics(r.Context())
	if err != nil {
		logrus.Errorf("Error fetching statistics: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch statistics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    stats,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	type category struct {
		Name     string          `json:"name"`
		Keywords []string        `json:"keywords"`
		Priority models.Priority `json:"priority"`
	}

	var categories []category
	for name, rule := range s.rules.Categories {
		categories = append(categories, category{
			Name:     name,
			Keywords: rule.Keywords,
			Priority: rule.Priority,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    categories,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	businesses, err := s.store.RecentBusinesses(r.Context(), exportLimit, "", "")
	if err != nil {
		logrus.Errorf("Error exporting CSV: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to export businesses")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="businesses_%s.csv"`, time.Now().Format("20060102_150405")))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{
		"business_name", "platform", "page_url", "category", "location",
		"phone", "email", "confidence_score", "priority", "discovered_at", "notified",
	})

	for _, b := range businesses {
		writer.Write([]string{
			b.BusinessName, string(b.Platform), b.PageURL, b.Category, b.Location,
			b.Phone, b.Email, strconv.Itoa(b.ConfidenceScore), string(b.Priority),
			b.DiscoveredAt.Format(time.RFC3339), strconv.FormatBool(b.Notified),
		})
	}
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	platform := models.Platform(mux.Vars(r)["source"])

	switch platform {
	case models.PlatformFacebook, models.PlatformLinkedIn, models.PlatformGoogleSourced:
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown source: %s", platform))
		return
	}

	go func() {
		if _, _, err := s.discovery.RunSource(context.Background(), platform); err != nil {
			logrus.Errorf("Manual %s discovery trigger failed: %v", platform, err)
		}
	}()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%s discovery triggered", platform),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
