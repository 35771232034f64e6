package router

import (
	"net/http"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/handler"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func New(shiftHandler *handler.ShiftHandler, logger *zap.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(logger))
	router.Use(cors)

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/shift", shiftHandler.GetShift)
		r.Post("/shift/open", shiftHandler.OpenShift)
		r.Post("/shift/finish", shiftHandler.FinishShift)
		r.Post("/shift/reopen", shiftHandler.ReOpenShift)

		r.Post("/worklogs/open", shiftHandler.OpenWorkLog)
		r.Post("/worklogs/finish", shiftHandler.FinishWorkLog)
		r.Get("/worklog-types", shiftHandler.GetWorkLogTypes)

		r.Get("/report", shiftHandler.GetReport)
		r.Post("/sync", shiftHandler.Sync)
	})

	return router
}

// requestLogger logs every request once it has been served
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}

// cors lets local tools running in a browser reach the API
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
