package service

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/arcadeforge/scoreforge/pkgs/service/docs"
)

// Server wires the full HTTP surface: the score endpoints, job status,
// leaderboard, health, and a swagger UI mounted alongside the JSON API,
// all behind RequestMiddleware.
type Server struct {
	Port string
	// HardTimeout is the per-request failsafe deadline; the score
	// endpoints hold their response open up to this long, so the
	// server's read/write timeouts must sit above it.
	HardTimeout time.Duration

	SubmitScore http.Handler
	UnlockAll   http.Handler
	Jobs        http.Handler
	Leaderboard http.Handler
	Health      http.Handler
}

func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/submitscore", s.SubmitScore)
	mux.Handle("/api/v1/s3cr3tUnlockAll", s.UnlockAll)
	mux.Handle("/api/v1/jobs/", s.Jobs)
	mux.Handle("/api/v1/getleaderboard", s.Leaderboard)
	mux.Handle("/health", s.Health)

	swaggerHandler := httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)
	mux.Handle("/swagger/", swaggerHandler)
	return mux
}

// ListenAndServe blocks serving the wired mux behind RequestMiddleware,
// with read/write timeouts padded past HardTimeout so the server never
// cuts a long-polled submission off before its failsafe answers.
func (s *Server) ListenAndServe() error {
	timeout := s.HardTimeout + 15*time.Second
	srv := &http.Server{
		Addr:              ":" + s.Port,
		Handler:           RequestMiddleware(s.Mux()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	log.Infof("listening on :%s", s.Port)
	return srv.ListenAndServe()
}
