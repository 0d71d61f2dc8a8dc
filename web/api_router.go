package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jpillora/requestlog"
	"github.com/rs/cors"

	"github.com/hostpulse/hostpulse/share/logger"
)

func (al *APIListener) initRouter() {
	r := mux.NewRouter()

	r.HandleFunc("/uptime", al.handleGetUptime).Methods(http.MethodGet)
	r.HandleFunc("/config", al.handleGetConfig).Methods(http.MethodGet)
	r.HandleFunc("/status", al.handleGetStatus).Methods(http.MethodGet)
	r.HandleFunc("/ws/live", al.handleLiveWS).Methods(http.MethodGet)

	// chart route last, it swallows every two-segment path
	r.HandleFunc("/{window}/{metric}", al.handleGetChart).Methods(http.MethodGet)

	if docRoot := al.conf.Web.DocRoot; docRoot != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(docRoot)))
	}

	if al.requestLogOptions != nil {
		r.Use(func(next http.Handler) http.Handler { return requestlog.WrapWith(next, *al.requestLogOptions) })
	}
	if al.accessLogFile != nil {
		r.Use(func(next http.Handler) http.Handler { return handlers.CombinedLoggingHandler(al.accessLogFile, next) })
	}
	if len(al.conf.Web.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: al.conf.Web.CORSOrigins,
			AllowedMethods: []string{http.MethodHead, http.MethodGet},
			AllowedHeaders: []string{"*"},
		}).Handler)
	}
	r.Use(handlers.CompressHandler)
	r.Use(handlers.RecoveryHandler(
		handlers.PrintRecoveryStack(true),
		handlers.RecoveryLogger(newRecoveryLogger(al.Logger)),
	))

	al.router = r
}

type recoveryLogger struct {
	*logger.Logger
}

func newRecoveryLogger(l *logger.Logger) *recoveryLogger {
	return &recoveryLogger{
		Logger: l,
	}
}

func (l *recoveryLogger) Println(v ...interface{}) {
	l.Errorf(fmt.Sprintln(v...))
}
