package web

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/jpillora/requestlog"

	hpshare "github.com/hostpulse/hostpulse/share"
	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/share/ws"
)

const maxHeaderBytes = 1 << 20

// APIListener is the HTTP face of the web process: charts, status JSON and
// the live sample feed.
type APIListener struct {
	*logger.Logger
	*Server

	router            *mux.Router
	httpServer        *hpshare.HTTPServer
	requestLogOptions *requestlog.Options
	accessLogFile     io.WriteCloser
	liveWS            *ws.WebSocketCache
}

func NewAPIListener(server *Server) (*APIListener, error) {
	al := &APIListener{
		Server: server,
		Logger: server.log.Fork("api-listener"),
		httpServer: hpshare.NewHTTPServer(
			maxHeaderBytes,
			server.log,
			hpshare.WithTLS(server.conf.Web.CertFile, server.conf.Web.KeyFile, nil),
		),
		requestLogOptions: initRequestLogOptions(&server.conf.Logging),
		liveWS:            ws.NewWebSocketCache(),
	}

	if name := server.conf.Web.AccessLogFile; name != "" {
		accessLogFile, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		al.accessLogFile = accessLogFile
	}

	al.initRouter()
	return al, nil
}

func (al *APIListener) Start(addr string) error {
	al.Infof("API listening on %s...", addr)
	return al.httpServer.GoListenAndServe(addr, al.router)
}

// Addr returns the bound listen address, which differs from the configured
// one when an ephemeral port was requested.
func (al *APIListener) Addr() string {
	return al.httpServer.Addr()
}

func (al *APIListener) Wait() error {
	if al.httpServer == nil {
		return nil
	}
	return al.httpServer.Wait()
}

func (al *APIListener) Close() error {
	closers := []hpshare.CallFn{al.liveWS.CloseConnections}
	if al.httpServer != nil {
		closers = append(closers, al.httpServer.Close)
	}
	if al.accessLogFile != nil {
		closers = append(closers, al.accessLogFile.Close)
	}
	return hpshare.SyncCall(closers...)
}

func initRequestLogOptions(l *config.LogConfig) *requestlog.Options {
	o := requestlog.DefaultOptions
	if l.LogOutput.File != nil {
		o.Writer = l.LogOutput.File
	}
	o.Filter = func(r *http.Request, code int, duration time.Duration, size int64) bool {
		return l.LogLevel == logger.LogLevelInfo || l.LogLevel == logger.LogLevelDebug
	}
	return &o
}
