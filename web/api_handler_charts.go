package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/hostpulse/hostpulse/render"
	"github.com/hostpulse/hostpulse/store"
)

// handleGetChart handles GET /{window}/{metric}, serving the cached PNG.
func (al *APIListener) handleGetChart(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	window, err := store.ParseWindow(vars["window"])
	if err != nil {
		al.jsonErrorResponseWithTitle(w, http.StatusNotFound, err.Error())
		return
	}
	metric, err := render.ParseMetric(vars["metric"])
	if err != nil {
		al.jsonErrorResponseWithTitle(w, http.StatusNotFound, err.Error())
		return
	}

	png, err := al.cache.Get(render.CacheKey(window.String(), metric.String()))
	if err != nil {
		if errors.Is(err, render.ErrNoData) {
			al.jsonErrorResponseWithTitle(w, http.StatusNotFound,
				fmt.Sprintf("no data for %s/%s", window, metric))
			return
		}
		al.jsonErrorResponse(w, http.StatusInternalServerError, err)
		return
	}

	if widthStr := req.URL.Query().Get("w"); widthStr != "" {
		width, err := strconv.Atoi(widthStr)
		if err != nil || width < 0 {
			al.jsonErrorResponseWithTitle(w, http.StatusBadRequest,
				fmt.Sprintf("invalid width: %q", widthStr))
			return
		}
		png, err = render.ResizePNG(png, width)
		if err != nil {
			al.jsonErrorResponse(w, http.StatusInternalServerError, err)
			return
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(png); err != nil {
		al.Errorf("error writing chart: %s", err)
	}
}
