package api

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/dataset"
	"github.com/JakeFAU/dinodash/internal/metrics"
)

type renderedExport struct {
	body []byte
	etag string
}

// renderExports encodes the table once per process; the table never changes.
func (s *Server) renderExports() (map[dataset.Format]renderedExport, error) {
	s.exportOnce.Do(func() {
		out := make(map[dataset.Format]renderedExport, len(dataset.Formats))
		for _, f := range dataset.Formats {
			body, err := dataset.Render(s.table, f)
			if err != nil {
				s.exportErr = fmt.Errorf("render %s export: %w", f, err)
				return
			}
			out[f] = renderedExport{body: body, etag: s.hasher.ETag(body)}
		}
		s.exports = out
	})
	return s.exports, s.exportErr
}

func (s *Server) export(format dataset.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exports, err := s.renderExports()
		if err != nil {
			s.logger.Error("export failed", zap.String("format", string(format)), zap.Error(err))
			metrics.ObserveExport(string(format), "error", 0)
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		exp := exports[format]
		w.Header().Set("ETag", exp.etag)
		if etagMatches(r.Header.Get("If-None-Match"), exp.etag) {
			metrics.ObserveExport(string(format), "not_modified", 0)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(exp.body); err != nil {
			s.logger.Warn("export write failed", zap.Error(err))
			return
		}
		metrics.ObserveExport(string(format), "served", len(exp.body))
	}
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
