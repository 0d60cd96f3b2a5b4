package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JakeFAU/dinodash/internal/dataset"
	uuidgen "github.com/JakeFAU/dinodash/internal/id/uuid"
	"github.com/JakeFAU/dinodash/internal/insights"
)

const (
	defaultTopNamers  = 10
	defaultTopCarnies = 10
)

var defaultRequestID = uuidgen.New().RequestID

type dinosaurList struct {
	Count     int              `json:"count"`
	Dinosaurs []dataset.Record `json:"dinosaurs"`
}

func (s *Server) listDinosaurs(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs := insights.Filter(s.table, q)
	writeJSON(w, http.StatusOK, dinosaurList{Count: len(recs), Dinosaurs: recs})
}

func parseQuery(v url.Values) (insights.Query, error) {
	q := insights.Query{
		Name:    strings.TrimSpace(v.Get("name")),
		Group:   strings.TrimSpace(v.Get("group")),
		Period:  strings.TrimSpace(v.Get("period")),
		LivedIn: strings.TrimSpace(v.Get("lived_in")),
	}
	var err error
	if q.MinLength, err = optionalFloat(v, "min_length"); err != nil {
		return insights.Query{}, err
	}
	if q.MaxLength, err = optionalFloat(v, "max_length"); err != nil {
		return insights.Query{}, err
	}
	if q.MinLength != nil && q.MaxLength != nil && *q.MinLength > *q.MaxLength {
		return insights.Query{}, errors.New("min_length must not exceed max_length")
	}
	return q, nil
}

func optionalFloat(v url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return nil, fmt.Errorf("%s must be a non-negative number", key)
	}
	return &f, nil
}

func optionalInt(v url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func (s *Server) randomDinosaur(w http.ResponseWriter, _ *http.Request) {
	rec, ok := insights.Random(s.table, s.intn)
	if !ok {
		writeError(w, http.StatusNotFound, "no dinosaurs loaded")
		return
	}
	writeJSON(w, http.StatusOK, insights.Card(rec))
}

func (s *Server) getDinosaur(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, ok := s.table.Find(name)
	if !ok {
		rec, ok = s.table.Find(strings.ToLower(name))
	}
	if !ok {
		writeError(w, http.StatusNotFound, "dinosaur not found")
		return
	}
	writeJSON(w, http.StatusOK, insights.Card(rec))
}

func (s *Server) summary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, insights.Summary(s.table))
}

func (s *Server) timeline(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, insights.Timeline(s.table))
}

func (s *Server) groups(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"groups": insights.Groups(s.table)})
}

func (s *Server) group(w http.ResponseWriter, r *http.Request) {
	g, ok := insights.Group(s.table, chi.URLParam(r, "group"))
	if !ok {
		writeError(w, http.StatusNotFound, "group not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type sizesResponse struct {
	insights.SizeView
	TopLargeTheropods []dataset.Record `json:"top_large_theropods"`
	Size              *float64         `json:"size,omitempty"`
	BySize            []dataset.Record `json:"by_size,omitempty"`
}

func (s *Server) sizes(w http.ResponseWriter, r *http.Request) {
	size, err := optionalFloat(r.URL.Query(), "size")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := sizesResponse{
		SizeView:          insights.Sizes(s.table),
		TopLargeTheropods: insights.TopLargeTheropods(s.table, defaultTopCarnies),
	}
	if size != nil {
		resp.Size = size
		resp.BySize = insights.BySize(s.table, *size)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) discoveries(w http.ResponseWriter, r *http.Request) {
	top, err := optionalInt(r.URL.Query(), "top", defaultTopNamers)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, insights.Discoveries(s.table, top))
}

func (s *Server) locations(w http.ResponseWriter, r *http.Request) {
	era := r.URL.Query().Get("era")
	counts, err := insights.Locations(s.table, era)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"era": era, "countries": len(counts), "locations": counts})
}

func (s *Server) describe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"shape": dataset.DescribeTable(s.table),
		"stats": insights.Describe(s.table),
	})
}
