// Package web serves the JSON API and the printable calendar pages.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"shiftcal/internal/calendar"
	"shiftcal/internal/color"
	"shiftcal/internal/config"
	"shiftcal/internal/ics"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
	"shiftcal/internal/pipeline"
	"shiftcal/internal/render"
	"shiftcal/internal/store"
)

// snapshotTTL bounds how stale a served snapshot may be before a request
// triggers a re-fetch. The serve loop's cron refresh is the primary driver;
// this is only a floor for on-demand traffic.
const snapshotTTL = 30 * time.Second

// Server exposes the reconstructed shift calendar over HTTP.
type Server struct {
	cfg         *config.Config
	st          *store.Store
	fetcher     *ics.Fetcher
	renderer    *render.Renderer
	mux         *http.ServeMux
	previewPath string

	snapMu sync.RWMutex
	snap   *pipeline.Snapshot
	snapAt time.Time
}

// NewServer constructs a Server around the given config and store. cacheDir
// is the server's cache root: the ICS fetch cache lives under its ics/
// subdirectory and the captured preview PNG next to it.
func NewServer(cfg *config.Config, st *store.Store, cacheDir string) (*Server, error) {
	if cacheDir == "" {
		cacheDir = "./cache"
	}

	renderer, err := render.New(render.Options{
		Location:    cfg.Location(),
		TimeFormat:  cfg.TimeFormat,
		PaperSize:   cfg.PaperSize,
		Orientation: cfg.Orientation,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:         cfg,
		st:          st,
		fetcher:     ics.NewFetcher(filepath.Join(cacheDir, "ics")),
		renderer:    renderer,
		mux:         http.NewServeMux(),
		previewPath: filepath.Join(cacheDir, "preview.png"),
	}
	s.registerRoutes()
	return s, nil
}

// PreviewPath is where /preview.png looks for the last captured PNG; the
// serve loop's capture step writes there.
func (s *Server) PreviewPath() string {
	return s.previewPath
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/month", s.handleMonth)
	s.mux.HandleFunc("/api/week", s.handleWeek)
	s.mux.HandleFunc("/api/people", s.handlePeople)
	s.mux.HandleFunc("/api/colors", s.handleColors)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
	s.mux.HandleFunc("/calendar", s.handleCalendarPage)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
}

// handlePreview serves the most recent captured PNG from disk. ServeFile
// answers 404 while no capture has been written yet.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.previewPath)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Refresh fetches every configured ICS source, caches the bodies, and
// rebuilds the pipeline snapshot from scratch. Recomputation is always full;
// nothing is diffed against the previous snapshot.
func (s *Server) Refresh(ctx context.Context) error {
	snap, err := s.buildSnapshot(ctx)
	if err != nil {
		return err
	}

	s.snapMu.Lock()
	s.snap = snap
	s.snapAt = time.Now()
	s.snapMu.Unlock()
	return nil
}

// snapshot returns the current pipeline snapshot, rebuilding it when stale
// or absent.
func (s *Server) snapshot(ctx context.Context) (*pipeline.Snapshot, error) {
	s.snapMu.RLock()
	snap, at := s.snap, s.snapAt
	s.snapMu.RUnlock()

	if snap != nil && time.Since(at) < snapshotTTL {
		return snap, nil
	}
	if err := s.Refresh(ctx); err != nil {
		// Serve the stale snapshot over nothing.
		if snap != nil {
			appLog.Error("refresh failed; serving stale snapshot", err)
			return snap, nil
		}
		return nil, err
	}

	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap, nil
}

func (s *Server) buildSnapshot(ctx context.Context) (*pipeline.Snapshot, error) {
	sources := make([]ics.Source, 0, len(s.cfg.ICS))
	for _, csrc := range s.cfg.ICS {
		id := csrc.ID
		if id == "" {
			if csrc.Name != "" {
				id = csrc.Name
			} else {
				id = csrc.URL
			}
		}
		sources = append(sources, ics.Source{ID: id, URL: csrc.URL})
	}

	var docs []pipeline.Document
	for _, src := range sources {
		if src.URL != "" {
			res, err := s.fetcher.FetchOne(ctx, src)
			if err == nil {
				if !res.FromCache {
					if _, serr := s.st.SaveImport(ctx, src.ID, res.Body); serr != nil {
						appLog.Error("failed to cache import", serr, "id", src.ID)
					} else if perr := s.st.PruneImports(ctx, src.ID, 3); perr != nil {
						appLog.Error("failed to prune imports", perr, "id", src.ID)
					}
				}
				docs = append(docs, pipeline.Document{Source: res.Source, Body: res.Body})
				continue
			}
			appLog.Error("fetch failed; trying cached import", err, "id", src.ID)
		}

		// No URL or fetch failed: fall back to the last cached import.
		imp, err := s.st.LatestImport(ctx, src.ID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				appLog.Error("cached import lookup failed", err, "id", src.ID)
			}
			continue
		}
		docs = append(docs, pipeline.Document{Source: src, Body: imp.Body})
	}

	if len(docs) == 0 {
		return nil, errors.New("no calendar documents available")
	}

	assignments, err := s.st.ColorAssignments(ctx)
	if err != nil {
		return nil, err
	}

	return pipeline.Run(docs, pipeline.Options{
		Location:         s.cfg.Location(),
		ColorAssignments: assignments,
	})
}

type shiftDTO struct {
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Location  string    `json:"location,omitempty"`
	People    string    `json:"people"`
	Color     string    `json:"color"`
	TextColor string    `json:"text_color"`
}

type dayDTO struct {
	Date      string     `json:"date"`
	IsToday   bool       `json:"is_today"`
	IsWeekend bool       `json:"is_weekend"`
	Shifts    []shiftDTO `json:"shifts"`
}

type weekDTO struct {
	WeekNumber int      `json:"week_number"`
	Days       []dayDTO `json:"days"`
}

type monthResponse struct {
	Year     int       `json:"year"`
	Month    int       `json:"month"`
	Timezone string    `json:"timezone"`
	Weeks    []weekDTO `json:"weeks"`
}

// handleMonth returns the month grid: every Sunday-start week overlapping
// the month, per-day shifts in stacking order.
//
// GET /api/month?year=2026&month=9
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := s.cfg.Location()
	now := time.Now().In(loc)

	q := r.URL.Query()
	year := parseIntDefault(q.Get("year"), now.Year())
	month := time.Month(parseIntDefault(q.Get("month"), int(now.Month())))
	if month < time.January || month > time.December {
		writeError(w, http.StatusBadRequest, "month out of range")
		return
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		appLog.Error("api month: snapshot failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}

	weeks := calendar.BuildMonth(year, month, snap.Merged, now, loc)

	resp := monthResponse{
		Year:     year,
		Month:    int(month),
		Timezone: loc.String(),
	}
	for _, week := range weeks {
		resp.Weeks = append(resp.Weeks, weekDTO{
			WeekNumber: week.WeekNumber,
			Days:       daysToDTO(week.Days),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type positionDTO struct {
	Shift        shiftDTO `json:"shift"`
	RowStart     int      `json:"row_start"`
	RowEnd       int      `json:"row_end"`
	ZIndex       int      `json:"z_index"`
	IndexInGroup int      `json:"index_in_group"`
	GroupSize    int      `json:"group_size"`
}

type weekResponse struct {
	Timezone  string          `json:"timezone"`
	StartHour int             `json:"start_hour"`
	EndHour   int             `json:"end_hour"`
	Days      []dayDTO        `json:"days"`
	Positions [][]positionDTO `json:"positions"`
}

// handleWeek returns the Sunday-start week containing the requested date,
// plus the stacked time-grid positions per day.
//
// GET /api/week?date=2026-09-01
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := s.cfg.Location()
	now := time.Now().In(loc)

	date := now
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		appLog.Error("api week: snapshot failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}

	days := calendar.BuildWeek(date, snap.Merged, now)

	startHour, endHour, ok := calendar.DetectTimeRange(days)
	if !ok {
		startHour, endHour = s.cfg.DayStartHour, s.cfg.DayEndHour
	}

	resp := weekResponse{
		Timezone:  loc.String(),
		StartHour: startHour,
		EndHour:   endHour,
		Days:      daysToDTO(days),
	}
	for _, day := range days {
		colorMap := make(map[string]string, len(day.Shifts))
		shifts := make([]model.Shift, 0, len(day.Shifts))
		for _, ms := range day.Shifts {
			colorMap[ms.Shift.ID] = ms.DisplayColor
			shifts = append(shifts, ms.Shift)
		}

		var dtos []positionDTO
		for _, pos := range calendar.Positions(shifts, startHour, colorMap) {
			dtos = append(dtos, positionDTO{
				Shift: shiftDTO{
					Key:       pos.Shift.ID,
					Title:     pos.Shift.Title,
					Start:     pos.Shift.Start,
					End:       pos.Shift.End,
					Location:  pos.Shift.Location,
					People:    peopleNames(pos.Shift.People),
					Color:     pos.DisplayColor,
					TextColor: textColor(pos.DisplayColor),
				},
				RowStart:     pos.RowStart,
				RowEnd:       pos.RowEnd,
				ZIndex:       pos.ZIndex,
				IndexInGroup: pos.IndexInGroup,
				GroupSize:    pos.GroupSize,
			})
		}
		resp.Positions = append(resp.Positions, dtos)
	}

	writeJSON(w, http.StatusOK, resp)
}

type personDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	ColorOverride string `json:"color_override,omitempty"`
}

// handlePeople lists the people extracted from the current import.
func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context())
	if err != nil {
		appLog.Error("api people: snapshot failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}

	assignments, err := s.st.ColorAssignments(r.Context())
	if err != nil {
		appLog.Error("api people: color assignments lookup failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load color overrides")
		return
	}

	dtos := make([]personDTO, 0, len(snap.People))
	for _, p := range snap.People {
		dtos = append(dtos, personDTO{
			ID:            p.ID,
			Name:          p.Name,
			Color:         p.Color,
			ColorOverride: assignments[p.Name],
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

type colorAssignmentBody struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// handleColors reads or edits the caller-owned color override map. Edits
// invalidate the snapshot so the next read recomputes display colors from
// scratch.
func (s *Server) handleColors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		assignments, err := s.st.ColorAssignments(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load color overrides")
			return
		}
		writeJSON(w, http.StatusOK, assignments)

	case http.MethodPut, http.MethodPost:
		var body colorAssignmentBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || !validHexColor(body.Color) {
			writeError(w, http.StatusBadRequest, "name and hex color are required")
			return
		}
		if err := s.st.SetColorAssignment(ctx, body.Name, body.Color); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save color override")
			return
		}
		s.invalidateSnapshot()
		writeJSON(w, http.StatusOK, map[string]string{body.Name: body.Color})

	case http.MethodDelete:
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if err := s.st.DeleteColorAssignment(ctx, name); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to delete color override")
			return
		}
		s.invalidateSnapshot()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, PUT, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRefresh forces a full re-fetch and pipeline rerun.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.Refresh(r.Context()); err != nil {
		appLog.Error("api refresh failed", err)
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCalendarPage serves the printable HTML calendar.
//
// GET /calendar?view=month&year=2026&month=9
// GET /calendar?view=week&date=2026-09-01
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := s.cfg.Location()
	now := time.Now().In(loc)
	q := r.URL.Query()

	snap, err := s.snapshot(ctx)
	if err != nil {
		appLog.Error("calendar page: snapshot failed", err)
		http.Error(w, "failed to build calendar", http.StatusInternalServerError)
		return
	}

	assignments, err := s.st.ColorAssignments(ctx)
	if err != nil {
		appLog.Error("calendar page: color assignments lookup failed", err)
		http.Error(w, "failed to load color overrides", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	switch q.Get("view") {
	case "week":
		date := now
		if v := q.Get("date"); v != "" {
			if parsed, perr := time.ParseInLocation("2006-01-02", v, loc); perr == nil {
				date = parsed
			}
		}
		days := calendar.BuildWeek(date, snap.Merged, now)
		startHour, endHour, ok := calendar.DetectTimeRange(days)
		if !ok {
			startHour, endHour = s.cfg.DayStartHour, s.cfg.DayEndHour
		}
		if err := s.renderer.Week(w, days, startHour, endHour, assignments); err != nil {
			appLog.Error("calendar page: week render failed", err)
		}

	default:
		year := parseIntDefault(q.Get("year"), now.Year())
		month := time.Month(parseIntDefault(q.Get("month"), int(now.Month())))
		weeks := calendar.BuildMonth(year, month, snap.Merged, now, loc)
		if err := s.renderer.Month(w, year, month, weeks, assignments); err != nil {
			appLog.Error("calendar page: month render failed", err)
		}
	}
}

func (s *Server) invalidateSnapshot() {
	s.snapMu.Lock()
	s.snapAt = time.Time{}
	s.snapMu.Unlock()
}

func daysToDTO(days []model.CalendarDay) []dayDTO {
	out := make([]dayDTO, 0, len(days))
	for _, day := range days {
		d := dayDTO{
			Date:      day.Date.Format("2006-01-02"),
			IsToday:   day.IsToday,
			IsWeekend: day.IsWeekend,
		}
		for _, ms := range day.Shifts {
			d.Shifts = append(d.Shifts, shiftDTO{
				Key:       ms.ShiftKey,
				Title:     ms.Shift.Title,
				Start:     ms.Shift.Start,
				End:       ms.Shift.End,
				Location:  ms.Shift.Location,
				People:    ms.PeopleList,
				Color:     ms.DisplayColor,
				TextColor: textColor(ms.DisplayColor),
			})
		}
		out = append(out, d)
	}
	return out
}

func textColor(bg string) string {
	return color.ContrastTextColor(bg)
}

func peopleNames(people []model.Person) string {
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func validHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	body := s[1:]
	if len(body) != 3 && len(body) != 6 {
		return false
	}
	for _, c := range body {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
