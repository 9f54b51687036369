package main

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler holds the finished run and shared dependencies for all route
// handlers. It serves an immutable snapshot; no endpoint mutates state.
type Handler struct {
	run        *RunResult
	resolver   *Resolver
	windowDays int
}

func NewHandler(run *RunResult, resolver *Resolver, windowDays int) *Handler {
	return &Handler{run: run, resolver: resolver, windowDays: windowDays}
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// parseWindow reads optional start/end query parameters. On a malformed or
// inverted range it writes a 400 and reports ok=false.
func parseWindow(c *gin.Context) (Window, bool) {
	var win Window
	if s := c.Query("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
			return win, false
		}
		win.Start = &DateOnly{t}
	}
	if s := c.Query("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
			return win, false
		}
		win.End = &DateOnly{t}
	}
	if win.Start != nil && win.End != nil && win.Start.After(win.End.Time) {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return win, false
	}
	return win, true
}

/* ─── Routes ──────────────────────────────────────────────────────────── */

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", h.healthz)

	api := router.Group("/api")
	api.GET("/entries", h.getEntries)
	api.GET("/summary", h.getSummary)
	api.GET("/tdee", h.getTdee)
	api.GET("/missing-foods", h.getMissingFoods)
	api.GET("/report", h.getReport)
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getEntries returns the resolved day entries, optionally restricted to a
// date window. GET /api/entries?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *Handler) getEntries(c *gin.Context) {
	win, ok := parseWindow(c)
	if !ok {
		return
	}
	entries := filterWindow(h.run.Entries, win)
	// Ensure entries is an empty array (not null) in JSON
	if entries == nil {
		entries = []DailyEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// getSummary returns aggregate statistics over a date window.
// GET /api/summary?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *Handler) getSummary(c *gin.Context) {
	win, ok := parseWindow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Aggregate(h.run.Entries, win))
}

// getTdee returns the expenditure report for a window. The rolling window
// length is overridable per request. GET /api/tdee?start&end&window=14.
func (h *Handler) getTdee(c *gin.Context) {
	win, ok := parseWindow(c)
	if !ok {
		return
	}
	windowDays := h.windowDays
	if s := c.Query("window"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 2 {
			apiError(c, http.StatusBadRequest, "invalid window, expected integer >= 2")
			return
		}
		windowDays = n
	}
	c.JSON(http.StatusOK, BuildTdeeReport(h.run.Entries, win, windowDays))
}

// missingFood is one unmatched name with its closest known foods.
type missingFood struct {
	Name        string       `json:"name"`
	Occurrences int          `json:"occurrences"`
	Suggestions []Suggestion `json:"suggestions"`
}

// getMissingFoods lists every unmatched food name with occurrence counts
// and the closest database entries, so gaps can be fixed by either adding
// an alias or a new food. GET /api/missing-foods.
func (h *Handler) getMissingFoods(c *gin.Context) {
	out := make([]missingFood, 0, len(h.run.Missing))
	for name, count := range h.run.Missing {
		out = append(out, missingFood{
			Name:        name,
			Occurrences: count,
			Suggestions: h.resolver.Suggest(name, 3),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		return out[i].Name < out[j].Name
	})
	c.JSON(http.StatusOK, gin.H{"missing_foods": out})
}

// getReport returns the complete run result including errors and warnings.
// GET /api/report.
func (h *Handler) getReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.run)
}
