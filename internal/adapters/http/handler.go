package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/emoai-labs/emoai-agent/internal/app/calendar"
	"github.com/emoai-labs/emoai-agent/internal/app/chat"
	"github.com/emoai-labs/emoai-agent/internal/app/journal"
	"github.com/emoai-labs/emoai-agent/internal/domain"
	"github.com/emoai-labs/emoai-agent/internal/observability"
)

type Server struct {
	chat     *chat.Service
	journal  *journal.Service
	calendar *calendar.Service
	profiles domain.ProfileStore
}

func NewServer(
	chatSvc *chat.Service,
	journalSvc *journal.Service,
	calendarSvc *calendar.Service,
	profiles domain.ProfileStore,
) http.Handler {
	s := &Server{
		chat:     chatSvc,
		journal:  journalSvc,
		calendar: calendarSvc,
		profiles: profiles,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /chat        → POST: one conversational turn
	// /chat/close  → POST: close the active session into a journal entry
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/chat/close", s.handleChatClose)

	// /events               → GET: list (optional ?from&to)
	// /events/{id}          → PUT: update, DELETE: delete
	// /events/{id}/confirm  → POST: confirm with optional edits
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/events/", s.handleEventWithID)

	// /journal → GET: list entries
	mux.HandleFunc("/journal", s.handleJournal)

	// /profile → GET / POST
	mux.HandleFunc("/profile", s.handleProfile)

	return chainMiddlewares(mux, withLogging, withRequestID, withCORS)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type turnRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type sentimentResponse struct {
	Category  string  `json:"category"`
	Intensity float64 `json:"intensity"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time,omitempty"`
	Location    string    `json:"location,omitempty"`
	Confirmed   bool      `json:"confirmed"`
	Synced      bool      `json:"synced"`
	ExternalID  string    `json:"external_id,omitempty"`
	SourceText  string    `json:"source_text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type turnResponse struct {
	Reply     string            `json:"reply"`
	Sentiment sentimentResponse `json:"sentiment"`
	NewEvent  *eventResponse    `json:"new_event,omitempty"`
}

type journalEntryResponse struct {
	ID           string    `json:"id"`
	Mood         string    `json:"mood"`
	Summary      string    `json:"summary"`
	GoalProgress string    `json:"goal_progress,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type closeSessionRequest struct {
	UserID string `json:"user_id"`
}

type closeSessionResponse struct {
	JournalEntry journalEntryResponse `json:"journal_entry"`
}

type eventEditRequest struct {
	UserID      string  `json:"user_id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	Time        *string `json:"time,omitempty"`
	Location    *string `json:"location,omitempty"`
}

type profileRequest struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Age             int    `json:"age,omitempty"`
	Goal            string `json:"goal"`
	ReminderEnabled bool   `json:"reminder_enabled"`
}

type profileResponse struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Age             int    `json:"age,omitempty"`
	Goal            string `json:"goal"`
	ReminderEnabled bool   `json:"reminder_enabled"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	out, err := s.chat.ProcessTurn(r.Context(), chat.TurnInput{
		UserID: domain.UserID(req.UserID),
		Text:   req.Message,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) {
			badRequest(w, "message is required")
			return
		}
		internalError(w, r, err)
		return
	}

	resp := turnResponse{
		Reply: out.Reply,
		Sentiment: sentimentResponse{
			Category:  string(out.Sentiment.Category),
			Intensity: out.Sentiment.Intensity,
		},
	}
	if out.NewEvent != nil {
		ev := toEventResponse(out.NewEvent)
		resp.NewEvent = &ev
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChatClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req closeSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	entry, err := s.journal.CloseActiveSession(r.Context(), domain.UserID(req.UserID))
	if err != nil {
		if errors.Is(err, domain.ErrEmptySession) {
			badRequest(w, "no conversation to close")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, closeSessionResponse{
		JournalEntry: toJournalEntryResponse(entry),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		badRequest(w, "user_id is required")
		return
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if (from == "") != (to == "") {
		badRequest(w, "from and to must be given together")
		return
	}

	events, err := s.calendar.List(r.Context(), domain.UserID(userID), from, to)
	if err != nil {
		if errors.Is(err, calendar.ErrInvalidRange) {
			badRequest(w, "invalid date range")
			return
		}
		internalError(w, r, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventResponse(ev))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

// /events/{id} or /events/{id}/confirm
func (s *Server) handleEventWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/events/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := domain.EventID(parts[0])

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodPut:
			s.handleUpdateEvent(w, r, id)
		case http.MethodDelete:
			s.handleDeleteEvent(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "confirm" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleConfirmEvent(w, r, id)
		return
	}

	http.NotFound(w, r)
}

func (s *Server) handleConfirmEvent(w http.ResponseWriter, r *http.Request, id domain.EventID) {
	req, ok := decodeEventEdit(w, r)
	if !ok {
		return
	}

	ev, err := s.calendar.Confirm(r.Context(), domain.UserID(req.UserID), id, toEdits(req))
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(ev))
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request, id domain.EventID) {
	req, ok := decodeEventEdit(w, r)
	if !ok {
		return
	}

	ev, err := s.calendar.Update(r.Context(), domain.UserID(req.UserID), id, toEdits(req))
	if err != nil {
		writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(ev))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request, id domain.EventID) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		badRequest(w, "user_id is required")
		return
	}

	if err := s.calendar.Delete(r.Context(), domain.UserID(userID), id); err != nil {
		writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		badRequest(w, "user_id is required")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.journal.Entries(r.Context(), domain.UserID(userID), limit)
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]journalEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toJournalEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			badRequest(w, "user_id is required")
			return
		}
		profile, err := s.profiles.GetProfile(r.Context(), domain.UserID(userID))
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotFound) {
				http.NotFound(w, r)
				return
			}
			internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profileResponse{
			UserID:          string(profile.UserID),
			Name:            profile.Name,
			Age:             profile.Age,
			Goal:            profile.Goal,
			ReminderEnabled: profile.ReminderEnabled,
		})

	case http.MethodPost:
		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		if req.UserID == "" || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Goal) == "" {
			badRequest(w, "user_id, name and goal are required")
			return
		}
		err := s.profiles.PutProfile(r.Context(), &domain.UserProfile{
			UserID:          domain.UserID(req.UserID),
			Name:            strings.TrimSpace(req.Name),
			Age:             req.Age,
			Goal:            strings.TrimSpace(req.Goal),
			ReminderEnabled: req.ReminderEnabled,
			CreatedAt:       time.Now(),
		})
		if err != nil {
			internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})

	default:
		methodNotAllowed(w)
	}
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func decodeEventEdit(w http.ResponseWriter, r *http.Request) (eventEditRequest, bool) {
	var req eventEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return req, false
	}
	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return req, false
	}
	return req, true
}

func toEdits(req eventEditRequest) calendar.Edits {
	return calendar.Edits{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
	}
}

func writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
	case errors.Is(err, calendar.ErrInvalidEdit):
		badRequest(w, err.Error())
	default:
		internalError(w, r, err)
	}
}

func toEventResponse(ev *domain.CalendarEvent) eventResponse {
	return eventResponse{
		ID:          string(ev.ID),
		Title:       ev.Title,
		Description: ev.Description,
		Date:        ev.Date,
		Time:        ev.Time,
		Location:    ev.Location,
		Confirmed:   ev.Confirmed,
		Synced:      ev.Synced,
		ExternalID:  ev.ExternalID,
		SourceText:  ev.SourceText,
		CreatedAt:   ev.CreatedAt,
	}
}

func toJournalEntryResponse(e *domain.JournalEntry) journalEntryResponse {
	return journalEntryResponse{
		ID:           string(e.ID),
		Mood:         e.Mood,
		Summary:      e.Summary,
		GoalProgress: e.GoalProgress,
		CreatedAt:    e.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
