package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/gymplan/internal/progression"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type LogCompletionRequest struct {
	PlanName    string     `json:"planName"`
	WeekNumber  int        `json:"weekNumber"`
	Day         string     `json:"day"`
	Focus       string     `json:"focus"`
	Exercises   []string   `json:"exercises"`
	CompletedAt *time.Time `json:"completedAt"`
	Skipped     bool       `json:"skipped"`
}

type ListResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

type Handler struct {
	service *Service
	// resolves the owner a request acts on
	ownerFunc func(r *http.Request) string
}

func NewHandler(service *Service, ownerFunc func(r *http.Request) string) *Handler {
	return &Handler{
		service:   service,
		ownerFunc: ownerFunc,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/history", h.HandleAdd).Methods("POST", "OPTIONS").Name("new-history-entry")
	r.HandleFunc("/history/list/page/{page}/size/{size}", h.HandleList).Methods("GET", "OPTIONS").Name("list-history")
	r.HandleFunc("/history/{id:[0-9]+}", h.HandleGet).Methods("GET", "OPTIONS").Name("get-history-entry")
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.history.get")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	entry, err := h.service.Get(ctx, h.ownerFunc(r), id)
	if errors.Is(err, ErrEntryNotFound) {
		http.Error(w, "history entry not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get history entry %d: %s", id, err)
		http.Error(w, "error, failed to get history entry", http.StatusInternalServerError)
		return
	}

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("marshal history entry %d: %s", id, err)
		http.Error(w, "error, failed to get history entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusOK)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.history.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req LogCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("new history entry, unmarshal json params: %s", err)
		http.Error(w, "add history entry failed", http.StatusBadRequest)
		return
	}

	if req.PlanName == "" || req.Day == "" || req.WeekNumber < 1 {
		http.Error(w, "error, plan name, day or week number invalid", http.StatusBadRequest)
		return
	}

	completion := Completion{
		PlanName:   req.PlanName,
		WeekNumber: req.WeekNumber,
		Day: progression.MaterializedDay{
			Day:   req.Day,
			Focus: req.Focus,
		},
		Skipped: req.Skipped,
	}
	for _, name := range req.Exercises {
		completion.Day.Exercises = append(completion.Day.Exercises, progression.MaterializedExercise{Name: name})
	}
	if req.CompletedAt != nil {
		completion.CompletedAt = *req.CompletedAt
	}

	entry, err := h.service.LogCompletion(ctx, h.ownerFunc(r), completion)
	if pkg.IsUniqueViolationError(err) {
		http.Error(w, "session already logged", http.StatusConflict)
		return
	}
	if errors.Is(err, ErrInvalidCompletion) {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}
	if pkg.IsCheckViolationError(err) {
		http.Error(w, "error, invalid day", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("new history entry: %s", err)
		http.Error(w, "add history entry failed", http.StatusInternalServerError)
		return
	}

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal new history entry: %s", err)
		http.Error(w, "error, failed to add history entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.history.list")
	defer span.End()

	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil || page < 1 {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil || size < 1 {
		http.Error(w, "invalid size", http.StatusBadRequest)
		return
	}

	entries, total, err := h.service.List(ctx, ListParams{
		EntryParams: EntryParams{Owner: h.ownerFunc(r)},
		Page:        page,
		Size:        size,
	})
	if err != nil {
		log.Errorf("list history entries: %s", err)
		http.Error(w, "error, failed to list history entries", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ListResponse{
		Entries: entries,
		Total:   total,
	})
	if err != nil {
		log.Errorf("marshal history entries: %s", err)
		http.Error(w, "error, failed to list history entries", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
