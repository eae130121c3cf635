package plan

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// max accepted plan document, YAML is usually larger than the stored JSON
const maxPlanBodyBytes = 2 * MaxPlanBytes

type Handler struct {
	service   *Service
	ownerFunc func(r *http.Request) string
}

func NewHandler(service *Service, ownerFunc func(r *http.Request) string) *Handler {
	return &Handler{
		service:   service,
		ownerFunc: ownerFunc,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/plan", h.HandleGet).Methods("GET", "OPTIONS").Name("get-plan")
	r.HandleFunc("/plan", h.HandleSave).Methods("PUT", "OPTIONS").Name("save-plan")
	r.HandleFunc("/plan", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-plan")
	r.HandleFunc("/plan/today", h.HandleToday).Methods("GET", "OPTIONS").Name("get-plan-today")
	r.HandleFunc("/plan/today/complete", h.HandleCompleteToday).Methods("POST", "OPTIONS").Name("complete-plan-today")
	r.HandleFunc("/plan/week/{week}", h.HandleWeek).Methods("GET", "OPTIONS").Name("get-plan-week")
	r.HandleFunc("/plan/preview/{weeks}", h.HandlePreview).Methods("GET", "OPTIONS").Name("preview-plan")
	r.HandleFunc("/plan/status", h.HandleStatus).Methods("GET", "OPTIONS").Name("get-plan-status")
	r.HandleFunc("/plan/settings", h.HandleUpdateSettings).Methods("PUT", "OPTIONS").Name("update-plan-settings")
	r.HandleFunc("/plan/day/{day}/exercise/{index}", h.HandleUpdateExercise).Methods("PUT", "OPTIONS").Name("update-plan-exercise")
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.get")
	defer span.End()

	p, err := h.service.Plan(ctx, h.ownerFunc(r))
	if err != nil {
		writeServiceError(w, "get plan", err)
		return
	}
	writeJSON(w, "plan", p, http.StatusOK)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.save")
	defer span.End()

	body := io.LimitReader(r.Body, maxPlanBodyBytes)

	var (
		p   *Plan
		err error
	)
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		p, err = Decode(body)
	case strings.Contains(contentType, "yaml"):
		p, err = DecodeYAML(body)
	default:
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("save plan, decode: %s", err)
		http.Error(w, "error, invalid plan document", http.StatusBadRequest)
		return
	}

	saved, err := h.service.SavePlan(ctx, h.ownerFunc(r), p)
	if err != nil {
		writeServiceError(w, "save plan", err)
		return
	}
	writeJSON(w, "saved plan", saved, http.StatusOK)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.delete")
	defer span.End()

	if err := h.service.DeletePlan(ctx, h.ownerFunc(r)); err != nil {
		writeServiceError(w, "delete plan", err)
		return
	}
	pkg.WriteTextResponseOK(w, "deleted")
}

func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.today")
	defer span.End()

	view, err := h.service.Today(ctx, h.ownerFunc(r))
	if err != nil {
		writeServiceError(w, "today", err)
		return
	}
	writeJSON(w, "today", view, http.StatusOK)
}

func (h *Handler) HandleCompleteToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.complete-today")
	defer span.End()

	skipped := r.URL.Query().Get("skipped") == "true"
	entry, err := h.service.CompleteToday(ctx, h.ownerFunc(r), skipped)
	if err != nil {
		writeServiceError(w, "complete today", err)
		return
	}
	writeJSON(w, "completion entry", entry, http.StatusCreated)
}

func (h *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.week")
	defer span.End()

	weekParam := mux.Vars(r)["week"]
	week := 0
	if weekParam != "current" {
		var err error
		week, err = strconv.Atoi(weekParam)
		if err != nil || week < 1 {
			http.Error(w, "invalid week", http.StatusBadRequest)
			return
		}
	}

	view, err := h.service.Week(ctx, h.ownerFunc(r), week)
	if err != nil {
		writeServiceError(w, "week", err)
		return
	}
	writeJSON(w, "week", view, http.StatusOK)
}

func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.preview")
	defer span.End()

	weeks, err := strconv.Atoi(mux.Vars(r)["weeks"])
	if err != nil || weeks < 1 {
		http.Error(w, "invalid weeks", http.StatusBadRequest)
		return
	}

	views, err := h.service.Preview(ctx, h.ownerFunc(r), weeks)
	if err != nil {
		writeServiceError(w, "preview", err)
		return
	}
	writeJSON(w, "preview", views, http.StatusOK)
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.status")
	defer span.End()

	status, err := h.service.Status(ctx, h.ownerFunc(r))
	if err != nil {
		writeServiceError(w, "status", err)
		return
	}
	writeJSON(w, "status", status, http.StatusOK)
}

func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.update-settings")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var update SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Errorf("update settings, unmarshal json params: %s", err)
		http.Error(w, "error, invalid settings", http.StatusBadRequest)
		return
	}

	p, err := h.service.UpdateSettings(ctx, h.ownerFunc(r), update)
	if err != nil {
		writeServiceError(w, "update settings", err)
		return
	}
	writeJSON(w, "plan", p, http.StatusOK)
}

func (h *Handler) HandleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.update-exercise")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil || index < 0 {
		http.Error(w, "invalid exercise index", http.StatusBadRequest)
		return
	}

	var update ExerciseUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Errorf("update exercise, unmarshal json params: %s", err)
		http.Error(w, "error, invalid exercise update", http.StatusBadRequest)
		return
	}

	p, err := h.service.UpdateExercise(ctx, h.ownerFunc(r), vars["day"], index, update)
	if err != nil {
		writeServiceError(w, "update exercise", err)
		return
	}
	writeJSON(w, "plan", p, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, what string, v any, status int) {
	resp, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal %s: %s", what, err)
		http.Error(w, "error, failed to encode "+what, http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resp, status)
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		http.Error(w, "plan not found", http.StatusNotFound)
	case errors.Is(err, ErrExerciseNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidPlan), errors.Is(err, ErrInvalidWeek):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrRestDay):
		http.Error(w, err.Error(), http.StatusConflict)
	case pkg.IsUniqueViolationError(err):
		http.Error(w, "session already logged", http.StatusConflict)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "error, "+op+" failed", http.StatusInternalServerError)
	}
}
