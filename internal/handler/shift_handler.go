package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/client"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/service"

	"go.uber.org/zap"
)

// ShiftHandler exposes the shift lifecycle over HTTP
type ShiftHandler struct {
	shifts  *service.ShiftService
	reports *service.ReportService
	worker  *service.SyncWorker
	logger  *zap.Logger
}

func NewShiftHandler(shifts *service.ShiftService, reports *service.ReportService, worker *service.SyncWorker, logger *zap.Logger) *ShiftHandler {
	return &ShiftHandler{
		shifts:  shifts,
		reports: reports,
		worker:  worker,
		logger:  logger,
	}
}

type idResponse struct {
	ID string `json:"id"`
}

func (h *ShiftHandler) GetShift(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.shifts.Current()
	if err != nil {
		h.writeError(w, "Failed to read shift", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *ShiftHandler) OpenShift(w http.ResponseWriter, r *http.Request) {
	params, ok := h.decodeShiftParams(w, r)
	if !ok {
		return
	}

	id, err := h.shifts.Open(r.Context(), params)
	if err != nil {
		h.writeError(w, "Failed to open shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *ShiftHandler) FinishShift(w http.ResponseWriter, r *http.Request) {
	params, ok := h.decodeShiftParams(w, r)
	if !ok {
		return
	}

	id, err := h.shifts.Finish(r.Context(), params)
	if err != nil {
		h.writeError(w, "Failed to finish shift", err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

func (h *ShiftHandler) ReOpenShift(w http.ResponseWriter, r *http.Request) {
	if err := h.shifts.ReOpen(r.Context()); err != nil {
		h.writeError(w, "Failed to reopen shift", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reopened"})
}

func (h *ShiftHandler) OpenWorkLog(w http.ResponseWriter, r *http.Request) {
	var req models.WorkLogParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReferenceID == "" {
		http.Error(w, "Missing referenceId", http.StatusBadRequest)
		return
	}

	id, err := h.shifts.OpenWorkLog(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Failed to open worklog", err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *ShiftHandler) FinishWorkLog(w http.ResponseWriter, r *http.Request) {
	var req models.WorkLogParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Failed to decode request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		id  string
		err error
	)
	// An empty body finishes the current worklog
	if req.IsEmpty() {
		id, err = h.shifts.FinishCurrentWorkLog(r.Context())
	} else {
		id, err = h.shifts.FinishWorkLog(r.Context(), &req)
	}
	if err != nil {
		h.writeError(w, "Failed to finish worklog", err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

func (h *ShiftHandler) GetWorkLogTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.shifts.GetWorkLogTypes(r.Context())
	if err != nil {
		h.writeError(w, "Failed to get worklog types", err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *ShiftHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.GetReport(r.Context())
	if err != nil {
		h.writeError(w, "Failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ShiftHandler) Sync(w http.ResponseWriter, r *http.Request) {
	sent, err := h.worker.Flush(r.Context())
	if err != nil {
		h.writeError(w, "Failed to sync worklogs", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sent":   sent,
		"status": h.worker.Status(),
	})
}

func (h *ShiftHandler) decodeShiftParams(w http.ResponseWriter, r *http.Request) (*models.ShiftParams, bool) {
	var params models.ShiftParams
	err := json.NewDecoder(r.Body).Decode(&params)
	if errors.Is(err, io.EOF) {
		return nil, true
	}
	if err != nil {
		h.logger.Warn("Failed to decode request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	return &params, true
}

func (h *ShiftHandler) writeError(w http.ResponseWriter, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrStaffAuthorizationRequired):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrDeadlineExceeded),
		errors.Is(err, service.ErrShiftNotOpened),
		errors.Is(err, service.ErrNoCurrentWorkLog):
		status = http.StatusConflict
	case errors.Is(err, service.ErrShiftIDRequired):
		status = http.StatusNotFound
	case client.IsAuthError(err):
		status = http.StatusUnauthorized
	default:
		var rerr *client.RemoteServiceError
		if errors.As(err, &rerr) {
			status = http.StatusBadGateway
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
