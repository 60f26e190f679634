package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/automak-sensors/device-management/internal/sensor"
)

// WebSocket event channels for sensor lifecycle changes.
const (
	EventSensorCreated  = "sensor.created"
	EventSensorUpdated  = "sensor.updated"
	EventSensorEnabled  = "sensor.enabled"
	EventSensorDisabled = "sensor.disabled"
	EventSensorDeleted  = "sensor.deleted"
)

// handleListSensors returns one page of sensors.
//
// Query parameters:
//   - page: zero-based page number (default 0)
//   - size: page size (default 20, capped at the configured maximum)
//   - sort: "field" or "field,asc|desc", repeatable
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	page, err := s.registry.List(r.Context(), req)
	if err != nil {
		s.writeSensorError(w, err, "failed to list sensors")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// handleGetSensor returns a single sensor by ID.
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	found, err := s.registry.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeSensorError(w, err, "failed to get sensor")
		return
	}

	writeJSON(w, http.StatusOK, found)
}

// handleCreateSensor registers a new sensor and answers 201 with its projection.
func (s *Server) handleCreateSensor(w http.ResponseWriter, r *http.Request) {
	var in sensor.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	created, err := s.registry.Create(r.Context(), in)
	if err != nil {
		s.writeSensorError(w, err, "failed to create sensor")
		return
	}

	s.hub.Broadcast(EventSensorCreated, created)
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateSensor replaces the descriptive attributes of a sensor.
// The enabled flag in the body is ignored.
func (s *Server) handleUpdateSensor(w http.ResponseWriter, r *http.Request) {
	var in sensor.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	updated, err := s.registry.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeSensorError(w, err, "failed to update sensor")
		return
	}

	s.hub.Broadcast(EventSensorUpdated, updated)
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteSensor removes a sensor and deactivates its monitoring.
func (s *Server) handleDeleteSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.registry.Delete(r.Context(), id)
	if err == nil || errors.Is(err, sensor.ErrMonitoringFailed) {
		s.hub.Broadcast(EventSensorDeleted, map[string]any{"id": id})
	}
	if err != nil {
		s.writeSensorError(w, err, "failed to delete sensor")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEnableSensor(w http.ResponseWriter, r *http.Request) {
	s.setSensorEnabled(w, r, true)
}

func (s *Server) handleDisableSensor(w http.ResponseWriter, r *http.Request) {
	s.setSensorEnabled(w, r, false)
}

// setSensorEnabled answers 204 on success. The new flag is stored even when
// monitoring fails, so the event is broadcast in that case too.
func (s *Server) setSensorEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id := chi.URLParam(r, "id")

	op, event := s.registry.Disable, EventSensorDisabled
	if enabled {
		op, event = s.registry.Enable, EventSensorEnabled
	}

	err := op(r.Context(), id)
	if err == nil || errors.Is(err, sensor.ErrMonitoringFailed) {
		s.hub.Broadcast(event, map[string]any{"id": id, "enabled": enabled})
	}
	if err != nil {
		s.writeSensorError(w, err, "failed to change sensor enablement")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeSensorError maps registry errors onto HTTP responses.
func (s *Server) writeSensorError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, sensor.ErrSensorNotFound):
		writeNotFound(w, "sensor not found")
	case errors.Is(err, sensor.ErrInvalidSensor):
		writeValidationError(w, err.Error())
	case errors.Is(err, sensor.ErrInvalidPage), errors.Is(err, sensor.ErrInvalidSort):
		writeBadRequest(w, err.Error())
	case errors.Is(err, sensor.ErrSensorExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, "sensor already exists")
	case errors.Is(err, sensor.ErrMonitoringFailed):
		writeBadGateway(w, "monitoring service did not accept the change")
	default:
		s.logger.Error(fallback, "error", err)
		writeInternalError(w, fallback)
	}
}

// parsePageRequest reads page, size and sort from the query string.
// Range checks happen in the registry.
func parsePageRequest(q url.Values) (sensor.PageRequest, error) {
	var req sensor.PageRequest

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: page must be an integer", sensor.ErrInvalidPage)
		}
		req.Page = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: size must be an integer", sensor.ErrInvalidPage)
		}
		req.Size = n
	}

	orders, err := sensor.ParseSort(q["sort"])
	if err != nil {
		return req, err
	}
	req.Sort = orders
	return req, nil
}
