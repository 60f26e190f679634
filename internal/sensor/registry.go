package sensor

import (
	"context"
	"fmt"
	"time"

	"github.com/automak-sensors/device-management/internal/audit"
)

// Monitor is the external monitoring subsystem. Activate and Deactivate
// start and stop monitoring of one sensor; the registry consumes nothing
// but the error.
type Monitor interface {
	Activate(ctx context.Context, sensorID string) error
	Deactivate(ctx context.Context, sensorID string) error
}

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Auditor stores audit trail entries.
type Auditor interface {
	Create(ctx context.Context, entry *audit.Entry) error
}

// StateRecorder records enablement transitions as time-series points.
type StateRecorder interface {
	RecordEnablement(sensorID string, enabled bool, at time.Time)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the sensor registry service. It holds no state of its own;
// every call goes to the repository.
type Registry struct {
	repo     Repository
	monitor  Monitor
	ids      IDGenerator
	logger   Logger
	auditor  Auditor
	recorder StateRecorder

	defaultPageSize int
	maxPageSize     int
}

// NewRegistry creates a registry over its three required collaborators.
func NewRegistry(repo Repository, monitor Monitor, ids IDGenerator) *Registry {
	return &Registry{
		repo:            repo,
		monitor:         monitor,
		ids:             ids,
		logger:          noopLogger{},
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetAuditor enables the audit trail.
func (r *Registry) SetAuditor(a Auditor) {
	r.auditor = a
}

// SetStateRecorder enables time-series recording of enable/disable.
func (r *Registry) SetStateRecorder(rec StateRecorder) {
	r.recorder = rec
}

// SetPageLimits overrides the default and maximum page sizes.
// Non-positive values keep the current setting.
func (r *Registry) SetPageLimits(defaultSize, maxSize int) {
	if defaultSize > 0 {
		r.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		r.maxPageSize = maxSize
	}
}

// Create registers a new sensor under a freshly generated ID.
func (r *Registry) Create(ctx context.Context, in Input) (*Sensor, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	s := &Sensor{ID: r.ids.NewID()}
	in.apply(s)
	if in.Enabled != nil {
		s.Enabled = *in.Enabled
	}

	if err := r.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("creating sensor: %w", err)
	}

	r.logger.Info("sensor created", "sensor_id", s.ID, "name", s.Name)
	r.audit(ctx, audit.ActionCreate, s.ID, map[string]any{"name": s.Name, "enabled": s.Enabled})
	return s, nil
}

// GetByID returns ErrSensorNotFound if the sensor does not exist.
func (r *Registry) GetByID(ctx context.Context, id string) (*Sensor, error) {
	return r.repo.GetByID(ctx, id)
}

// List returns one page of sensors. Missing size falls back to the default
// page size; sizes above the maximum are capped.
func (r *Registry) List(ctx context.Context, req PageRequest) (*Page, error) {
	req, err := req.normalize(r.defaultPageSize, r.maxPageSize)
	if err != nil {
		return nil, err
	}

	sensors, total, err := r.repo.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("listing sensors: %w", err)
	}
	return newPage(req, sensors, total), nil
}

// Update replaces the descriptive attributes of a sensor. The enabled flag
// only changes through Enable and Disable.
func (r *Registry) Update(ctx context.Context, id string, in Input) (*Sensor, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	s, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(s)

	if err := r.repo.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("updating sensor: %w", err)
	}

	r.logger.Info("sensor updated", "sensor_id", id)
	r.audit(ctx, audit.ActionUpdate, id, map[string]any{"name": s.Name})
	return s, nil
}

// Enable marks the sensor enabled, persists it, then asks the monitor to
// activate it.
func (r *Registry) Enable(ctx context.Context, id string) error {
	return r.setEnabled(ctx, id, true)
}

// Disable marks the sensor disabled, persists it, then asks the monitor to
// deactivate it.
func (r *Registry) Disable(ctx context.Context, id string) error {
	return r.setEnabled(ctx, id, false)
}

func (r *Registry) setEnabled(ctx context.Context, id string, enabled bool) error {
	s, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.Enabled = enabled
	if err := r.repo.Update(ctx, s); err != nil {
		return fmt.Errorf("persisting sensor %s: %w", id, err)
	}

	action := audit.ActionDisable
	if enabled {
		action = audit.ActionEnable
	}
	r.audit(ctx, action, id, nil)
	if r.recorder != nil {
		r.recorder.RecordEnablement(id, enabled, s.UpdatedAt)
	}

	if enabled {
		err = r.monitor.Activate(ctx, id)
	} else {
		err = r.monitor.Deactivate(ctx, id)
	}
	if err != nil {
		// The flag is already stored; operators reconcile from this entry.
		r.logger.Warn("monitoring notification failed",
			"sensor_id", id, "action", action, "error", err)
		return fmt.Errorf("%w: %s sensor %s: %w", ErrMonitoringFailed, action, id, err)
	}

	r.logger.Info("sensor "+action+"d", "sensor_id", id)
	return nil
}

// Delete removes the sensor and then deactivates its monitoring.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.audit(ctx, audit.ActionDelete, id, nil)

	if err := r.monitor.Deactivate(ctx, id); err != nil {
		r.logger.Warn("monitoring notification failed",
			"sensor_id", id, "action", audit.ActionDelete, "error", err)
		return fmt.Errorf("%w: delete sensor %s: %w", ErrMonitoringFailed, id, err)
	}

	r.logger.Info("sensor deleted", "sensor_id", id)
	return nil
}

// audit writes a best-effort trail entry; failures are logged only.
func (r *Registry) audit(ctx context.Context, action, id string, details map[string]any) {
	if r.auditor == nil {
		return
	}
	entry := &audit.Entry{
		Action:     action,
		EntityType: audit.EntitySensor,
		EntityID:   id,
		Source:     audit.SourceAPI,
		Details:    details,
	}
	if err := r.auditor.Create(ctx, entry); err != nil {
		r.logger.Error("writing audit entry failed", "sensor_id", id, "action", action, "error", err)
	}
}
