package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/automak-sensors/device-management/internal/audit"
)

// mockMonitor records activation calls.
type mockMonitor struct {
	mock.Mock
}

func (m *mockMonitor) Activate(ctx context.Context, sensorID string) error {
	return m.Called(ctx, sensorID).Error(0)
}

func (m *mockMonitor) Deactivate(ctx context.Context, sensorID string) error {
	return m.Called(ctx, sensorID).Error(0)
}

type mockAuditor struct {
	mock.Mock
}

func (m *mockAuditor) Create(ctx context.Context, entry *audit.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

type recordedState struct {
	id      string
	enabled bool
}

type fakeRecorder struct {
	mu     sync.Mutex
	points []recordedState
}

func (f *fakeRecorder) RecordEnablement(id string, enabled bool, _ time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, recordedState{id, enabled})
}

// failingRepo wraps a repository and fails selected operations.
type failingRepo struct {
	Repository
	createErr error
	updateErr error
	listErr   error
}

func (f *failingRepo) Create(ctx context.Context, s *Sensor) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.Repository.Create(ctx, s)
}

func (f *failingRepo) Update(ctx context.Context, s *Sensor) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Repository.Update(ctx, s)
}

func (f *failingRepo) List(ctx context.Context, req PageRequest) ([]Sensor, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.Repository.List(ctx, req)
}

func sequentialIDs() IDGenerator {
	n := 0
	return IDFunc(func() string {
		n++
		return fmt.Sprintf("sensor-%03d", n)
	})
}

func newTestRegistry(t *testing.T) (*Registry, *mockMonitor) {
	t.Helper()
	monitor := &mockMonitor{}
	return NewRegistry(setupTestRepo(t), monitor, sequentialIDs()), monitor
}

func boolPtr(b bool) *bool { return &b }

func exampleInput() Input {
	return Input{
		Name:     "temp-1",
		IP:       "10.0.0.5",
		Location: "roomA",
		Protocol: "MQTT",
		Model:    "X100",
		Enabled:  boolPtr(false),
	}
}

func TestRegistry_ExampleLifecycle(t *testing.T) {
	reg, monitor := newTestRegistry(t)
	ctx := context.Background()

	created, err := reg.Create(ctx, exampleInput())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "temp-1", created.Name)
	assert.Equal(t, "10.0.0.5", created.IP)
	assert.Equal(t, "roomA", created.Location)
	assert.Equal(t, "MQTT", created.Protocol)
	assert.Equal(t, "X100", created.Model)
	assert.False(t, created.Enabled)

	monitor.On("Activate", mock.Anything, created.ID).Return(nil).Once()
	require.NoError(t, reg.Enable(ctx, created.ID))

	got, err := reg.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	monitor.AssertExpectations(t)
}

func TestRegistry_Create_UniqueIDs(t *testing.T) {
	reg := NewRegistry(setupTestRepo(t), &mockMonitor{}, UUIDGenerator{})
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		s, err := reg.Create(ctx, exampleInput())
		require.NoError(t, err)
		require.NotEmpty(t, s.ID)
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestRegistry_Create_EnabledDefaultsToFalse(t *testing.T) {
	reg, monitor := newTestRegistry(t)

	in := exampleInput()
	in.Enabled = nil
	s, err := reg.Create(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, s.Enabled)

	in.Enabled = boolPtr(true)
	s, err = reg.Create(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, s.Enabled)

	// Create never talks to the monitor.
	monitor.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
}

func TestRegistry_Create_Invalid(t *testing.T) {
	reg, _ := newTestRegistry(t)

	in := exampleInput()
	in.Name = "   "
	_, err := reg.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidSensor)
}

func TestRegistry_Create_PersistenceErrorPropagates(t *testing.T) {
	boom := errors.New("disk full")
	repo := &failingRepo{Repository: setupTestRepo(t), createErr: boom}
	reg := NewRegistry(repo, &mockMonitor{}, sequentialIDs())

	_, err := reg.Create(context.Background(), exampleInput())
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_GetByID(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	created, err := reg.Create(ctx, exampleInput())
	require.NoError(t, err)

	got, err := reg.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Enabled, got.Enabled)

	_, err = reg.GetByID(ctx, "unknown")
	assert.ErrorIs(t, err, ErrSensorNotFound)
}

func TestRegistry_EnableDisable(t *testing.T) {
	reg, monitor := newTestRegistry(t)
	ctx := context.Background()

	s, err := reg.Create(ctx, exampleInput())
	require.NoError(t, err)

	monitor.On("Activate", mock.Anything, s.ID).Return(nil).Once()
	monitor.On("Deactivate", mock.Anything, s.ID).Return(nil).Once()

	require.NoError(t, reg.Enable(ctx, s.ID))
	got, err := reg.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Enabled)

	require.NoError(t, reg.Disable(ctx, s.ID))
	got, err = reg.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	monitor.AssertExpectations(t)
	monitor.AssertNumberOfCalls(t, "Activate", 1)
	monitor.AssertNumberOfCalls(t, "Deactivate", 1)
}

func TestRegistry_EnableTwice_NotifiesTwice(t *testing.T) {
	reg, monitor := newTestRegistry(t)
	ctx := context.Background()

	s, err := reg.Create(ctx, exampleInput())
	require.NoError(t, err)

	monitor.On("Activate", mock.Anything, s.ID).Return(nil)

	require.NoError(t, reg.Enable(ctx, s.ID))
	require.NoError(t, reg.Enable(ctx, s.ID))

	got, err := reg.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	monitor.AssertNumberOfCalls(t, "Activate", 2)
}

func TestRegistry_EnableDisable_UnknownID(t *testing.T) {
	reg, monitor := newTestRegistry(t)
	ctx := context.Background()

	assert.ErrorIs(t, reg.Enable(ctx, "nope"), ErrSensorNotFound)
	assert.ErrorIs(t, reg.Disable(ctx, "nope"), ErrSensorNotFound)

	monitor.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
	monitor.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}

func TestRegistry_Enable_MonitorFailureKeepsFlag(t *testing.T) {
	reg, monitor := newTestRegistry(t)
	ctx := context.Background()

	s, err := reg.Create(ctx, exampleInput())
	require.NoError(t, err)

	downstream := errors.New("connection refused")
	monitor.On("Activate", mock.Anything, s.ID).Return(downstream).Once()

	err = reg.Enable(ctx, s.ID)
	assert.ErrorIs(t, err, ErrMonitoringFailed)
	assert.ErrorIs(t, err, downstream)

	// Persist happens before notify and is not compensated.
	got, err := reg.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Enabled)
}

func TestRegistry_Enable_PersistFailureSkipsMonitor(t *testing.T) {
	boom := errors.New("database is locked")
	base := setupTestRepo(t)
	monitor := &mockMonitor{}

	reg := NewRegistry(base, monitor, sequentialIDs())
	s, err := reg.Create(context.Background(), exampleInput())
	require.NoError(t, err)

	failing := NewRegistry(&failingRepo{Repository: base, updateErr: boom}, monitor, sequentialIDs())
	assert.ErrorIs(t, failing.Enable(context.Background(), s.ID), boom)
	monitor.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
}

func TestRegistry_Update(t *testing.T) {
	reg, monitor := newTestRegistry(t)
	ctx := context.Background()

	s, err := reg.Create(ctx, exampleInput())
	require.NoError(t, err)
	monitor.On("Activate", mock.Anything, s.ID).Return(nil)
	require.NoError(t, reg.Enable(ctx, s.ID))

	in := exampleInput()
	in.Location = "roomB"
	in.Enabled = boolPtr(false)
	updated, err := reg.Update(ctx, s.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "roomB", updated.Location)
	assert.True(t, updated.Enabled, "update must not change enablement")

	_, err = reg.Update(ctx, "missing", in)
	assert.ErrorIs(t, err, ErrSensorNotFound)
}

func TestRegistry_Delete(t *testing.T) {
	reg, monitor := newTestRegistry(t)
	ctx := context.Background()

	s, err := reg.Create(ctx, exampleInput())
	require.NoError(t, err)

	monitor.On("Deactivate", mock.Anything, s.ID).Return(nil).Once()
	require.NoError(t, reg.Delete(ctx, s.ID))
	monitor.AssertExpectations(t)

	_, err = reg.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSensorNotFound)

	assert.ErrorIs(t, reg.Delete(ctx, s.ID), ErrSensorNotFound)
	monitor.AssertNumberOfCalls(t, "Deactivate", 1)
}

func TestRegistry_List_PagesCoverAllSensors(t *testing.T) {
	reg, monitor := newTestRegistry(t)
	ctx := context.Background()

	want := make(map[string]bool)
	for i := 0; i < 7; i++ {
		in := exampleInput()
		in.Name = fmt.Sprintf("temp-%d", i)
		s, err := reg.Create(ctx, in)
		require.NoError(t, err)
		want[s.ID] = true
	}

	// A deleted sensor must not appear in any page.
	victim, err := reg.Create(ctx, exampleInput())
	require.NoError(t, err)
	monitor.On("Deactivate", mock.Anything, victim.ID).Return(nil)
	require.NoError(t, reg.Delete(ctx, victim.ID))

	got := make(map[string]bool)
	for page := 0; ; page++ {
		p, err := reg.List(ctx, PageRequest{Page: page, Size: 3})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(p.Sensors), 3)
		assert.Equal(t, 7, p.Total)
		assert.Equal(t, 3, p.TotalPages)
		if len(p.Sensors) == 0 {
			break
		}
		for _, s := range p.Sensors {
			assert.False(t, got[s.ID], "sensor %s returned twice", s.ID)
			got[s.ID] = true
		}
	}
	assert.Equal(t, want, got)
}

func TestRegistry_List_Defaults(t *testing.T) {
	reg, _ := newTestRegistry(t)
	reg.SetPageLimits(5, 8)

	p, err := reg.List(context.Background(), PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Page)
	assert.Equal(t, 5, p.Size)
	assert.NotNil(t, p.Sensors)

	p, err = reg.List(context.Background(), PageRequest{Size: 500})
	require.NoError(t, err)
	assert.Equal(t, 8, p.Size)
}

func TestRegistry_List_InvalidRequest(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.List(ctx, PageRequest{Page: -1})
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = reg.List(ctx, PageRequest{Size: -5})
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = reg.List(ctx, PageRequest{Sort: []Order{{Field: "password"}}})
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestRegistry_List_OffsetOverflow(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := reg.Create(ctx, exampleInput())
		require.NoError(t, err)
	}

	_, err := reg.List(ctx, PageRequest{Page: math.MaxInt / 10, Size: 20})
	assert.ErrorIs(t, err, ErrInvalidPage)

	// The largest page whose offset still fits is past the end and empty.
	p, err := reg.List(ctx, PageRequest{Page: math.MaxInt / 20, Size: 20})
	require.NoError(t, err)
	assert.Empty(t, p.Sensors)
	assert.Equal(t, 3, p.Total)
}

func TestRegistry_List_PersistenceErrorPropagates(t *testing.T) {
	boom := errors.New("no such table")
	reg := NewRegistry(&failingRepo{Repository: setupTestRepo(t), listErr: boom}, &mockMonitor{}, sequentialIDs())

	_, err := reg.List(context.Background(), PageRequest{})
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_AuditAndRecorder(t *testing.T) {
	reg, monitor := newTestRegistry(t)
	auditor := &mockAuditor{}
	recorder := &fakeRecorder{}
	reg.SetAuditor(auditor)
	reg.SetStateRecorder(recorder)
	ctx := context.Background()

	auditor.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionCreate && e.EntityType == audit.EntitySensor
	})).Return(nil).Once()
	auditor.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionEnable
	})).Return(errors.New("audit store down")).Once()

	s, err := reg.Create(ctx, exampleInput())
	require.NoError(t, err)

	monitor.On("Activate", mock.Anything, s.ID).Return(nil)
	// An audit failure never fails the operation.
	require.NoError(t, reg.Enable(ctx, s.ID))

	auditor.AssertExpectations(t)
	assert.Equal(t, []recordedState{{s.ID, true}}, recorder.points)
}
