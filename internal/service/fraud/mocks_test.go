package fraud

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// Mock implementations

type mockVelocityStore struct {
	mock.Mock
}

func (m *mockVelocityStore) GetVelocityData(ctx context.Context, userID uuid.UUID) (*fraud.VelocityData, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fraud.VelocityData), args.Error(1)
}

func (m *mockVelocityStore) GetVelocityLimits(ctx context.Context) (*fraud.VelocityLimits, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fraud.VelocityLimits), args.Error(1)
}

type mockLocationService struct {
	mock.Mock
}

func (m *mockLocationService) ResolveLocation(ctx context.Context, ipAddress string) (*fraud.GeoLocation, error) {
	args := m.Called(ctx, ipAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fraud.GeoLocation), args.Error(1)
}

func (m *mockLocationService) GetLocationHistory(ctx context.Context, userID uuid.UUID) ([]fraud.LocationRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fraud.LocationRecord), args.Error(1)
}

func (m *mockLocationService) IsHighRiskCountry(ctx context.Context, countryCode string) (bool, error) {
	args := m.Called(ctx, countryCode)
	return args.Bool(0), args.Error(1)
}

type mockDeviceService struct {
	mock.Mock
}

func (m *mockDeviceService) GenerateFingerprint(ctx context.Context, attrs fraud.DeviceAttributes) (*fraud.DeviceFingerprint, error) {
	args := m.Called(ctx, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fraud.DeviceFingerprint), args.Error(1)
}

func (m *mockDeviceService) GetDeviceHistory(ctx context.Context, userID uuid.UUID) ([]fraud.DeviceFingerprint, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fraud.DeviceFingerprint), args.Error(1)
}

type mockBehaviorStore struct {
	mock.Mock
}

func (m *mockBehaviorStore) GetBehaviorProfile(ctx context.Context, userID uuid.UUID) (*fraud.UserBehaviorProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fraud.UserBehaviorProfile), args.Error(1)
}

// capturingSink records submitted events for assertions.
type capturingSink struct {
	mu     sync.Mutex
	events []fraud.SecurityEvent
}

func (s *capturingSink) Submit(event fraud.SecurityEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *capturingSink) Events() []fraud.SecurityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fraud.SecurityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// panicOnceSink panics on the first Submit only; later submissions succeed.
// Used to simulate an orchestration-level defect past the analyzer boundary.
type panicOnceSink struct {
	capturingSink
	panicked bool
}

func (s *panicOnceSink) Submit(event fraud.SecurityEvent) {
	s.mu.Lock()
	first := !s.panicked
	s.panicked = true
	s.mu.Unlock()

	if first {
		panic("sink failure")
	}
	s.capturingSink.Submit(event)
}

// staticCheck is a pluggable strategy stub with a fixed verdict.
type staticCheck struct {
	anomalous bool
}

func (c staticCheck) IsAnomalous(context.Context, fraud.TransactionContext) bool {
	return c.anomalous
}
