package http

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/wrale/wrale-scheduler/internal/wschedd/access"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) GetShow(ctx context.Context, actor *access.Actor, id string, recurring bool) (*schedule.Show, error) {
	args := m.Called(ctx, actor, id, recurring)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Show), args.Error(1)
}

func (m *mockService) GetPermission(ctx context.Context, actor *access.Actor, id string, recurring bool) (*schedule.Permission, error) {
	args := m.Called(ctx, actor, id, recurring)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Permission), args.Error(1)
}

func (m *mockService) Shows(ctx context.Context, actor *access.Actor, query schedule.ShowQuery) ([]schedule.ShowOccurrence, error) {
	args := m.Called(ctx, actor, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.ShowOccurrence), args.Error(1)
}

func (m *mockService) FriendlySchedule(ctx context.Context, query schedule.ShowQuery) ([]schedule.ShowOccurrence, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.ShowOccurrence), args.Error(1)
}

func (m *mockService) Permissions(ctx context.Context, actor *access.Actor, query schedule.PermissionQuery) ([]schedule.PermissionOccurrence, error) {
	args := m.Called(ctx, actor, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.PermissionOccurrence), args.Error(1)
}

func (m *mockService) SaveShow(ctx context.Context, actor *access.Actor, req schedule.SaveShowRequest) (*schedule.Show, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Show), args.Error(1)
}

func (m *mockService) SavePermission(ctx context.Context, actor *access.Actor, req schedule.SavePermissionRequest) (*schedule.Permission, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Permission), args.Error(1)
}

func (m *mockService) DeleteShow(ctx context.Context, actor *access.Actor, id string, recurring bool) error {
	args := m.Called(ctx, actor, id, recurring)
	return args.Error(0)
}

func (m *mockService) DeletePermission(ctx context.Context, actor *access.Actor, id string, recurring bool) error {
	args := m.Called(ctx, actor, id, recurring)
	return args.Error(0)
}

func (m *mockService) SetLastDevice(ctx context.Context, actor *access.Actor, scope schedule.SettingScope, device string) error {
	args := m.Called(ctx, actor, scope, device)
	return args.Error(0)
}

func (m *mockService) LastDevice(ctx context.Context, actor *access.Actor, scope schedule.SettingScope) (int64, error) {
	args := m.Called(ctx, actor, scope)
	return args.Get(0).(int64), args.Error(1)
}

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*access.Actor, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*access.Actor), args.Error(1)
}

type mockStreamer struct {
	mock.Mock
}

func (m *mockStreamer) Serve(w http.ResponseWriter, r *http.Request, deviceID int64) {
	m.Called(deviceID)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"success":true,"message":"streaming"}`))
}
