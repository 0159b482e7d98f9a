// Package providertest hand-authors a gomock-style CacheProvider double,
// in the shape mockgen would generate from internal/provider.CacheProvider,
// since this repository's build process never invokes go generate /
// mockgen. Kept alongside the real providers so manager tests can inject
// configurable latency, errors and not-found results without standing up
// a disk or LRU backend.
package providertest

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/cubedata/segcache/internal/future"
	"github.com/cubedata/segcache/internal/provider"
	"github.com/cubedata/segcache/internal/segment"
)

// MockCacheProvider is a mock of the CacheProvider interface.
type MockCacheProvider struct {
	ctrl     *gomock.Controller
	recorder *MockCacheProviderRecorder
}

// MockCacheProviderRecorder is the mock recorder for MockCacheProvider.
type MockCacheProviderRecorder struct {
	mock *MockCacheProvider
}

// NewMockCacheProvider creates a new mock instance.
func NewMockCacheProvider(ctrl *gomock.Controller) *MockCacheProvider {
	mock := &MockCacheProvider{ctrl: ctrl}
	mock.recorder = &MockCacheProviderRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCacheProvider) EXPECT() *MockCacheProviderRecorder {
	return m.recorder
}

func (m *MockCacheProvider) Contains(ctx context.Context, header *segment.Header) *future.Future[bool] {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Contains", ctx, header)
	return ret[0].(*future.Future[bool])
}

func (mr *MockCacheProviderRecorder) Contains(ctx, header any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Contains", reflect.TypeOf((*MockCacheProvider)(nil).Contains), ctx, header)
}

func (m *MockCacheProvider) Get(ctx context.Context, header *segment.Header) *future.Future[provider.GetResult] {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", ctx, header)
	return ret[0].(*future.Future[provider.GetResult])
}

func (mr *MockCacheProviderRecorder) Get(ctx, header any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockCacheProvider)(nil).Get), ctx, header)
}

func (m *MockCacheProvider) Put(ctx context.Context, header *segment.Header, body *segment.Body) *future.Future[bool] {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Put", ctx, header, body)
	return ret[0].(*future.Future[bool])
}

func (mr *MockCacheProviderRecorder) Put(ctx, header, body any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Put", reflect.TypeOf((*MockCacheProvider)(nil).Put), ctx, header, body)
}

func (m *MockCacheProvider) Remove(ctx context.Context, header *segment.Header) *future.Future[bool] {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Remove", ctx, header)
	return ret[0].(*future.Future[bool])
}

func (mr *MockCacheProviderRecorder) Remove(ctx, header any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Remove", reflect.TypeOf((*MockCacheProvider)(nil).Remove), ctx, header)
}

func (m *MockCacheProvider) GetSegmentHeaders(ctx context.Context) *future.Future[[]*segment.Header] {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetSegmentHeaders", ctx)
	return ret[0].(*future.Future[[]*segment.Header])
}

func (mr *MockCacheProviderRecorder) GetSegmentHeaders(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetSegmentHeaders", reflect.TypeOf((*MockCacheProvider)(nil).GetSegmentHeaders), ctx)
}

func (m *MockCacheProvider) AddListener(l provider.EventListener) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "AddListener", l)
}

func (mr *MockCacheProviderRecorder) AddListener(l any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddListener", reflect.TypeOf((*MockCacheProvider)(nil).AddListener), l)
}

func (m *MockCacheProvider) RemoveListener(l provider.EventListener) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "RemoveListener", l)
}

func (mr *MockCacheProviderRecorder) RemoveListener(l any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RemoveListener", reflect.TypeOf((*MockCacheProvider)(nil).RemoveListener), l)
}

func (m *MockCacheProvider) SupportsRichIndex() bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SupportsRichIndex")
	return ret[0].(bool)
}

func (mr *MockCacheProviderRecorder) SupportsRichIndex() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SupportsRichIndex", reflect.TypeOf((*MockCacheProvider)(nil).SupportsRichIndex))
}

func (m *MockCacheProvider) TearDown(ctx context.Context) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "TearDown", ctx)
	err, _ := ret[0].(error)
	return err
}

func (mr *MockCacheProviderRecorder) TearDown(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TearDown", reflect.TypeOf((*MockCacheProvider)(nil).TearDown), ctx)
}

func (m *MockCacheProvider) Name() string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Name")
	return ret[0].(string)
}

func (mr *MockCacheProviderRecorder) Name() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Name", reflect.TypeOf((*MockCacheProvider)(nil).Name))
}
