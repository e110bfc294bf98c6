// Package mocks provides test doubles for the dataforseo client.
package mocks

import (
	"context"

	dataforseo "github.com/sells-group/pipeline-score/pkg/dataforseo"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// SearchVolume provides a mock function with given fields: ctx, req
func (_m *MockClient) SearchVolume(ctx context.Context, req dataforseo.SearchVolumeRequest) ([]dataforseo.SearchVolumeResult, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for SearchVolume")
	}

	var r0 []dataforseo.SearchVolumeResult
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, dataforseo.SearchVolumeRequest) ([]dataforseo.SearchVolumeResult, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, dataforseo.SearchVolumeRequest) []dataforseo.SearchVolumeResult); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]dataforseo.SearchVolumeResult)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, dataforseo.SearchVolumeRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SERP provides a mock function with given fields: ctx, req
func (_m *MockClient) SERP(ctx context.Context, req dataforseo.SERPRequest) (*dataforseo.SERPResult, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for SERP")
	}

	var r0 *dataforseo.SERPResult
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, dataforseo.SERPRequest) (*dataforseo.SERPResult, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, dataforseo.SERPRequest) *dataforseo.SERPResult); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*dataforseo.SERPResult)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, dataforseo.SERPRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Locations provides a mock function with given fields: ctx, country
func (_m *MockClient) Locations(ctx context.Context, country string) ([]dataforseo.Location, error) {
	ret := _m.Called(ctx, country)

	if len(ret) == 0 {
		panic("no return value specified for Locations")
	}

	var r0 []dataforseo.Location
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]dataforseo.Location, error)); ok {
		return rf(ctx, country)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) []dataforseo.Location); ok {
		r0 = rf(ctx, country)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]dataforseo.Location)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, country)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
