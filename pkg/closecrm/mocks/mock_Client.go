// Package mocks provides test doubles for the closecrm client.
package mocks

import (
	"context"

	closecrm "github.com/sells-group/pipeline-score/pkg/closecrm"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// CreateLead provides a mock function with given fields: ctx, lead
func (_m *MockClient) CreateLead(ctx context.Context, lead closecrm.Lead) (*closecrm.LeadResponse, error) {
	ret := _m.Called(ctx, lead)

	if len(ret) == 0 {
		panic("no return value specified for CreateLead")
	}

	var r0 *closecrm.LeadResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, closecrm.Lead) (*closecrm.LeadResponse, error)); ok {
		return rf(ctx, lead)
	}
	if rf, ok := ret.Get(0).(func(context.Context, closecrm.Lead) *closecrm.LeadResponse); ok {
		r0 = rf(ctx, lead)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*closecrm.LeadResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, closecrm.Lead) error); ok {
		r1 = rf(ctx, lead)
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
