// Package mocks provides test doubles for the kit client.
package mocks

import (
	"context"

	kit "github.com/sells-group/pipeline-score/pkg/kit"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// SubscribeToForm provides a mock function with given fields: ctx, formID, sub
func (_m *MockClient) SubscribeToForm(ctx context.Context, formID string, sub kit.Subscriber) (*kit.SubscriberResponse, error) {
	ret := _m.Called(ctx, formID, sub)

	if len(ret) == 0 {
		panic("no return value specified for SubscribeToForm")
	}

	var r0 *kit.SubscriberResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, kit.Subscriber) (*kit.SubscriberResponse, error)); ok {
		return rf(ctx, formID, sub)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*kit.SubscriberResponse)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// TagSubscriber provides a mock function with given fields: ctx, tag, email
func (_m *MockClient) TagSubscriber(ctx context.Context, tag string, email string) error {
	ret := _m.Called(ctx, tag, email)

	if len(ret) == 0 {
		panic("no return value specified for TagSubscriber")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		return rf(ctx, tag, email)
	}
	return ret.Error(0)
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
