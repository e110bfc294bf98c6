package seo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeLister struct {
	locs  []Location
	err   error
	calls int
}

func (f *fakeLister) Locations(context.Context) ([]Location, error) {
	f.calls++
	return f.locs, f.err
}

func TestLocationIndex_Resolve(t *testing.T) {
	lister := &fakeLister{locs: []Location{
		{Code: 21167, Name: "Wisconsin,United States", Type: "State"},
		{Code: 1016367, Name: "Milwaukee,Wisconsin,United States", Type: "City"},
		{Code: 9999999, Name: "Milwaukee,Oregon,United States", Type: "City"},
		{Code: 1016338, Name: "Madison,Wisconsin,United States", Type: "City"},
	}}
	idx := NewLocationIndex(lister, 0)
	ctx := context.Background()

	assert.Equal(t, 1016367, idx.Resolve(ctx, "milwaukee, WI"))
	assert.Equal(t, 1016338, idx.Resolve(ctx, "MADISON"))
	assert.Equal(t, DefaultLocationCode, idx.Resolve(ctx, "Wisconsin"))
	assert.Equal(t, DefaultLocationCode, idx.Resolve(ctx, "Nowhere"))
	assert.Equal(t, DefaultLocationCode, idx.Resolve(ctx, ""))
	assert.Equal(t, 1, lister.calls)
}

func TestLocationIndex_FailureNotCached(t *testing.T) {
	lister := &fakeLister{err: errors.New("down")}
	idx := NewLocationIndex(lister, 1234)
	ctx := context.Background()

	assert.Equal(t, 1234, idx.Resolve(ctx, "Milwaukee"))

	lister.err = nil
	lister.locs = []Location{{Code: 1016367, Name: "Milwaukee,Wisconsin,United States", Type: "City"}}
	assert.Equal(t, 1016367, idx.Resolve(ctx, "Milwaukee"))
	assert.Equal(t, 2, lister.calls)
}

func TestLocationIndex_NilLister(t *testing.T) {
	idx := NewLocationIndex(nil, 0)
	assert.Equal(t, DefaultLocationCode, idx.Resolve(context.Background(), "Milwaukee"))
}

func TestStaticResolver(t *testing.T) {
	assert.Equal(t, 42, StaticResolver(42).Resolve(context.Background(), "anything"))
}
