package importer

import (
	"context"
	"testing"

	"github.com/sotuphap-angiang/vbtrack/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgencyResolver_CreatesOncePerName(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	r := newAgencyResolver(fs, newRunLog(logging.Discard()))

	first := r.Resolve(ctx, "Sở Y tế")
	second := r.Resolve(ctx, "  Sở Y tế ")
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, fs.findCalls, "second lookup served from cache")
	assert.Equal(t, 1, fs.createCalls)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, r.Created())
}

func TestAgencyResolver_ReusesExisting(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fs.agencies["Công an tỉnh"] = 42
	r := newAgencyResolver(fs, newRunLog(logging.Discard()))

	id := r.Resolve(ctx, "Công an tỉnh")
	require.NotNil(t, id)
	assert.EqualValues(t, 42, *id)
	assert.Equal(t, 0, fs.createCalls)
	assert.Equal(t, 0, r.Created())
	assert.Equal(t, 1, r.Len())
}

func TestAgencyResolver_BlankName(t *testing.T) {
	fs := newFakeStore()
	r := newAgencyResolver(fs, newRunLog(logging.Discard()))
	assert.Nil(t, r.Resolve(context.Background(), "   "))
	assert.Empty(t, fs.calls)
}

func TestAgencyResolver_CreateFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fs.failCreate["Sở Du lịch"] = true
	rl := newRunLog(logging.Discard())
	r := newAgencyResolver(fs, rl)

	assert.Nil(t, r.Resolve(ctx, "Sở Du lịch"))
	assert.Equal(t, []string{"⚠️ Could not create agency: Sở Du lịch"}, rl.lines)
	assert.Equal(t, 0, r.Len())

	// Failures are not cached; a later row retries.
	fs.failCreate["Sở Du lịch"] = false
	assert.NotNil(t, r.Resolve(ctx, "Sở Du lịch"))
}

func TestAgencyResolver_LookupFailureFallsThroughToCreate(t *testing.T) {
	fs := newFakeStore()
	fs.failFind = true

	rl := newRunLog(logging.Discard())
	r := newAgencyResolver(fs, rl)

	assert.NotNil(t, r.Resolve(context.Background(), "Sở Tài chính"))
	assert.Equal(t, 1, fs.createCalls)
	assert.Equal(t, []string{"⚠️ Could not look up agency Sở Tài chính: lookup unavailable"}, rl.lines)
}
