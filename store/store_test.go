package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/agriclimate/engine"
	"github.com/spektr-org/agriclimate/helpers"
	"github.com/spektr-org/agriclimate/schema"
)

const header = "country,year,crop_type,adaptation_strategy,emissions,economic_impact\n"

func static(body string) Fetcher {
	return func(context.Context, string) ([]byte, error) {
		return []byte(body), nil
	}
}

func TestReloadInstallsDataset(t *testing.T) {
	s := New("mem", schema.Compact(), WithFetcher(static(header+"India,2020,Wheat,Crop Rotation,12.5,340\n")))
	assert.Nil(t, s.Current())

	ds, err := s.Reload(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Same(t, ds, s.Current())
	assert.Equal(t, "mem", ds.Source)

	values, ok, err := engine.Select(s.Current(), engine.ViewEconomic, "India")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]float64{"Wheat": 340}, values)

	loadedAt, lastErr := s.Status()
	assert.NoError(t, lastErr)
	assert.Equal(t, ds.LoadedAt, loadedAt)
}

func TestReloadFailureKeepsPrevious(t *testing.T) {
	body := header + "India,2020,Wheat,Crop Rotation,12.5,340\n"
	fail := false
	s := New("mem", schema.Compact(), WithFetcher(func(context.Context, string) ([]byte, error) {
		if fail {
			return nil, helpers.ErrLoad
		}
		return []byte(body), nil
	}))

	first, err := s.Reload(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = s.Reload(context.Background())
	require.ErrorIs(t, err, helpers.ErrLoad)
	assert.Same(t, first, s.Current())

	_, lastErr := s.Status()
	assert.ErrorIs(t, lastErr, helpers.ErrLoad)
}

func TestReloadHeaderMismatchKeepsPrevious(t *testing.T) {
	body := header + "India,2020,Wheat,Crop Rotation,12.5,340\n"
	s := New("mem", schema.Compact(), WithFetcher(func(context.Context, string) ([]byte, error) {
		return []byte(body), nil
	}))
	first, err := s.Reload(context.Background())
	require.NoError(t, err)

	body = "year,country\n2020,India\n"
	_, err = s.Reload(context.Background())
	require.ErrorIs(t, err, schema.ErrHeaderMismatch)
	assert.Same(t, first, s.Current())
}

func TestStaleReloadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex

	s := New("mem", schema.Compact(), WithFetcher(func(ctx context.Context, _ string) ([]byte, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return []byte(header + "China,2019,Rice,Irrigation,1,1\n"), nil
		}
		return []byte(header + "India,2020,Wheat,Crop Rotation,12.5,340\n"), nil
	}))

	var (
		wg       sync.WaitGroup
		staleErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, staleErr = s.Reload(context.Background())
	}()
	<-started

	fresh, err := s.Reload(context.Background())
	require.NoError(t, err)

	close(release)
	wg.Wait()

	assert.ErrorIs(t, staleErr, ErrSuperseded)
	assert.Same(t, fresh, s.Current())
	assert.True(t, s.Current().HasCountry("India"))
	assert.False(t, s.Current().HasCountry("China"))
}

func TestReloadCancelled(t *testing.T) {
	s := New("mem", schema.Compact(), WithFetcher(static(header)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Reload(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, s.Current())
}

func TestWithEngineOptions(t *testing.T) {
	s := New("mem", schema.Compact(),
		WithFetcher(static(header)),
		WithEngineOptions(engine.WithDatasetID("fixed")),
	)
	ds, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", ds.ID)
}
