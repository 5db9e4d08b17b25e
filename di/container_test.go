package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstgnz/filesql/config"
)

type fakeService struct {
	name string
}

func TestContainerRegisterResolve(t *testing.T) {
	c := NewContainer()

	require.NoError(t, c.Register(&fakeService{name: "metrics"}))

	var svc *fakeService
	require.NoError(t, c.Resolve(&svc))
	assert.Equal(t, "metrics", svc.name)
}

func TestContainerRegisterDuplicate(t *testing.T) {
	c := NewContainer()

	require.NoError(t, c.Register(&fakeService{name: "first"}))
	assert.Error(t, c.Register(&fakeService{name: "second"}))
}

func TestContainerFactory(t *testing.T) {
	c := NewContainer()

	calls := 0
	require.NoError(t, c.RegisterFactory(func() (*fakeService, error) {
		calls++
		return &fakeService{name: "built"}, nil
	}))

	var svc *fakeService
	require.NoError(t, c.Resolve(&svc))
	assert.Equal(t, "built", svc.name)
	assert.Equal(t, 1, calls)
}

func TestContainerResolveMissing(t *testing.T) {
	c := NewContainer()

	var svc *fakeService
	assert.Error(t, c.Resolve(&svc))
}

func TestContainerClear(t *testing.T) {
	c := NewContainer()
	require.NoError(t, c.Register(&fakeService{name: "metrics"}))

	c.Clear()

	var svc *fakeService
	assert.Error(t, c.Resolve(&svc))
}

func TestRegisterAndResolveServices(t *testing.T) {
	c := NewContainer()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	require.NoError(t, RegisterServices(c, cfg))

	svc, err := ResolveServices(c)
	require.NoError(t, err)
	assert.NotNil(t, svc.Log)
	assert.NotNil(t, svc.Metrics)
	assert.NotNil(t, svc.Alerts)
	assert.NotNil(t, svc.DB)
}

func TestResolveServicesBeforeRegisterFails(t *testing.T) {
	c := NewContainer()
	_, err := ResolveServices(c)
	assert.Error(t, err)
}
