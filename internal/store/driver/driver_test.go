package driver

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/internal/config"
	"github.com/Premkambaliya/Hack-The-Winter/internal/metrics"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store/memory"
	"github.com/Premkambaliya/Hack-The-Winter/model"
)

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), &config.Config{StoreDriver: config.DriverMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, s)
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "sqlite"}, zap.NewNop())
	assert.ErrorContains(t, err, "sqlite")
}

func TestInstrument(t *testing.T) {
	m := metrics.New()
	mem := memory.New()
	assert.Same(t, mem, Instrument(mem, nil))

	s := Instrument(mem, m)
	_, err := s.FindOrganization(context.Background(), model.OrganizationTypeBloodBank, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.RecentAudit(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(m.StoreDuration))
}
