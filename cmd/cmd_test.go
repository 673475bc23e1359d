package cmd

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"pcadmin/core/metrics"
	"pcadmin/core/middleware/auth"
	"pcadmin/feature/contentsync"
	"pcadmin/feature/dnssync"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewApp_Metrics(t *testing.T) {
	m := metrics.New(metrics.Config{})
	m.IncSyncRun(metrics.SyncDNS, true)

	t.Run("Protected", func(t *testing.T) {
		app := newApp("secret", false, m, zap.NewNop())

		resp, err := app.Test(httptest.NewRequest("GET", metricsPath, nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)

		req := httptest.NewRequest("GET", metricsPath, nil)
		req.Header.Set(auth.HeaderName, "secret")
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "pcadmin_sync_runs_total")
	})

	t.Run("Public", func(t *testing.T) {
		app := newApp("secret", true, m, zap.NewNop())

		resp, err := app.Test(httptest.NewRequest("GET", metricsPath, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest("GET", "/runs", nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})
}

func newFlagCommand(register func(*cobra.Command)) *cobra.Command {
	c := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	register(c)
	return c
}

func TestApplyContentFlags(t *testing.T) {
	c := newFlagCommand(func(c *cobra.Command) {
		c.Flags().AddFlagSet(contentSyncCmd.Flags())
	})
	require.NoError(t, c.ParseFlags([]string{"--bucket", "other", "--stage-locally"}))

	cfg := contentsync.Config{Bucket: "images", Library: "templates", Suffixes: "ova,iso", AutoGrant: true}
	applyContentFlags(c, &cfg)

	assert.Equal(t, "other", cfg.Bucket)
	assert.True(t, cfg.StageLocally)
	assert.Equal(t, "templates", cfg.Library)
	assert.Equal(t, "ova,iso", cfg.Suffixes)
	assert.True(t, cfg.AutoGrant)
}

func TestApplyDNSFlags(t *testing.T) {
	c := newFlagCommand(func(c *cobra.Command) {
		c.Flags().AddFlagSet(dnsSyncCmd.Flags())
	})
	require.NoError(t, c.ParseFlags([]string{"--ttl", "60", "--dry-run", "--powered-on-only"}))

	cfg := dnssync.Config{ForwardDomain: "multicloud.internal", TTL: 301}
	applyDNSFlags(c, &cfg)

	assert.Equal(t, 60, cfg.TTL)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.PoweredOnOnly)
	assert.Equal(t, "multicloud.internal", cfg.ForwardDomain)
	assert.False(t, cfg.PurgeOnly)
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	Version = "1.2.3"
	t.Cleanup(func() { Version = "" })

	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "pcadmin 1.2.3\n", out.String())
}
