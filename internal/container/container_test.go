package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instviz/internal/config"
	"instviz/internal/logging"
)

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestNewWiresComponents(t *testing.T) {
	cfg := config.Default()
	cfg.Server.GinMode = "test"

	c, err := New(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.True(t, c.Store.Enabled())
	w, h := c.Renderer.Size()
	assert.Equal(t, cfg.Render.Width, w)
	assert.Equal(t, cfg.Render.Height, h)

	srv, err := c.Server()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDisabledStore(t *testing.T) {
	cfg := config.Default()
	cfg.Server.GinMode = "test"
	cfg.Report.CacheMB = 0

	c, err := New(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.False(t, c.Store.Enabled())
}
