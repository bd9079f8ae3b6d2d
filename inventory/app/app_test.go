package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/book-inventory/inventory/config"
	"github.com/Astemirdum/book-inventory/pkg/mongodb"
	"github.com/Astemirdum/book-inventory/pkg/postgres"
)

const listing = `<html><body>
<article class="product_pod">
  <h3><a title="A Light in the Attic">A Light in the ...</a></h3>
  <p class="price_color">£51.77</p>
  <p class="instock availability"> In stock </p>
</article>
<ul class="pager"><li class="current">Page 1 of 1</li></ul>
</body></html>`

func TestNewRepository_MissingConnection(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		driver  string
		wantErr error
	}{
		{name: "mongo", driver: "mongo", wantErr: mongodb.ErrNoURI},
		{name: "postgres", driver: "postgres", wantErr: postgres.ErrNoDSN},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &config.Config{}
			cfg.Storage.Driver = tt.driver
			_, _, err := NewRepository(context.Background(), cfg, zap.NewNop())
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestScrape_DryRun(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listing))
	}))
	t.Cleanup(srv.Close)

	// no storage configured: a dry run never opens the store
	cfg := &config.Config{}
	res, err := Scrape(context.Background(), cfg, ScrapeOptions{DryRun: true, BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, ScrapeResult{Pages: 1, Books: 1}, res)
}

func TestScrape_NoStore(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Storage.Driver = "mongo"
	_, err := Scrape(context.Background(), cfg, ScrapeOptions{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	require.ErrorIs(t, err, mongodb.ErrNoURI)
}
