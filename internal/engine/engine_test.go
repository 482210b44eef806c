package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsIndexer/internal/domain"
)

type stubSubmitter struct {
	name string
	tag  string
}

func (s stubSubmitter) Name() string { return s.name }

func (s stubSubmitter) Submit(ctx context.Context, pageURL string) domain.IndexingResult {
	return domain.Succeeded(s.name, s.tag)
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubSubmitter{name: "Google Indexing API"})
	reg.Register(stubSubmitter{name: "Bing Webmaster API"})
	reg.Register(stubSubmitter{name: "Sitemap"})
	reg.Register(stubSubmitter{name: "Bing Webmaster API", tag: "replaced"})

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "Google Indexing API", all[0].Name())
	assert.Equal(t, "Bing Webmaster API", all[1].Name())
	assert.Equal(t, "Sitemap", all[2].Name())

	bing, err := reg.Resolve("Bing Webmaster API")
	require.NoError(t, err)
	assert.Equal(t, "replaced", bing.Submit(context.Background(), "https://x").Response)
}

func TestRegistryResolveUnknown(t *testing.T) {
	t.Parallel()

	var reg Registry
	_, err := reg.Resolve("Yahoo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Yahoo")
}
