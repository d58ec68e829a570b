package app

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cesargomez89/synqed/internal/httpclient"
)

const maxArtworkBytes = 10 << 20

// ArtworkFetcher downloads thumbnails to embed as cover art.
type ArtworkFetcher struct {
	client *httpclient.Client
}

func NewArtworkFetcher(client *httpclient.Client) *ArtworkFetcher {
	if client == nil {
		client = httpclient.NewClient(nil, 0)
	}
	return &ArtworkFetcher{client: client}
}

func (f *ArtworkFetcher) Fetch(ctx context.Context, urlStr string) ([]byte, error) {
	if urlStr == "" {
		return nil, nil
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme: %s (only http/https allowed)", parsedURL.Scheme)
	}

	data, err := f.client.FetchBytes(ctx, urlStr, maxArtworkBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	return data, nil
}
