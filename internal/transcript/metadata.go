package transcript

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Metadata holds display details about a video from the YouTube Data API
type Metadata struct {
	Title    string `json:"title"`
	Channel  string `json:"channel"`
	Duration string `json:"duration"`
}

// MetadataClient looks up video details through the YouTube Data API. It is
// optional; the service runs without it when no API key is configured.
type MetadataClient struct {
	svc *youtube.Service
	log *logrus.Logger
}

// NewMetadataClient creates a metadata client with the given API key
func NewMetadataClient(ctx context.Context, apiKey string, log *logrus.Logger) (*MetadataClient, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	return &MetadataClient{svc: svc, log: log}, nil
}

// Lookup fetches title, channel, and duration for a video ID
func (m *MetadataClient) Lookup(ctx context.Context, videoID string) (*Metadata, error) {
	resp, err := m.svc.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("video lookup failed: %w", err)
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	item := resp.Items[0]
	meta := &Metadata{}
	if item.Snippet != nil {
		meta.Title = item.Snippet.Title
		meta.Channel = item.Snippet.ChannelTitle
	}
	if item.ContentDetails != nil {
		meta.Duration = item.ContentDetails.Duration
	}

	return meta, nil
}
