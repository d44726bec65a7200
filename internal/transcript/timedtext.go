package transcript

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is YouTube's caption endpoint. It serves caption tracks as
// XML and, with type=list, the set of available tracks for a video.
const DefaultBaseURL = "https://video.google.com/timedtext"

// timedText mirrors the XML document returned for a single caption track
type timedText struct {
	XMLName xml.Name       `xml:"transcript"`
	Entries []timedTextRow `xml:"text"`
}

type timedTextRow struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Text  string  `xml:",chardata"`
}

// trackList mirrors the XML document returned by type=list
type trackList struct {
	XMLName xml.Name `xml:"transcript_list"`
	Tracks  []track  `xml:"track"`
}

type track struct {
	LangCode string `xml:"lang_code,attr"`
	Kind     string `xml:"kind,attr"`
	Name     string `xml:"name,attr"`
}

// Client fetches caption transcripts from the YouTube timedtext endpoint
type Client struct {
	baseURL string
	http    *http.Client
	cache   *Cache
	log     *logrus.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the timedtext endpoint (used in tests)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithCache enables the on-disk transcript cache
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a transcript client
func NewClient(log *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the caption transcript for a video. It tries the cache
// first, then an English track directly, then falls back to listing the
// available tracks and picking the first English variant.
func (c *Client) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	// Reuse a previously saved transcript when available
	if c.cache != nil {
		if text, ok := c.cache.Lookup(videoID); ok {
			c.log.WithField("video_id", videoID).Info("transcript loaded from cache")
			return &Transcript{
				VideoID:   videoID,
				Text:      text,
				Cached:    true,
				FetchedAt: time.Now().UTC(),
			}, nil
		}
	}

	entries, lang, err := c.fetchTrack(ctx, videoID, "en", "")
	if err != nil && !errors.Is(err, ErrUnavailable) {
		return nil, err
	}

	// No direct English track; list what the video offers and pick the
	// first English variant (en, en-US, en-GB, ...)
	if len(entries) == 0 {
		tr, listErr := c.listTracks(ctx, videoID)
		if listErr != nil {
			return nil, listErr
		}

		var chosen *track
		for i := range tr {
			if strings.Contains(tr[i].LangCode, "en") {
				chosen = &tr[i]
				break
			}
		}
		if chosen == nil {
			return nil, fmt.Errorf("%w: no english captions for video %s", ErrUnavailable, videoID)
		}

		entries, lang, err = c.fetchTrack(ctx, videoID, chosen.LangCode, chosen.Name)
		if err != nil {
			return nil, err
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: captions disabled for video %s", ErrUnavailable, videoID)
	}

	segments := MergeSegments(entries)
	text := Render(segments)

	if c.cache != nil {
		if path, err := c.cache.Save(videoID, text); err != nil {
			c.log.WithError(err).Warn("could not save transcript to cache")
		} else {
			c.log.WithFields(logrus.Fields{"video_id": videoID, "path": path}).Debug("transcript cached")
		}
	}

	return &Transcript{
		VideoID:   videoID,
		Segments:  segments,
		Text:      text,
		Language:  lang,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// fetchTrack downloads and parses one caption track. An empty document means
// the track does not exist, reported as ErrUnavailable.
func (c *Client) fetchTrack(ctx context.Context, videoID, lang, name string) ([]Segment, string, error) {
	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", lang)
	if name != "" {
		params.Set("name", name)
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, "", err
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, "", fmt.Errorf("%w: no %s track for video %s", ErrUnavailable, lang, videoID)
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, "", fmt.Errorf("%w: malformed caption document: %v", ErrProvider, err)
	}

	segments := make([]Segment, 0, len(doc.Entries))
	for _, row := range doc.Entries {
		text := strings.TrimSpace(html.UnescapeString(row.Text))
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Start: row.Start,
			End:   row.Start + row.Dur,
			Text:  text,
		})
	}

	return segments, lang, nil
}

// listTracks returns the caption tracks available for a video
func (c *Client) listTracks(ctx context.Context, videoID string) ([]track, error) {
	params := url.Values{}
	params.Set("v", videoID)
	params.Set("type", "list")

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("%w: no caption tracks for video %s", ErrUnavailable, videoID)
	}

	var doc trackList
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed track list: %v", ErrProvider, err)
	}

	return doc.Tracks, nil
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Preserve deadline errors so callers can report a timeout
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: endpoint returned %d", ErrProvider, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	return body, nil
}
