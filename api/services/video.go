package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const youTubeBaseURL = "https://www.googleapis.com"

// VideoResolver finds a video for a search query. Lookups are best effort:
// found is false when nothing matched.
type VideoResolver interface {
	Resolve(ctx context.Context, query string) (videoID string, found bool, err error)
}

// MockVideoResolver derives a stable fake id from the query
type MockVideoResolver struct {
	Delay time.Duration
}

func (m *MockVideoResolver) Resolve(ctx context.Context, query string) (string, bool, error) {
	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-t.C:
		}
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false, nil
	}
	id := strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceURL, []byte(query)).String(), "-", "")
	return id[:11], true, nil
}

// YouTubeResolver searches the YouTube Data API
type YouTubeResolver struct {
	apiKey string
	client *resty.Client
}

func NewYouTubeResolver(apiKey, baseURL string) *YouTubeResolver {
	if baseURL == "" {
		baseURL = youTubeBaseURL
	}
	return &YouTubeResolver{
		apiKey: apiKey,
		client: resty.New().SetBaseURL(baseURL).SetTimeout(15 * time.Second),
	}
}

func (y *YouTubeResolver) Resolve(ctx context.Context, query string) (string, bool, error) {
	var result struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}

	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part":       "snippet",
			"type":       "video",
			"maxResults": "1",
			"q":          query,
			"key":        y.apiKey,
		}).
		SetResult(&result).
		Get("/youtube/v3/search")
	if err != nil {
		return "", false, fmt.Errorf("failed to search videos: %w", err)
	}
	if resp.IsError() {
		return "", false, fmt.Errorf("YouTube API error (%d): %s", resp.StatusCode(), resp.String())
	}

	for _, item := range result.Items {
		if item.ID.VideoID != "" {
			return item.ID.VideoID, true, nil
		}
	}
	return "", false, nil
}

var youTubeURL = regexp.MustCompile(`^.*(youtu.be\/|v\/|u\/\w\/|embed\/|watch\?v=|&v=)([^#&?]*).*`)

// ExtractYouTubeVideoID pulls the 11 character video id out of a YouTube URL
func ExtractYouTubeVideoID(url string) (string, bool) {
	m := youTubeURL.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return "", false
	}
	return m[2], true
}

func YouTubeEmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID
}
