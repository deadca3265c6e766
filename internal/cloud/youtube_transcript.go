// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with Google Cloud services.
// This file implements the transcript client for YouTube videos. There is no
// official transcript API, so the client talks to the same endpoints the
// YouTube clients use and falls back through strategies that fail from
// different network positions:
//
// Primary:  ANDROID Innertube /player → captionTracks → timedtext XML.
//           Works from most cloud IP addresses.
// Fallback: Scrape the watch page HTML and extract the caption track URL from
//           the embedded ytInitialPlayerResponse JSON. Works from IPs where
//           /player answers LOGIN_REQUIRED.
//
// A video with captions disabled is an expected, per-video outcome: the
// client reports it as unavailable rather than an error, and the caller
// substitutes the video's title and description as analysis input.
//
// Structs:
//   - YouTubeTranscriptClient: Holds the HTTP client and language preferences.
//
// Functions:
//   - NewYouTubeTranscriptClient: Constructor for the transcript client.
//   - Fetch: Retrieves the transcript text for a video id.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/daZebra/dram-reviews/internal/core/model"
)

const (
	ytInnertubeURL   = "https://www.youtube.com/youtubei/v1/player"
	ytWatchURL       = "https://www.youtube.com/watch?v="
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
	ytBrowserUA      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	// ytInitialPlayerResponseMarker marks the start of the player response
	// JSON in watch page HTML.
	ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "
)

// --- ANDROID client types (/player endpoint) ---

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type innertubePlayerResp struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// --- Timedtext XML types ---

type ytTimedText struct {
	Lines []ytLine `xml:"text"`
}

type ytLine struct {
	Text string `xml:",chardata"`
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// YouTubeTranscriptClient fetches caption transcripts for YouTube videos.
type YouTubeTranscriptClient struct {
	httpClient *http.Client
	langs      []string // Preferred caption languages, in order.
}

// NewYouTubeTranscriptClient is the constructor for YouTubeTranscriptClient.
//
// Inputs:
//   - settings: The YouTube provider settings; RelevanceLanguage doubles as
//     the preferred caption language.
//
// Outputs:
//   - *YouTubeTranscriptClient: A pointer to the newly created client.
func NewYouTubeTranscriptClient(settings YouTubeSettings) *YouTubeTranscriptClient {
	langs := []string{"en"}
	if settings.RelevanceLanguage != "" {
		langs = []string{settings.RelevanceLanguage, "en"}
	}
	return &YouTubeTranscriptClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		langs:      langs,
	}
}

// Fetch retrieves the transcript text for a video, trying each strategy in
// order. The returned text has caption markup stripped and segments joined
// with single spaces.
//
// Inputs:
//   - ctx: The context for the HTTP calls.
//   - videoID: The YouTube video id.
//
// Outputs:
//   - string: The transcript text, or model.TranscriptUnavailable when no
//     strategy could produce one.
//   - error: An error when no strategy could produce a transcript. Captions
//     being disabled on the video surfaces here too; the caller decides
//     whether that is fatal.
func (c *YouTubeTranscriptClient) Fetch(ctx context.Context, videoID string) (string, error) {
	text, err := c.fetchViaPlayer(ctx, videoID)
	if err == nil {
		return text, nil
	}
	slog.Warn("transcript via player failed, trying watch page",
		"video_id", videoID, "error", err)

	text, err = c.fetchViaPageScrape(ctx, videoID)
	if err != nil {
		return model.TranscriptUnavailable, err
	}
	return text, nil
}

// fetchViaPlayer uses the ANDROID Innertube /player endpoint to list caption
// tracks, then downloads the best track as timedtext XML.
func (c *YouTubeTranscriptClient) fetchViaPlayer(ctx context.Context, videoID string) (string, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return "", err
	}

	resp, err := retryHTTP(ctx, DefaultHTTPRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytInnertubeURL+"?prettyPrint=false", bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return c.httpClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("android innertube: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var playerResp innertubePlayerResp
	if err := json.NewDecoder(resp.Body).Decode(&playerResp); err != nil {
		return "", fmt.Errorf("decode player: %w", err)
	}
	if playerResp.Captions == nil {
		reason := ""
		if playerResp.PlayabilityStatus != nil {
			reason = playerResp.PlayabilityStatus.Reason
		}
		if reason != "" {
			return "", fmt.Errorf("captions unavailable: %s", reason)
		}
		return "", errors.New("no captions in player response")
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", errors.New("no caption tracks")
	}
	track, ok := pickBestTrack(tracks, c.langs)
	if !ok {
		return "", errors.New("all caption tracks require a browser session")
	}
	return c.fetchTimedText(ctx, track.BaseURL)
}

// fetchViaPageScrape downloads the video watch page and extracts the caption
// track URL from the embedded ytInitialPlayerResponse JSON.
func (c *YouTubeTranscriptClient) fetchViaPageScrape(ctx context.Context, videoID string) (string, error) {
	resp, err := retryHTTP(ctx, DefaultHTTPRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ytWatchURL+videoID, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", ytBrowserUA)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return "", fmt.Errorf("read watch page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return "", errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return "", errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return "", fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if playerResp.Captions == nil {
		return "", errors.New("no captions in ytInitialPlayerResponse")
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", errors.New("no caption tracks in watch page")
	}
	track, ok := pickBestTrack(tracks, c.langs)
	if !ok {
		return "", errors.New("all caption tracks require a browser session")
	}
	return c.fetchTimedText(ctx, track.BaseURL)
}

// fetchTimedText downloads and parses a timedtext XML caption URL into plain
// text.
func (c *YouTubeTranscriptClient) fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	resp, err := retryHTTP(ctx, DefaultHTTPRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", ytBrowserUA)
		return c.httpClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", err
	}

	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		text := strings.TrimSpace(htmlTagRe.ReplaceAllString(line.Text, ""))
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}
	return sb.String(), nil
}

// needsBrowserSession reports whether a caption track URL requires a
// browser-issued proof-of-origin token. Tracks with &exp=xpe cannot be
// fetched server-side.
func needsBrowserSession(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language
// preferences: a manual track in a preferred language, then an auto-generated
// track in a preferred language, then any English track, then whatever is
// left.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsBrowserSession(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return tracks[0], false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by
// tracking brace depth while respecting string literals.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}
