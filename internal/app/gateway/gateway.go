// Package gateway provides the mood recommendation gateway: it builds
// requests to the external generation service and normalizes the untrusted
// responses into the domain Track shape.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/moodtunes/moodtunes/internal/domain/mood"
	"github.com/moodtunes/moodtunes/internal/domain/track"
	"github.com/moodtunes/moodtunes/internal/infra/genai"
)

// TextGenerator defines the generation service operations the gateway needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, prompt string, opts genai.GenerateOptions) (string, error)
}

// Settings represents the gateway's provider settings.
type Settings struct {
	Model      string `mapstructure:"model" default:"gemini-3-flash-preview"`
	TrackCount int    `mapstructure:"track_count" default:"30" validate:"gte=1,lte=50"`
}

// Gateway talks to the external generation service. All transport and parse
// failures are absorbed here: callers receive an empty playlist or the
// fallback mood, never an error.
type Gateway struct {
	client   TextGenerator
	settings *Settings
	now      func() time.Time
}

// New creates a gateway with settings decoded from the config map.
func New(client TextGenerator, settings map[string]any) (*Gateway, error) {
	if client == nil {
		return nil, errors.New("generation client is required")
	}

	var s Settings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&s); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(s); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &Gateway{
		client:   client,
		settings: &s,
		now:      time.Now,
	}, nil
}

// rawTrack is the untrusted per-item shape returned by the service.
type rawTrack struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	VideoID string `json:"videoId"`
	Genre   string `json:"genre"`
}

// GeneratePlaylist asks the service for song suggestions for a mood and
// normalizes the response. On any failure it returns an empty slice so the
// caller can show an empty state instead of crashing.
func (g *Gateway) GeneratePlaylist(ctx context.Context, m mood.Mood) []track.Track {
	prompt := g.playlistPrompt(m)

	text, err := g.client.GenerateText(ctx, g.settings.Model, prompt, genai.GenerateOptions{JSONResponse: true})
	if err != nil {
		zlog.Error().Msgf("gateway: playlist generation failed: mood=%s error=%v", m, err)
		return []track.Track{}
	}

	var raw []rawTrack
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		zlog.Error().Msgf("gateway: failed to parse playlist response: mood=%s error=%v", m, err)
		return []track.Track{}
	}

	batch := g.now().UnixMilli()
	tracks := make([]track.Track, 0, len(raw))
	for i, r := range raw {
		tracks = append(tracks, normalize(r, m, i, batch))
	}
	return tracks
}

// DetectMood classifies free text into one of the six mood labels. An
// out-of-domain answer or any failure maps to the default mood.
func (g *Gateway) DetectMood(ctx context.Context, text string) mood.Mood {
	prompt := fmt.Sprintf("Analyze user sentiment: %q.\nMap this to one of: Happy, Sad, Motivational, Sleep, Anger, Chill.\nReturn only the name of the mood.", text)

	answer, err := g.client.GenerateText(ctx, g.settings.Model, prompt, genai.GenerateOptions{})
	if err != nil {
		zlog.Error().Msgf("gateway: mood detection failed, using fallback: error=%v", err)
		return mood.Default
	}

	detected, ok := mood.Parse(answer)
	if !ok {
		zlog.Debug().Msgf("gateway: classifier returned out-of-domain label %q, using fallback", answer)
		return mood.Default
	}
	return detected
}

// playlistPrompt builds the curation instruction for a mood.
func (g *Gateway) playlistPrompt(m mood.Mood) string {
	return fmt.Sprintf(`Act as a high-end Music Curator and Backend API.
Generate a JSON list of %d of the absolute most viewed, iconic, and legendary songs for a %s mood.

CRITICAL REQUIREMENTS:
1. Return exactly %d tracks as a JSON array of objects with keys "title", "artist", "videoId", "genre".
2. Include the REAL YouTube Video ID (11 characters) for each song.
3. Ensure they are the official music videos or high-quality audio uploads with billions/millions of views.
4. Mood mapping:
   - Sad: Emotional ballads, soul, acoustic.
   - Happy: Pop hits, disco, feel-good anthems.
   - Motivational: Rock, workout beats, high-tempo pop.
   - Sleep: Ambient, lofi, soft piano, nature-infused.
   - Anger: Metal, grunge, aggressive hip-hop.
   - Chill: Lo-fi hip hop, jazz-hop, indie-pop.`,
		g.settings.TrackCount, m, g.settings.TrackCount)
}

// normalize converts an untrusted response item into a well-typed Track,
// substituting defaults for every missing field. The synthetic ID is unique
// only within one generation batch.
func normalize(r rawTrack, m mood.Mood, index int, batch int64) track.Track {
	title := r.Title
	if title == "" {
		title = "Unknown Title"
	}
	artist := r.Artist
	if artist == "" {
		artist = "Unknown Artist"
	}
	videoID := r.VideoID
	if !track.ValidVideoID(videoID) {
		videoID = track.FallbackVideoID
	}
	genre := r.Genre
	if genre == "" {
		genre = m.DefaultGenre()
	}

	return track.Track{
		ID:          fmt.Sprintf("%s-%d-%d", m, index, batch),
		Title:       title,
		Artist:      artist,
		AlbumArtURL: track.AlbumArtFor(title, artist),
		VideoID:     videoID,
		Genre:       genre,
	}
}
