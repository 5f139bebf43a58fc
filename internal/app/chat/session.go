// Package chat manages the DJ assistant conversation.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/moodtunes/moodtunes/internal/infra/genai"
)

// apologyText is appended as the assistant's reply when a stream fails,
// so the conversation stays usable.
const apologyText = "I encountered a minor frequency interference. Please try asking again."

// Errors
var (
	ErrBlankMessage = errors.New("chat message is blank")
	ErrTurnInFlight = errors.New("a chat turn is already in flight")
)

// Streamer produces a streamed reply for a conversation turn.
type Streamer interface {
	StreamChat(ctx context.Context, model, system string, history []genai.Message, message string) (<-chan genai.Chunk, error)
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "model"
)

// Message is one entry of the conversation transcript.
type Message struct {
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Session holds an ordered conversation with the DJ assistant. One turn
// may be in flight at a time.
type Session struct {
	mu       sync.Mutex
	client   Streamer
	model    string
	system   string
	messages []Message
	inFlight bool
	now      func() time.Time
}

// NewSession creates a conversation for the given listener name.
func NewSession(client Streamer, model, username string) *Session {
	if username == "" {
		username = "listener"
	}
	system := "You are DJ Mood, the upbeat radio host of the MoodTunes station. " +
		"You are talking with " + username + ". Keep replies short, warm and music savvy. " +
		"Suggest moods, artists or tracks when it helps the conversation."
	return &Session{
		client: client,
		model:  model,
		system: system,
		now:    time.Now,
	}
}

// Send submits one user message and returns a channel of ordered reply
// chunks. The channel is closed once the reply is complete and recorded
// in the transcript. If the stream fails midway, a fixed apology is
// recorded as the assistant's reply instead and the conversation remains
// usable.
func (s *Session) Send(ctx context.Context, input string) (<-chan string, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, ErrBlankMessage
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	s.inFlight = true
	history := make([]genai.Message, 0, len(s.messages))
	for _, m := range s.messages {
		history = append(history, genai.Message{Role: string(m.Role), Text: m.Text})
	}
	s.messages = append(s.messages, Message{Role: RoleUser, Text: text, Timestamp: s.now().UnixMilli()})
	s.mu.Unlock()

	chunks, err := s.client.StreamChat(ctx, s.model, s.system, history, text)
	if err != nil {
		zlog.Error().Msgf("chat: failed to start stream: %v", err)
		s.finishTurn(apologyText)
		out := make(chan string, 1)
		out <- apologyText
		close(out)
		return out, nil
	}

	out := make(chan string, 8)
	go s.relay(chunks, out)
	return out, nil
}

// relay forwards stream chunks to the caller and records the assembled
// reply once the stream ends.
func (s *Session) relay(chunks <-chan genai.Chunk, out chan<- string) {
	defer close(out)

	var sb strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			zlog.Error().Msgf("chat: stream failed: %v", chunk.Err)
			s.finishTurn(apologyText)
			out <- apologyText
			return
		}
		sb.WriteString(chunk.Text)
		out <- chunk.Text
	}

	reply := sb.String()
	if reply == "" {
		reply = apologyText
		out <- apologyText
	}
	s.finishTurn(reply)
}

// finishTurn records the assistant reply and releases the in-flight guard.
func (s *Session) finishTurn(reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{Role: RoleAssistant, Text: reply, Timestamp: s.now().UnixMilli()})
	s.inFlight = false
}

// Messages returns a copy of the conversation transcript in order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Message, len(s.messages))
	copy(result, s.messages)
	return result
}

// Reset clears the transcript, e.g. on logout.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.inFlight = false
}
