package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"pairon-backend/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
)

// Predefined advisor service errors
var (
	ErrAIDisabled      = errors.New("AI advisor is disabled: no model API key configured")
	ErrSessionNotFound = errors.New("advisor session not found")
	ErrEmptyMessage    = errors.New("message must not be empty")
)

const defaultAdvisorModel = "gemini-2.0-flash"

// viewTagPattern matches the inline reference convention the model is
// instructed to use when recommending a saved record. Parsing must never
// fail on malformed output, so anything that doesn't match is left alone.
var viewTagPattern = regexp.MustCompile(`\[VIEW_ID:\s*([^\[\]]*?)\s*\]`)

// ChatRole identifies the author of a chat turn
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// PhoneRef is a clickable record summary rendered inline in a reply
type PhoneRef struct {
	ID    uuid.UUID `json:"id"`
	Brand string    `json:"brand"`
	Model string    `json:"model"`
	Chip  string    `json:"chip"`
	Price string    `json:"price"`
}

// ChatMessage is one turn of an advisor conversation
type ChatMessage struct {
	Role      ChatRole   `json:"role"`
	Text      string     `json:"text"`
	Refs      []PhoneRef `json:"refs,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// AdvisorSession is an ephemeral, in-memory chat session. It is destroyed
// by an explicit delete ("new chat"), never by a process-level reset.
type AdvisorSession struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Language  string        `json:"language"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`

	// mu serializes turns on this session: the genai chat history is not
	// safe for concurrent SendMessage calls.
	mu   sync.Mutex
	chat *genai.ChatSession
}

// snapshot copies the session state for serialization so callers never
// hold a reference that a concurrent turn mutates.
func (s *AdvisorSession) snapshot() *AdvisorSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &AdvisorSession{
		ID:        s.ID,
		UserID:    s.UserID,
		Language:  s.Language,
		Messages:  append([]ChatMessage(nil), s.Messages...),
		CreatedAt: s.CreatedAt,
	}
}

// apologyMessages is the localized synthetic turn appended when a model
// call fails. The session stays usable for the next attempt.
var apologyMessages = map[string]string{
	"en": "Sorry, I couldn't process that message. Please try again.",
	"tr": "Üzgünüm, bu mesajı işleyemedim. Lütfen tekrar deneyin.",
}

// AdvisorService owns advisor chat sessions and the Gemini integration
type AdvisorService struct {
	geminiClient *genai.Client
	modelName    string
	phoneStore   PhoneStore

	mu       sync.Mutex
	sessions map[uuid.UUID]*AdvisorSession
}

// AdvisorServiceOption is a functional option for AdvisorService
type AdvisorServiceOption func(*AdvisorService)

// AdvisorWithGeminiClient sets the Gemini client; a nil client disables
// the advisor gracefully instead of crashing.
func AdvisorWithGeminiClient(client *genai.Client) AdvisorServiceOption {
	return func(s *AdvisorService) {
		s.geminiClient = client
	}
}

// AdvisorWithModel sets the Gemini model name
func AdvisorWithModel(name string) AdvisorServiceOption {
	return func(s *AdvisorService) {
		s.modelName = name
	}
}

// AdvisorWithPhoneStore sets the phone store used for prompt snapshots
// and reference resolution
func AdvisorWithPhoneStore(store PhoneStore) AdvisorServiceOption {
	return func(s *AdvisorService) {
		s.phoneStore = store
	}
}

// NewAdvisorService creates a new advisor service
func NewAdvisorService(opts ...AdvisorServiceOption) *AdvisorService {
	s := &AdvisorService{
		modelName: defaultAdvisorModel,
		sessions:  make(map[uuid.UUID]*AdvisorSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether the advisor has a model client configured
func (s *AdvisorService) Enabled() bool {
	return s.geminiClient != nil
}

// CreateSessionRequest represents a request to open an advisor session
type CreateSessionRequest struct {
	UserID   uuid.UUID
	UserName string
	Language string
}

// CreateSessionResult represents the result of opening a session
type CreateSessionResult struct {
	Session *AdvisorSession
}

// CreateSession opens a chat session whose system instruction embeds a
// snapshot of the user's current collection.
func (s *AdvisorService) CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResult, error) {
	if s.geminiClient == nil {
		return nil, ErrAIDisabled
	}

	phones, err := s.phoneStore.ListByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if _, ok := apologyMessages[language]; !ok {
		language = "en"
	}

	model := s.geminiClient.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(buildSystemPrompt(req.UserName, language, phones))},
	}

	session := &AdvisorSession{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Language:  language,
		Messages:  []ChatMessage{},
		CreatedAt: time.Now(),
		chat:      model.StartChat(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return &CreateSessionResult{Session: session.snapshot()}, nil
}

// buildSystemPrompt serializes a trimmed snapshot of the collection into
// the advisor's system instruction. The snapshot deliberately carries only
// the fields the advisor needs to reason about recommendations.
func buildSystemPrompt(userName, language string, phones []*models.Phone) string {
	var b strings.Builder

	b.WriteString("You are PairOn's smartphone advisor. ")
	if userName != "" {
		fmt.Fprintf(&b, "You are talking to %s. ", userName)
	}
	fmt.Fprintf(&b, "Answer in the language with code %q. ", language)
	b.WriteString("Help the user compare and choose between the phones they have saved. ")
	b.WriteString("When you recommend a specific saved phone, append a tag of the exact form ")
	b.WriteString("[VIEW_ID: <id>] to your reply for each recommended phone, using the ids below. ")
	b.WriteString("Do not invent ids and do not mention the tags themselves.\n\n")

	if len(phones) == 0 {
		b.WriteString("The user has no saved phones yet.\n")
		return b.String()
	}

	b.WriteString("The user's saved phones:\n")
	for _, p := range phones {
		fmt.Fprintf(&b, "- id=%s: %s %s", p.ID, p.Brand, p.Model)
		if p.Chip != "" {
			fmt.Fprintf(&b, ", chip: %s", p.Chip)
		}
		if p.Battery.Capacity != "" {
			fmt.Fprintf(&b, ", battery: %s", p.Battery.Capacity)
		}
		if p.Battery.WiredSpec != "" {
			fmt.Fprintf(&b, ", wired charging: %s", p.Battery.WiredSpec)
		}
		if d := p.PrimaryDisplay(); d != nil {
			fmt.Fprintf(&b, ", display: %s %s %s", d.Size, d.Type, d.RefreshRate)
		}
		if c := p.PrimaryCamera(); c != nil {
			fmt.Fprintf(&b, ", camera: %s MP %s", c.Megapixels, c.Type)
		}
		if p.Price != "" {
			fmt.Fprintf(&b, ", price: %s", p.Price)
		}
		if p.LaunchDate != "" {
			fmt.Fprintf(&b, ", launched: %s", p.LaunchDate)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// SendMessageRequest represents one user turn
type SendMessageRequest struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Text      string
}

// SendMessageResult carries the assistant's reply turn
type SendMessageResult struct {
	Reply ChatMessage
}

// SendMessage sends a single prompt/response turn to the model. A model
// failure produces a synthetic localized apology turn; the session itself
// remains usable for the next message.
func (s *AdvisorService) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResult, error) {
	if s.geminiClient == nil {
		return nil, ErrAIDisabled
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	session, ok := s.sessions[req.SessionID]
	s.mu.Unlock()
	if !ok || session.UserID != req.UserID {
		return nil, ErrSessionNotFound
	}

	// One turn at a time per session; concurrent requests queue here
	session.mu.Lock()
	defer session.mu.Unlock()

	userTurn := ChatMessage{Role: RoleUser, Text: req.Text, CreatedAt: time.Now()}

	resp, err := session.chat.SendMessage(ctx, genai.Text(req.Text))
	if err != nil {
		log.Printf("Warning: advisor model call failed for session %s: %v", session.ID, err)
		reply := ChatMessage{
			Role:      RoleAssistant,
			Text:      apologyMessages[session.Language],
			CreatedAt: time.Now(),
		}
		session.Messages = append(session.Messages, userTurn, reply)
		return &SendMessageResult{Reply: reply}, nil
	}

	text, ids := ParseViewTags(responseText(resp))
	refs := s.resolveRefs(ctx, req.UserID, ids)

	reply := ChatMessage{
		Role:      RoleAssistant,
		Text:      text,
		Refs:      refs,
		CreatedAt: time.Now(),
	}
	session.Messages = append(session.Messages, userTurn, reply)

	return &SendMessageResult{Reply: reply}, nil
}

// responseText flattens the model reply into plain text
func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}

// ParseViewTags extracts every [VIEW_ID: <id>] tag from a model reply,
// preserving order and duplicates, and returns the reply with the tags
// stripped. Malformed or missing tags never produce an error.
func ParseViewTags(text string) (string, []string) {
	matches := viewTagPattern.FindAllStringSubmatch(text, -1)

	var ids []string
	for _, m := range matches {
		if id := strings.TrimSpace(m[1]); id != "" {
			ids = append(ids, id)
		}
	}

	cleaned := viewTagPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(cleaned), ids
}

// resolveRefs maps extracted ids onto the user's current collection.
// Ids that no longer resolve (deleted records, model hallucinations) are
// dropped silently rather than rendered as broken links.
func (s *AdvisorService) resolveRefs(ctx context.Context, userID uuid.UUID, ids []string) []PhoneRef {
	if len(ids) == 0 {
		return nil
	}

	phones, err := s.phoneStore.ListByUserID(ctx, userID)
	if err != nil {
		log.Printf("Warning: failed to resolve advisor references: %v", err)
		return nil
	}

	byID := make(map[uuid.UUID]*models.Phone, len(phones))
	for _, p := range phones {
		byID[p.ID] = p
	}

	var refs []PhoneRef
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		p, ok := byID[id]
		if !ok {
			continue
		}
		refs = append(refs, PhoneRef{
			ID:    p.ID,
			Brand: p.Brand,
			Model: p.Model,
			Chip:  p.Chip,
			Price: p.Price,
		})
	}

	return refs
}

// GetSessionRequest represents a request for a session's history
type GetSessionRequest struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

// GetSessionResult carries the session and its message history
type GetSessionResult struct {
	Session *AdvisorSession
}

// GetSession returns an owned session's history
func (s *AdvisorService) GetSession(req GetSessionRequest) (*GetSessionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[req.SessionID]
	if !ok || session.UserID != req.UserID {
		return nil, ErrSessionNotFound
	}

	return &GetSessionResult{Session: session.snapshot()}, nil
}

// DeleteSession disposes a session ("new chat"). Idempotent for sessions
// that are already gone.
func (s *AdvisorService) DeleteSession(req GetSessionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[req.SessionID]
	if !ok {
		return nil
	}
	if session.UserID != req.UserID {
		return ErrSessionNotFound
	}

	delete(s.sessions, req.SessionID)
	return nil
}
