package model

// CopyKind selects the prompt used for copy generation
type CopyKind string

const (
	CopyAnniversaryLetter CopyKind = "anniversary_letter"
	CopyWeddingInvitation CopyKind = "wedding_invitation"
	CopyThankYou          CopyKind = "thank_you"
	CopyVow               CopyKind = "vow"
	CopySNSCaption        CopyKind = "sns_caption"
)

var copyKinds = []string{"anniversary_letter", "wedding_invitation", "thank_you", "vow", "sns_caption"}

const (
	MaxChatMessages      = 20
	MaxChatMessageLength = 4000
	MaxCopyDetailsLength = 2000
)

// CopyRequest asks for a piece of generated writing
type CopyRequest struct {
	Kind    string `json:"kind"`
	Tone    string `json:"tone,omitempty"`
	Details string `json:"details,omitempty"`
}

// Validate checks kind and tone against the supported prompt set.
func (r *CopyRequest) Validate() []FieldError {
	var f fieldErrors
	if f.required("kind", r.Kind) {
		f.oneOf("kind", &r.Kind, copyKinds...)
	}
	f.oneOf("tone", nilIfBlank(r.Tone), "warm", "playful", "formal", "poetic")
	f.maxLen("details", &r.Details, MaxCopyDetailsLength)
	return f.result()
}

// ChatMessage is one turn of a chatbot conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the conversation so far; the last message must come from the user.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// Validate bounds the history and rejects unknown roles or empty turns.
func (r *ChatRequest) Validate() []FieldError {
	var f fieldErrors
	switch {
	case len(r.Messages) == 0:
		f.add("messages", "messages is required")
	case len(r.Messages) > MaxChatMessages:
		f.add("messages", "at most 20 messages are allowed")
	}
	for i := range r.Messages {
		m := &r.Messages[i]
		if m.Role != "user" && m.Role != "assistant" {
			f.add("messages", "role must be user or assistant")
			break
		}
		if m.Content == "" || len([]rune(m.Content)) > MaxChatMessageLength {
			f.add("messages", "content must be between 1 and 4000 characters")
			break
		}
	}
	if len(r.Messages) > 0 && r.Messages[len(r.Messages)-1].Role != "user" {
		f.add("messages", "the last message must come from the user")
	}
	return f.result()
}

// GeneratedText is the response of both AI endpoints
type GeneratedText struct {
	Text string `json:"text"`
}

func nilIfBlank(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
