package model

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	// Greeting seeds every new conversation.
	Greeting = "Hello! I'm your cost-optimized AI assistant. Give me a task, and I'll intelligently route it to the most efficient model."

	// FallbackNotice replaces the reply when the routing service could not be reached.
	FallbackNotice = "⚠️ Error connecting to the backend router. Is the routing service running?"
)

// Meta describes how the routing service handled a turn. Values are opaque and
// shown as received.
type Meta struct {
	ModelUsed       string
	CostSaved       string
	RoutingDecision string
}

// Turn is one entry of the conversation transcript.
type Turn struct {
	Role    Role
	Content string
	Meta    *Meta // only on assistant turns produced by a successful call
}

// UserTurn returns a turn authored by the user.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Content: text}
}

// AssistantTurn returns a routed reply carrying its routing metadata.
func AssistantTurn(text string, meta Meta) Turn {
	return Turn{Role: RoleAssistant, Content: text, Meta: &meta}
}

// FallbackTurn returns the notice shown when a request fails.
func FallbackTurn() Turn {
	return Turn{Role: RoleAssistant, Content: FallbackNotice}
}

// GreetingTurn returns the seed turn, using Greeting when text is empty.
func GreetingTurn(text string) Turn {
	if text == "" {
		text = Greeting
	}
	return Turn{Role: RoleAssistant, Content: text}
}

// HasMeta reports whether t came from a successful request.
func (t Turn) HasMeta() bool {
	return t.Meta != nil
}

// Clone returns a copy whose Meta does not alias t's.
func (t Turn) Clone() Turn {
	if t.Meta != nil {
		m := *t.Meta
		t.Meta = &m
	}
	return t
}
