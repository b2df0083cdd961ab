package browser

// NoOrigin asks ResolveTab for the active tab.
const NoOrigin = -1

// ActionPing is the action of the liveness probe.
const ActionPing = "ping"

// StatusPong is the status a ready page answers a ping with.
const StatusPong = "pong"

// Message is a small tagged object sent to a page: either {action: "ping"}
// or {flashcards: <raw model output>}.
type Message struct {
	Action     string  `json:"action,omitempty"`
	Flashcards *string `json:"flashcards,omitempty"`
}

// Reply is a page's answer to a message.
type Reply struct {
	Status string `json:"status,omitempty"`
}

// Ping returns the liveness probe message.
func Ping() Message {
	return Message{Action: ActionPing}
}

// Deliver returns a payload message carrying raw model output.
func Deliver(raw string) Message {
	return Message{Flashcards: &raw}
}

// IsPing reports whether m is the liveness probe.
func (m Message) IsPing() bool {
	return m.Action == ActionPing
}

// Payload returns the flashcards payload, if any.
func (m Message) Payload() (string, bool) {
	if m.Flashcards == nil {
		return "", false
	}
	return *m.Flashcards, true
}

// IsPong reports whether r acknowledges a ping.
func (r Reply) IsPong() bool {
	return r.Status == StatusPong
}
