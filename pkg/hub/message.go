// Package hub fans dashboard updates out to websocket viewers using a
// channel-based broadcast loop. Viewers may narrow their feed to one session.
package hub

// MessageType indicates the websocket message format
type MessageType int

const (
	// JSONMessage is a JSON-encoded message
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data
	BinaryMessage
)

// Message is one broadcast. Topic is the session it concerns, empty for
// messages every viewer receives.
type Message struct {
	Type  MessageType
	Topic string
	Data  []byte
}

// NewJSONMessage creates a JSON message from pre-encoded bytes
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewTopicMessage creates a JSON message scoped to one session
func NewTopicMessage(topic string, data []byte) Message {
	return Message{Type: JSONMessage, Topic: topic, Data: data}
}

// Subscription is what a viewer sends to pick a session. An empty Session
// subscribes to everything.
type Subscription struct {
	Session string `json:"session"`
}
