package game

import (
	"encoding/json"
	"fmt"
)

// Message type for WebSocket communication between client and server.
type MessageType string

const (
	MsgTypeSearch      MessageType = "search"       // Client submits a GIF search
	MsgTypeOpenSearch  MessageType = "open_search"  // Client opens the search overlay
	MsgTypeCloseSearch MessageType = "close_search" // Client closes the search overlay
	MsgTypeClick       MessageType = "click"        // Client clicks a card
	MsgTypeLoaded      MessageType = "loaded"       // Client finished loading a card's GIF
	MsgTypeState       MessageType = "state"        // Server sends the full session view
	MsgTypeConfig      MessageType = "config"       // Server sends the settings the client needs, on connect
	MsgTypePopular     MessageType = "popular"      // Server sends the most played searches
	MsgTypeNotify      MessageType = "notify"       // Server asks the client to show an alert
	MsgTypeCelebrate   MessageType = "celebrate"    // Server asks the client to throw confetti
	MsgTypeError       MessageType = "error"        // Server sends an error message
)

// WsMessage represents a WebSocket message.
type WsMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewWsMessage creates a new WsMessage with a marshaled payload.
func NewWsMessage(msgType MessageType, payload interface{}) (WsMessage, error) {
	if payload == nil {
		return WsMessage{Type: msgType}, nil
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return WsMessage{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return WsMessage{
		Type:    msgType,
		Payload: payloadBytes,
	}, nil
}

// Parse unmarshals the message payload into one of the message types (SearchMessage, StateMessage, etc.)
func (m *WsMessage) Parse() (any, error) {
	var target any
	switch m.Type {
	case MsgTypeSearch:
		target = &SearchMessage{}
	case MsgTypeOpenSearch:
		target = &OpenSearchMessage{}
	case MsgTypeCloseSearch:
		target = &CloseSearchMessage{}
	case MsgTypeClick:
		target = &ClickMessage{}
	case MsgTypeLoaded:
		target = &LoadedMessage{}
	case MsgTypeState:
		target = &StateMessage{}
	case MsgTypeConfig:
		target = &ConfigMessage{}
	case MsgTypePopular:
		target = &PopularMessage{}
	case MsgTypeNotify:
		target = &NotifyMessage{}
	case MsgTypeCelebrate:
		target = &CelebrateMessage{}
	case MsgTypeError:
		target = &ErrorMessage{}
	default:
		return nil, fmt.Errorf("unknown message type: %s", m.Type)
	}

	if len(m.Payload) == 0 {
		return target, nil
	}

	err := json.Unmarshal(m.Payload, target)
	return target, err
}

// SearchMessage is the payload for MsgTypeSearch
type SearchMessage struct {
	Query       string `json:"query"`
	TableauSize int    `json:"tableau_size"` // Requested number of cards
	Rating      string `json:"rating"`       // g, pg, pg-13 or r
}

// OpenSearchMessage: empty.
type OpenSearchMessage struct{}

// CloseSearchMessage: empty.
type CloseSearchMessage struct{}

// ClickMessage is the payload for MsgTypeClick
type ClickMessage struct {
	Index int `json:"index"` // Slot clicked
}

// LoadedMessage is the payload for MsgTypeLoaded
type LoadedMessage struct {
	Epoch Epoch `json:"epoch"` // Epoch of the view that rendered the GIF
	Index int   `json:"index"`
}

// StateMessage is the payload for MsgTypeState
type StateMessage struct {
	View View `json:"view"`
}

// ConfigMessage is the payload for MsgTypeConfig
type ConfigMessage struct {
	Config ClientConfig `json:"config"`
}

// PopularMessage is the payload for MsgTypePopular
type PopularMessage struct {
	Searches []TopSearch `json:"searches"` // Most played first
}

// NotifyMessage is the payload for MsgTypeNotify
type NotifyMessage struct {
	Kind    GifErrorState `json:"kind"`
	Message string        `json:"message"`
}

// CelebrateMessage: empty.
type CelebrateMessage struct{}

// ErrorMessage is the payload for MsgTypeError
type ErrorMessage struct {
	Message string `json:"message"`
}
