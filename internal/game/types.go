package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned for arguments outside of a function's domain.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidTableauSize is returned for a number of cards that is odd or out of the configured bounds.
	ErrInvalidTableauSize = errors.New("invalid tableau size")
)

// Epoch identifies one generation of a session's tableau. It is bumped on every
// reset, and async callbacks carry the epoch they were issued under.
type Epoch uint64

// SessionState is the top-level state of a game session.
type SessionState int

const (
	Idle SessionState = iota
	Searching
	Loading
	Playing
)

func (s SessionState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Searching:
		return "Searching"
	case Loading:
		return "Loading"
	case Playing:
		return "Playing"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// GifErrorState is the outcome of the last search, used for user messaging.
type GifErrorState int

const (
	Ok GifErrorState = iota
	BadRequest
	Forbidden
	InternalServerError
	NoGifs
	NotEnoughGifs
	UnknownError
)

func (e GifErrorState) String() string {
	switch e {
	case Ok:
		return "Ok"
	case BadRequest:
		return "BadRequest"
	case Forbidden:
		return "Forbidden"
	case InternalServerError:
		return "InternalServerError"
	case NoGifs:
		return "NoGifs"
	case NotEnoughGifs:
		return "NotEnoughGifs"
	case UnknownError:
		return "UnknownError"
	default:
		return fmt.Sprintf("GifErrorState(%d)", int(e))
	}
}

// Message is the text shown to the user in the alert box.
func (e GifErrorState) Message() string {
	switch e {
	case Ok:
		return ""
	case BadRequest:
		return "The search request was malformed. Try a different query."
	case Forbidden:
		return "The GIF service refused the request."
	case InternalServerError:
		return "The GIF service is having trouble. Try again in a moment."
	case NoGifs:
		return "No GIFs found for that search!"
	case NotEnoughGifs:
		return "Not enough GIFs found, the tableau was made smaller."
	default:
		return "Something went wrong while searching for GIFs."
	}
}

// ImageRef references one GIF returned by the search provider.
type ImageRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// TopSearch is a query and how many games were played with it.
type TopSearch struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// CardSlot is one position of the tableau.
type CardSlot struct {
	Index      int  `json:"index"`
	PairKey    int  `json:"-"` // Not sent to clients
	Flipped    bool `json:"flipped"`
	Matched    bool `json:"matched"`
	ImageReady bool `json:"image_ready"`
}

// Card is the render projection of a slot: the slot and the GIF on its face.
type Card struct {
	CardSlot
	Image ImageRef `json:"image"`
}

// Intro holds the visibility of the staged title screen elements.
type Intro struct {
	TitleVisible     bool `json:"title_visible"`
	SubtitleVisible  bool `json:"subtitle_visible"`
	ClickHereVisible bool `json:"click_here_visible"`
	HeaderVisible    bool `json:"header_visible"`
}

// View is the full render projection of a session, published after every change.
type View struct {
	State           SessionState     `json:"state"`
	Epoch           Epoch            `json:"epoch"`
	Cards           []Card           `json:"cards"`
	Layout          LayoutDimensions `json:"layout"`
	LoadedCount     int              `json:"loaded_count"`
	ErrorState      GifErrorState    `json:"error_state"`
	OverlayVisible  bool             `json:"overlay_visible"`
	LongWaitVisible bool             `json:"long_wait_visible"`
	ConfettiVisible bool             `json:"confetti_visible"`
	Won             bool             `json:"won"`
	Intro           Intro            `json:"intro"`
}

func (v *View) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "View: state=%s, epoch=%d, cards=%d, loaded=%d, layout=%dx%d, error=%s",
		v.State, v.Epoch, len(v.Cards), v.LoadedCount, v.Layout.MajorAxisSize, v.Layout.MinorAxisSize, v.ErrorState)
	if v.Won {
		sb.WriteString(", won")
	}
	return sb.String()
}
