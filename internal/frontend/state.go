package frontend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/janpfeifer/GifCentration/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// Alert is a message shown on top of the game until dismissed.
type Alert struct {
	Kind    game.GifErrorState
	Message string
}

// GlobalClientState manages the connection and the last view of the session sent by the server.
type GlobalClientState struct {
	Config game.Config
	View   game.View
	Error  string
	Conn   *websocket.Conn

	// alert currently shown, nil if none. It is also dismissed from timer
	// goroutines, hence the mutex.
	mu         sync.Mutex
	alert      *Alert
	alertTimer *time.Timer

	// Celebrations counts the wins, so components know when to throw new confetti.
	Celebrations int

	// Search form state (persistent across re-renders)
	Query       string
	Rating      string
	TableauSize int
	sizeChosen  bool

	// Popular searches, most played first.
	Popular []game.TopSearch

	// Listeners for state updates
	Listeners map[string]func()
}

var State *GlobalClientState

func (s *GlobalClientState) Notify() {
	klog.V(2).Infof("GlobalClientState: Notifying %d listeners", len(s.Listeners))
	for _, l := range s.Listeners {
		if l != nil {
			l()
		}
	}
}

func InitState() {
	if State == nil {
		klog.V(1).Infof("InitState: creating new state (was nil)")
		cfg := game.DefaultConfig()
		State = &GlobalClientState{
			Config:      cfg,
			Rating:      "g",
			TableauSize: cfg.DefaultTableauSize,
			Listeners:   make(map[string]func()),
		}
	} else {
		klog.V(1).Infof("InitState: state already exists")
	}
}

// ConnectWS connects to the server, which starts a new game session.
func (s *GlobalClientState) ConnectWS() error {
	if s.Conn != nil {
		klog.Infof("ConnectWS: Closing existing connection")
		s.Conn.CloseNow()
	}

	scheme := "ws"
	if app.Window().URL().Scheme == "https" {
		scheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s/ws", scheme, app.Window().URL().Host)
	klog.Infof("ConnectWS: Connecting to %s", wsURL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		klog.Errorf("ConnectWS: Dial failed: %v", err)
		return fmt.Errorf("dial failed: %w", err)
	}
	s.Conn = conn
	s.Error = ""

	klog.Infof("ConnectWS: Connected. Starting read loop.")
	go s.readLoop(conn)
	return nil
}

func (s *GlobalClientState) readLoop(conn *websocket.Conn) {
	ctx := context.Background()
	klog.Infof("readLoop: started")
	for {
		var msg game.WsMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			klog.Errorf("readLoop: WS read error: %v", err)
			break
		}

		klog.V(1).Infof("readLoop: received message type: %s", msg.Type)
		s.handleMessage(msg)
	}
	if s.Conn == conn {
		s.Conn = nil
		s.Error = "Connection to the server lost, reload the page to play again."
		s.Notify()
	}
}

func (s *GlobalClientState) handleMessage(msg game.WsMessage) {
	p, err := msg.Parse()
	if err != nil {
		klog.Errorf("handleMessage: Failed to parse %s message: %v", msg.Type, err)
		return
	}
	switch m := p.(type) {
	case *game.StateMessage:
		klog.V(1).Infof("handleMessage: %s", &m.View)
		s.View = m.View
		s.Notify()

	case *game.NotifyMessage:
		klog.Infof("handleMessage: alert %s: %s", m.Kind, m.Message)
		s.showAlert(Alert{Kind: m.Kind, Message: m.Message})
		s.Notify()

	case *game.ConfigMessage:
		klog.V(1).Infof("handleMessage: config %+v", m.Config)
		s.Config = s.Config.Apply(m.Config)
		if s.sizeChosen {
			s.TableauSize = s.Config.ClampTableauSize(s.TableauSize)
		} else {
			s.TableauSize = s.Config.DefaultTableauSize
		}
		s.Notify()

	case *game.PopularMessage:
		s.Popular = m.Searches
		s.Notify()

	case *game.CelebrateMessage:
		s.Celebrations++
		s.Notify()

	case *game.ErrorMessage:
		klog.Warningf("handleMessage: server error: %s", m.Message)
		s.showAlert(Alert{Kind: game.UnknownError, Message: m.Message})
		s.Notify()

	default:
		klog.Warningf("handleMessage: unexpected message type %s", msg.Type)
	}
}

// SetTableauSize sets the number of cards of the next search, clamped to the configured range.
func (s *GlobalClientState) SetTableauSize(n int) {
	s.TableauSize = s.Config.ClampTableauSize(n)
	s.sizeChosen = true
}

// CurrentAlert returns a copy of the alert shown, or nil if none.
func (s *GlobalClientState) CurrentAlert() *Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alert == nil {
		return nil
	}
	alert := *s.alert
	return &alert
}

// showAlert replaces the current alert, and dismisses it after Config.AlertDuration.
func (s *GlobalClientState) showAlert(alert Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alertTimer != nil {
		s.alertTimer.Stop()
	}
	shown := &alert
	s.alert = shown
	s.alertTimer = time.AfterFunc(s.Config.AlertDuration, func() { s.dismissAlert(shown) })
}

// DismissAlert hides the current alert, if any.
func (s *GlobalClientState) DismissAlert() {
	s.dismissAlert(nil)
}

// dismissAlert hides the current alert. If shown is not nil, the alert is
// only hidden if it is still the one shown.
func (s *GlobalClientState) dismissAlert(shown *Alert) {
	s.mu.Lock()
	if shown != nil && s.alert != shown {
		s.mu.Unlock()
		return
	}
	if s.alertTimer != nil {
		s.alertTimer.Stop()
		s.alertTimer = nil
	}
	hadAlert := s.alert != nil
	s.alert = nil
	s.mu.Unlock()
	if hadAlert {
		s.Notify()
	}
}

func (s *GlobalClientState) send(msgType game.MessageType, payload any) {
	if s.Conn == nil {
		klog.Warningf("send: not connected, dropping %s message", msgType)
		return
	}
	msg, err := game.NewWsMessage(msgType, payload)
	if err != nil {
		klog.Errorf("send: Failed to create %s message: %v", msgType, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	if err := wsjson.Write(ctx, s.Conn, msg); err != nil {
		klog.Errorf("send: Failed to send %s message: %v", msgType, err)
	}
}

// SendSearch submits the search form. It dismisses the current alert.
func (s *GlobalClientState) SendSearch() {
	s.DismissAlert()
	s.send(game.MsgTypeSearch, game.SearchMessage{
		Query:       s.Query,
		TableauSize: s.TableauSize,
		Rating:      s.Rating,
	})
}

// SendClick sends a click on card index to the server
func (s *GlobalClientState) SendClick(index int) {
	s.send(game.MsgTypeClick, game.ClickMessage{Index: index})
}

// SendLoaded reports that the GIF of card index, rendered for epoch, finished loading.
func (s *GlobalClientState) SendLoaded(epoch game.Epoch, index int) {
	s.send(game.MsgTypeLoaded, game.LoadedMessage{Epoch: epoch, Index: index})
}

func (s *GlobalClientState) SendOpenSearch() {
	s.send(game.MsgTypeOpenSearch, nil)
}

func (s *GlobalClientState) SendCloseSearch() {
	s.send(game.MsgTypeCloseSearch, nil)
}
