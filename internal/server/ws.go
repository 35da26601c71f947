package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/janpfeifer/GifCentration/internal/game"
	"github.com/janpfeifer/GifCentration/internal/search"
	"github.com/janpfeifer/GifCentration/internal/session"
	"k8s.io/klog/v2"
)

const writeTimeout = 5 * time.Second

// popularCount is the number of popular searches offered to clients.
const popularCount = 8

// HandleWS runs one game session for the lifetime of the websocket connection.
func (s *ServerState) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		klog.Errorf("HandleWS: failed to accept websocket: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	id := uuid.NewString()
	out := newOutbox(id)
	ctrl := session.New(s.cfg.Game, s.coordinator, out)
	s.register(id, ctrl)
	defer s.unregister(id)

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Go(func() { out.writeLoop(ctx, conn) })

	out.enqueue(game.MsgTypeConfig, game.ConfigMessage{Config: s.cfg.Game.Client()})
	s.sendPopular(out)
	out.OnState(ctrl.View())
	ctrl.Start()

	for {
		var msg game.WsMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				klog.V(1).Infof("Session %s: connection closed: %v", id, err)
			} else {
				klog.Warningf("Session %s: read error: %v", id, err)
			}
			return
		}
		s.dispatch(ctx, &wg, ctrl, out, msg)
	}
}

// dispatch applies one client message to the session.
func (s *ServerState) dispatch(ctx context.Context, wg *sync.WaitGroup, ctrl *session.Controller, out *outbox, msg game.WsMessage) {
	p, err := msg.Parse()
	if err != nil {
		klog.Warningf("Session %s: failed to parse %s message: %v", out.id, msg.Type, err)
		out.sendError("invalid message: " + err.Error())
		return
	}
	switch m := p.(type) {
	case *game.SearchMessage:
		req := session.Request{Query: m.Query, TableauSize: m.TableauSize, Rating: search.ParseRating(m.Rating)}
		if req.TableauSize == 0 {
			req.TableauSize = s.cfg.Game.DefaultTableauSize
		}
		// Searches block on the provider: the read loop keeps serving clicks
		// and loads while it runs.
		wg.Go(func() {
			if err := ctrl.Search(ctx, req); err != nil && !errors.Is(err, session.ErrClosed) {
				klog.Warningf("Session %s: search rejected: %v", out.id, err)
				out.sendError(err.Error())
				return
			}
			s.sendPopular(out)
		})
	case *game.ClickMessage:
		ctrl.Click(m.Index)
	case *game.LoadedMessage:
		ctrl.MarkLoaded(m.Epoch, m.Index)
	case *game.OpenSearchMessage:
		ctrl.OpenSearch()
	case *game.CloseSearchMessage:
		ctrl.CloseSearch()
	default:
		klog.Warningf("Session %s: unexpected message type %s from client", out.id, msg.Type)
		out.sendError("unexpected message type: " + string(msg.Type))
	}
}

func (s *ServerState) sendPopular(out *outbox) {
	out.enqueue(game.MsgTypePopular, game.PopularMessage{Searches: s.coordinator.TopSearches(popularCount)})
}

// outbox queues the messages of a session for its connection.
//
// It implements session.Listener: the controller calls it with its lock held,
// so it never blocks on the network. Consecutive state messages are coalesced,
// since each one carries the full view.
type outbox struct {
	id string

	mu      sync.Mutex
	pending []game.WsMessage
	wake    chan struct{}
}

func newOutbox(id string) *outbox {
	return &outbox{id: id, wake: make(chan struct{}, 1)}
}

func (o *outbox) enqueue(msgType game.MessageType, payload any) {
	msg, err := game.NewWsMessage(msgType, payload)
	if err != nil {
		klog.Errorf("Session %s: failed to create %s message: %v", o.id, msgType, err)
		return
	}
	o.mu.Lock()
	if n := len(o.pending); n > 0 && msgType == game.MsgTypeState && o.pending[n-1].Type == game.MsgTypeState {
		o.pending[n-1] = msg
	} else {
		o.pending = append(o.pending, msg)
	}
	o.mu.Unlock()
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *outbox) drain() []game.WsMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	msgs := o.pending
	o.pending = nil
	return msgs
}

// writeLoop sends queued messages until ctx is done or a write fails.
func (o *outbox) writeLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.wake:
		}
		for _, msg := range o.drain() {
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, msg)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					klog.Errorf("Session %s: failed to send %s: %v", o.id, msg.Type, err)
					conn.CloseNow()
				}
				return
			}
		}
	}
}

func (o *outbox) OnState(view game.View) {
	o.enqueue(game.MsgTypeState, game.StateMessage{View: view})
}

func (o *outbox) OnNotify(kind game.GifErrorState) {
	o.enqueue(game.MsgTypeNotify, game.NotifyMessage{Kind: kind, Message: kind.Message()})
}

func (o *outbox) OnCelebrate() {
	o.enqueue(game.MsgTypeCelebrate, nil)
}

func (o *outbox) sendError(message string) {
	o.enqueue(game.MsgTypeError, game.ErrorMessage{Message: message})
}
