// Package session implements the game session state machine:
// Idle → Searching → Loading → Playing, with the timers sequencing it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/janpfeifer/GifCentration/internal/game"
	"github.com/janpfeifer/GifCentration/internal/search"
	"k8s.io/klog/v2"
)

var (
	// ErrBusy is returned when a search is submitted while another one is searching or loading.
	ErrBusy = errors.New("a search is already in progress")

	// ErrClosed is returned once the controller was closed.
	ErrClosed = errors.New("session closed")
)

// Timer keys.
const (
	timerMaxWait  = "load/max_wait"
	timerLongWait = "load/long_wait"
	timerReady    = "load/ready"
	timerPlay     = "load/play"
	timerMismatch = "tableau/mismatch"
	timerConfetti = "confetti"

	timerIntroTitle        = "intro/title"
	timerIntroSubtitle     = "intro/subtitle"
	timerIntroClickHere    = "intro/click_here"
	timerIntroHideSubtitle = "intro/hide_subtitle"
	timerIntroHeader       = "intro/header"
)

// sessionTimers are bound to the current tableau, and cancelled by a new search.
var sessionTimers = []string{timerMaxWait, timerLongWait, timerReady, timerPlay, timerMismatch, timerConfetti}

// Delays of the staged intro hide when the search overlay is first opened.
const (
	subtitleHideDelay = 250 * time.Millisecond
	headerShowDelay   = time.Second
)

// Listener receives what the presentation layer must render.
//
// Methods are called with the controller's lock held, and must not call back
// into the Controller.
type Listener interface {
	// OnState is called with a fresh projection after every change.
	OnState(view game.View)

	// OnNotify asks to show an alert. Dismissing it is up to the listener.
	OnNotify(kind game.GifErrorState)

	// OnCelebrate is called once when the tableau is won.
	OnCelebrate()
}

type nopListener struct{}

func (nopListener) OnState(game.View) {
}

func (nopListener) OnNotify(game.GifErrorState) {
}

func (nopListener) OnCelebrate() {
}

// Request is a user submitted search.
type Request struct {
	Query       string
	TableauSize int // Requested number of cards
	Rating      search.Rating
}

// Controller owns one player's game session.
type Controller struct {
	mu          sync.Mutex
	cfg         game.Config
	coordinator *search.Coordinator
	listener    Listener
	sched       *Scheduler
	shuffle     func(pairCount int) ([]int, error)

	state       game.SessionState
	epoch       game.Epoch
	searchToken uint64
	closed      bool

	tableau     *game.Tableau
	tracker     *game.LoadTracker
	images      []game.ImageRef
	layout      game.LayoutDimensions
	loadStarted time.Time
	revealing   bool // A path to Playing was started for this epoch

	errorState     game.GifErrorState
	overlay        bool
	longWait       bool
	confetti       bool
	intro          game.Intro
	introDismissed bool
}

// New creates an Idle controller. A nil listener discards all events.
func New(cfg game.Config, coordinator *search.Coordinator, listener Listener) *Controller {
	if listener == nil {
		listener = nopListener{}
	}
	c := &Controller{
		cfg:         cfg,
		coordinator: coordinator,
		listener:    listener,
		shuffle:     game.ShufflePairs,
	}
	c.sched = NewScheduler(&c.mu)
	return c
}

// Start schedules the staged reveal of the title screen.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.sched.After(timerIntroTitle, 0, func() {
		c.intro.TitleVisible = !c.introDismissed
		c.publishLocked()
	})
	c.sched.After(timerIntroSubtitle, c.cfg.SubtitleDelay, func() {
		c.intro.SubtitleVisible = !c.introDismissed
		c.publishLocked()
	})
	c.sched.After(timerIntroClickHere, c.cfg.ClickHereDelay, func() {
		c.intro.ClickHereVisible = !c.introDismissed
		c.publishLocked()
	})
}

// OpenSearch shows the search overlay. It is refused (returns false) while a
// search is searching or loading.
func (c *Controller) OpenSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.busyLocked() {
		return false
	}
	c.overlay = true
	c.intro.ClickHereVisible = false
	c.sched.Cancel(timerIntroClickHere)
	if !c.introDismissed {
		c.introDismissed = true
		c.sched.Cancel(timerIntroTitle)
		c.sched.Cancel(timerIntroSubtitle)
		c.intro.TitleVisible = false
		c.sched.After(timerIntroHideSubtitle, subtitleHideDelay, func() {
			c.intro.SubtitleVisible = false
			c.publishLocked()
		})
	}
	if !c.intro.HeaderVisible {
		c.sched.After(timerIntroHeader, headerShowDelay, func() {
			c.intro.HeaderVisible = true
			c.publishLocked()
		})
	}
	c.publishLocked()
	return true
}

// CloseSearch hides the search overlay, unless a search is searching or loading.
func (c *Controller) CloseSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.busyLocked() {
		return false
	}
	c.overlay = false
	c.publishLocked()
	return true
}

// Search runs a search and, on success, resets the tableau for its results.
//
// It blocks on the search provider with the lock released. Provider failures
// and empty results are not returned as errors: they are reported through
// Listener.OnNotify and the session goes back to Idle. Errors are returned
// only for requests that were rejected before any change: ErrBusy,
// game.ErrInvalidTableauSize or ErrClosed.
func (c *Controller) Search(ctx context.Context, req Request) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busyLocked() {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.cfg.ValidateTableauSize(req.TableauSize); err != nil {
		c.mu.Unlock()
		return err
	}

	c.teardownLocked()
	c.errorState = game.Ok
	c.state = game.Searching
	c.searchToken++
	token := c.searchToken
	klog.Infof("Session: searching %q for %d cards (rating %s), epoch %d", req.Query, req.TableauSize, req.Rating, c.epoch)
	c.publishLocked()
	c.mu.Unlock()

	res := c.coordinator.Search(ctx, req.Query, req.TableauSize/2, req.Rating)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || token != c.searchToken {
		klog.Warningf("Session: dropping results of superseded search %q", req.Query)
		return ErrClosed
	}
	c.errorState = res.ErrorState
	if !res.Proceed() {
		c.state = game.Idle
		klog.Infof("Session: search %q failed with %s, back to Idle", req.Query, res.ErrorState)
		c.publishLocked()
		c.listener.OnNotify(res.ErrorState)
		return nil
	}
	c.resetLocked(res.Images)
	if res.ErrorState != game.Ok && c.state == game.Loading {
		c.listener.OnNotify(res.ErrorState)
	}
	return nil
}

// Click handles a click on card index.
func (c *Controller) Click(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != game.Playing || c.tableau == nil {
		klog.V(1).Infof("Session: click on %d ignored in state %s", index, c.state)
		return
	}
	result := c.tableau.Click(index)
	klog.V(1).Infof("Session: click on %d: %s", index, result)
	switch result {
	case game.ClickIgnored:
		return
	case game.ClickMismatched:
		epoch := c.epoch
		c.sched.After(timerMismatch, c.cfg.MismatchDelay, func() {
			if c.epoch != epoch || c.tableau == nil {
				return
			}
			if c.tableau.ResolveMismatch() {
				c.publishLocked()
			}
		})
	case game.ClickWon:
		c.celebrateLocked()
	}
	c.publishLocked()
}

// MarkLoaded records that the GIF of card index, rendered under epoch, is visible.
// Calls for a previous epoch are ignored.
func (c *Controller) MarkLoaded(epoch game.Epoch, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tracker == nil {
		klog.Warningf("Session: load of slot %d (epoch %d) with no tableau", index, epoch)
		return
	}
	completed := c.tracker.MarkLoaded(epoch, index)
	if epoch != c.epoch {
		return
	}
	if completed && c.state == game.Loading && c.tracker.Size() > 0 {
		c.allLoadedLocked()
	}
	c.publishLocked()
}

// View returns the current render projection.
func (c *Controller) View() game.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// State returns the current session state.
func (c *Controller) State() game.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close cancels every timer. Later calls are ignored, and a search in flight
// is dropped when it completes.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.searchToken++
	c.sched.CancelAll()
	klog.V(1).Infof("Session: closed at epoch %d", c.epoch)
}

func (c *Controller) busyLocked() bool {
	return c.state == game.Searching || c.state == game.Loading
}

// teardownLocked cancels the tableau's timers and drops it, invalidating its epoch.
func (c *Controller) teardownLocked() {
	for _, key := range sessionTimers {
		c.sched.Cancel(key)
	}
	c.epoch++
	c.tableau, c.tracker, c.images = nil, nil, nil
	c.layout = game.LayoutDimensions{}
	c.revealing = false
	c.longWait = false
	c.confetti = false
}

// resetLocked builds the tableau for images and enters Loading.
func (c *Controller) resetLocked(images []game.ImageRef) {
	numCards := 2 * len(images)
	layout := game.SolveLayout(numCards)
	if layout.IsZero() {
		klog.Errorf("Session: no layout for %d cards", numCards)
		c.state = game.Idle
		c.publishLocked()
		return
	}
	keys, err := c.shuffle(len(images))
	if err != nil {
		klog.Errorf("Session: failed to shuffle %d pairs: %v", len(images), err)
		c.state = game.Idle
		c.publishLocked()
		return
	}

	c.images = images
	c.tableau = game.NewTableau(c.epoch, keys)
	c.tracker = game.NewLoadTracker(c.epoch, numCards)
	c.layout = layout
	c.state = game.Loading
	c.loadStarted = time.Now()
	klog.Infof("Session: loading %d cards (%dx%d), epoch %d", numCards, layout.MajorAxisSize, layout.MinorAxisSize, c.epoch)

	epoch := c.epoch
	c.sched.After(timerMaxWait, c.cfg.MaxLoadWait, func() {
		if c.epoch != epoch || c.state != game.Loading || c.revealing {
			return
		}
		klog.Warningf("Session: max load wait elapsed with %d/%d GIFs loaded, starting anyway", c.tracker.Count(), c.tracker.Size())
		c.sched.Cancel(timerLongWait)
		c.revealLocked()
	})
	c.sched.After(timerLongWait, c.cfg.LongWait, func() {
		if c.epoch != epoch || c.state != game.Loading || c.revealing {
			return
		}
		c.longWait = true
		c.publishLocked()
	})
	c.publishLocked()
}

// allLoadedLocked starts playing once the minimum load time has passed.
func (c *Controller) allLoadedLocked() {
	if c.revealing {
		return
	}
	c.sched.Cancel(timerMaxWait)
	c.sched.Cancel(timerLongWait)
	c.longWait = false
	wait := max(c.cfg.MinLoadWait-time.Since(c.loadStarted), 0)
	klog.Infof("Session: all %d GIFs loaded, revealing in %s", c.tracker.Size(), wait)
	c.revealing = true
	epoch := c.epoch
	c.sched.After(timerReady, wait, func() {
		if c.epoch != epoch || c.state != game.Loading {
			return
		}
		c.revealLocked()
	})
}

// revealLocked closes the overlay and enters Playing after the reveal delay.
func (c *Controller) revealLocked() {
	c.revealing = true
	c.overlay = false
	c.longWait = false
	epoch := c.epoch
	c.sched.After(timerPlay, c.cfg.RevealDelay, func() {
		if c.epoch != epoch || c.state != game.Loading {
			return
		}
		c.state = game.Playing
		c.tableau.SetInteractive(true)
		klog.Infof("Session: playing, epoch %d", c.epoch)
		c.publishLocked()
	})
	c.publishLocked()
}

func (c *Controller) celebrateLocked() {
	klog.Infof("Session: tableau won, epoch %d", c.epoch)
	c.tableau.SetInteractive(false)
	c.confetti = true
	c.listener.OnCelebrate()
	c.sched.After(timerConfetti, c.cfg.ConfettiDuration, func() {
		c.confetti = false
		c.publishLocked()
	})
}

func (c *Controller) publishLocked() {
	c.listener.OnState(c.viewLocked())
}

func (c *Controller) viewLocked() game.View {
	v := game.View{
		State:           c.state,
		Epoch:           c.epoch,
		Layout:          c.layout,
		ErrorState:      c.errorState,
		OverlayVisible:  c.overlay,
		LongWaitVisible: c.longWait,
		ConfettiVisible: c.confetti,
		Intro:           c.intro,
	}
	if c.tableau == nil {
		return v
	}
	v.Won = c.tableau.Won()
	v.LoadedCount = c.tracker.Count()
	v.Cards = make([]game.Card, 0, c.tableau.Size())
	for i, slot := range c.tableau.Slots() {
		slot.ImageReady = c.tracker.Loaded(i)
		v.Cards = append(v.Cards, game.Card{CardSlot: slot, Image: c.images[slot.PairKey]})
	}
	return v
}
