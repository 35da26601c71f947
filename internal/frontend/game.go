package frontend

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/janpfeifer/GifCentration/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// Game is the single page of the game: intro, search overlay and tableau.
type Game struct {
	app.Compo

	// GIF loads reported for the current epoch.
	reportedEpoch game.Epoch
	reported      map[int]bool

	celebrations int
	confetti     []confettiPiece

	onUpdate func()
}

type confettiPiece struct {
	Left     float64 // Percent of the viewport width
	Delay    time.Duration
	Duration time.Duration
	Color    string
	Rotation int
}

var confettiColors = []string{"#f94144", "#f3722c", "#f9c74f", "#90be6d", "#43aa8b", "#577590", "#9b5de5"}

func (g *Game) OnAppUpdate(ctx app.Context) {
	klog.Infof("Game component: App update available, reloading...")
	ctx.Reload()
}

func (g *Game) OnMount(ctx app.Context) {
	klog.Infof("Game component: OnMount called")
	g.reported = make(map[int]bool)
	g.onUpdate = func() {
		ctx.Dispatch(func(ctx app.Context) {
			if State.Celebrations != g.celebrations {
				g.celebrations = State.Celebrations
				g.confetti = newConfetti(State.Config.ConfettiAmount, State.Config.ConfettiDuration)
			}
		})
	}
	State.Listeners["game"] = g.onUpdate

	if State.Conn == nil {
		if err := State.ConnectWS(); err != nil {
			State.Error = fmt.Sprintf("Failed to connect to the server: %v", err)
			klog.Errorf("Game component: Error connecting: %v", err)
		}
	}
}

func (g *Game) OnDismount() {
	klog.Infof("Game component: OnDismount called")
	delete(State.Listeners, "game")
}

func newConfetti(amount int, duration time.Duration) []confettiPiece {
	pieces := make([]confettiPiece, amount)
	for i := range pieces {
		fall := duration/2 + rand.N(duration/2+1)
		pieces[i] = confettiPiece{
			Left:     rand.Float64() * 100,
			Delay:    rand.N(duration - fall + 1),
			Duration: fall,
			Color:    confettiColors[rand.IntN(len(confettiColors))],
			Rotation: rand.IntN(360),
		}
	}
	return pieces
}

func (g *Game) onOpenSearch(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.SendOpenSearch()
}

func (g *Game) onCloseSearch(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.SendCloseSearch()
}

func (g *Game) onQueryChange(ctx app.Context, e app.Event) {
	State.Query = ctx.JSSrc().Get("value").String()
}

func (g *Game) onRatingChange(ctx app.Context, e app.Event) {
	State.Rating = ctx.JSSrc().Get("value").String()
}

func (g *Game) onSizeChange(ctx app.Context, e app.Event) {
	n, err := strconv.Atoi(ctx.JSSrc().Get("value").String())
	if err != nil {
		klog.Warningf("Game component: invalid tableau size: %v", err)
		return
	}
	State.SetTableauSize(n)
}

func (g *Game) onPopularClick(query string) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		e.PreventDefault()
		State.Query = query
	}
}

func (g *Game) onSearch(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if strings.TrimSpace(State.Query) == "" {
		return
	}
	State.SendSearch()
}

func (g *Game) onCardClick(index int) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		State.SendClick(index)
	}
}

// onCardLoaded reports a GIF load once per card and epoch.
func (g *Game) onCardLoaded(epoch game.Epoch, index int) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		if epoch != g.reportedEpoch {
			g.reportedEpoch = epoch
			g.reported = make(map[int]bool)
		}
		if g.reported[index] {
			return
		}
		g.reported[index] = true
		State.SendLoaded(epoch, index)
	}
}

func orientation() game.Orientation {
	if app.IsServer {
		return game.Landscape
	}
	w, h := app.Window().Size()
	if h > w {
		return game.Portrait
	}
	return game.Landscape
}

func visibility(visible bool) string {
	if visible {
		return "shown"
	}
	return "hidden"
}

func (g *Game) renderIntro(v *game.View) app.UI {
	return app.Header().Class("intro").Body(
		app.H1().Class("intro-title", visibility(v.Intro.TitleVisible)).Text("GifCentration"),
		app.P().Class("intro-subtitle", visibility(v.Intro.SubtitleVisible)).Text("The memory game played with GIFs"),
		app.A().Href("#").Class("intro-click-here", visibility(v.Intro.ClickHereVisible)).
			OnClick(g.onOpenSearch).Text("Click here to start"),
	)
}

func (g *Game) renderSearch(v *game.View) app.UI {
	cfg := State.Config
	busy := v.State == game.Searching || v.State == game.Loading

	var progress app.UI
	switch v.State {
	case game.Searching:
		progress = app.P().Aria("busy", "true").Text("Searching GIFs...")
	case game.Loading:
		progress = app.Div().Body(
			app.P().Text(fmt.Sprintf("Loading GIFs %d/%d", v.LoadedCount, len(v.Cards))),
			app.If(v.LongWaitVisible, func() app.UI {
				return app.P().Class("long-wait").Text("This is taking a while, the game starts soon anyway.")
			}),
		)
	}

	ratings := []app.UI{}
	for _, r := range []string{"g", "pg", "pg-13", "r"} {
		ratings = append(ratings, app.Option().Value(r).Selected(State.Rating == r).Text(strings.ToUpper(r)))
	}

	var popular app.UI
	if len(State.Popular) > 0 && !busy {
		links := []app.UI{app.Small().Text("Popular: ")}
		for _, ts := range State.Popular {
			links = append(links, app.A().Href("#").Title(fmt.Sprintf("%d games", ts.Count)).
				OnClick(g.onPopularClick(ts.Query)).Text(ts.Query))
		}
		popular = app.Div().Class("popular").Body(links...)
	}

	return app.Dialog().Open(true).Class("search-overlay").Body(
		app.Article().Body(
			app.Header().Body(
				app.If(!busy, func() app.UI {
					return app.A().Href("#").Aria("label", "Close").Class("close").OnClick(g.onCloseSearch)
				}),
				app.H3().Text("Find GIFs to play with"),
			),
			app.Form().OnSubmit(g.onSearch).Body(
				app.Input().
					Type("search").
					ID("query").
					Name("query").
					Placeholder("e.g. cats").
					Value(State.Query).
					Disabled(busy).
					OnInput(g.onQueryChange),
				app.Label().For("rating").Text("Rating"),
				app.Select().ID("rating").Disabled(busy).OnChange(g.onRatingChange).Body(ratings...),
				app.Label().For("tableauSize").Text(fmt.Sprintf("Cards: %d", State.TableauSize)),
				app.Input().
					Type("range").
					ID("tableauSize").
					Min(cfg.MinCards).
					Max(cfg.MaxCards).
					Step(float64(cfg.CardsStep)).
					Value(State.TableauSize).
					Disabled(busy).
					OnInput(g.onSizeChange),
				app.Button().Type("submit").Disabled(busy).Text("Search"),
			),
			popular,
			progress,
		),
	)
}

func (g *Game) renderTableau(v *game.View) app.UI {
	if len(v.Cards) == 0 || v.Layout.IsZero() {
		return app.Div().Class("tableau", "empty")
	}
	rows, cols := v.Layout.Grid(orientation())
	cards := make([]app.UI, 0, len(v.Cards))
	for _, card := range v.Cards {
		classes := []string{"card"}
		if card.Flipped {
			classes = append(classes, "flipped")
		}
		if card.Matched {
			classes = append(classes, "matched")
		}
		if !card.ImageReady {
			classes = append(classes, "loading")
		}
		size := imageSize(card.Image)
		img := app.Img().
			Src(card.Image.URL).
			Alt(card.Image.Title).
			Style("width", size.Width).
			Style("height", size.Height).
			On("load", g.onCardLoaded(v.Epoch, card.Index))
		if size.AspectRatio != "" {
			img = img.Style("aspect-ratio", size.AspectRatio)
		}
		cards = append(cards, app.Div().Class(classes...).OnClick(g.onCardClick(card.Index)).Body(
			app.Div().Class("card-back"),
			app.Div().Class("card-face").Body(img),
		))
	}
	return app.Div().Class("tableau").
		Style("grid-template-rows", fmt.Sprintf("repeat(%d, 1fr)", rows)).
		Style("grid-template-columns", fmt.Sprintf("repeat(%d, 1fr)", cols)).
		Body(cards...)
}

func (g *Game) renderConfetti() app.UI {
	pieces := make([]app.UI, 0, len(g.confetti))
	for _, p := range g.confetti {
		pieces = append(pieces, app.Span().Class("confetti-piece").
			Style("left", fmt.Sprintf("%.1f%%", p.Left)).
			Style("background-color", p.Color).
			Style("transform", fmt.Sprintf("rotate(%ddeg)", p.Rotation)).
			Style("animation-delay", fmt.Sprintf("%dms", p.Delay.Milliseconds())).
			Style("animation-duration", fmt.Sprintf("%dms", p.Duration.Milliseconds())))
	}
	return app.Div().Class("confetti").Body(pieces...)
}

func (g *Game) renderAlert(alert *Alert) app.UI {
	if State.Error != "" {
		return app.Div().Class("alert", "error").Role("alert").Text(State.Error)
	}
	return app.Div().Class("alert").Role("alert").Body(
		app.Span().Text(alert.Message),
		app.A().Href("#").Class("close").OnClick(func(ctx app.Context, e app.Event) {
			e.PreventDefault()
			State.DismissAlert()
		}),
	)
}

func (g *Game) Render() app.UI {
	v := &State.View
	alert := State.CurrentAlert()
	return app.Main().Class("container").Body(
		app.If(v.Intro.HeaderVisible, func() app.UI { return &TopBar{} }),
		app.If(State.Error != "" || alert != nil, func() app.UI { return g.renderAlert(alert) }),
		app.If(v.Cards == nil, func() app.UI { return g.renderIntro(v) }),
		app.If(v.OverlayVisible, func() app.UI { return g.renderSearch(v) }),
		g.renderTableau(v),
		app.If(v.ConfettiVisible, g.renderConfetti),
	)
}
