package frontend

import (
	"github.com/janpfeifer/GifCentration/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// TopBar is the header shown once the intro is dismissed.
type TopBar struct {
	app.Compo
}

func (t *TopBar) onNewSearch(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.SendOpenSearch()
}

func (t *TopBar) Render() app.UI {
	v := &State.View
	busy := v.State == game.Searching || v.State == game.Loading
	return app.Nav().Body(
		app.Ul().Body(
			app.Li().Body(app.Strong().Text("GifCentration")),
		),
		app.Ul().Body(
			app.Li().Body(
				app.Button().Disabled(busy).OnClick(t.onNewSearch).Text("New search"),
			),
		),
	)
}
