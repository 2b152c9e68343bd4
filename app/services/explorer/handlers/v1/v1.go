// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/bitcoin/app/services/explorer/handlers/v1/public"
	"github.com/ardanlabs/bitcoin/foundation/events"
	"github.com/ardanlabs/bitcoin/foundation/explorer"
	"github.com/ardanlabs/bitcoin/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log      *zap.SugaredLogger
	Explorer *explorer.Client
	Evts     *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:      cfg.Log,
		Explorer: cfg.Explorer,
		Evts:     cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/address/:address", pbl.Address)
	app.Handle(http.MethodGet, version, "/address/:address/txs", pbl.AddressTxs)
	app.Handle(http.MethodGet, version, "/tx/:txid", pbl.Transaction)
	app.Handle(http.MethodGet, version, "/block/:blockid", pbl.Block)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
}
