// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/protochain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/protochain/foundation/blockchain/state"
	"github.com/ardanlabs/protochain/foundation/events"
	"github.com/ardanlabs/protochain/foundation/nameservice"
	"github.com/ardanlabs/protochain/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes. Miners and wallets
// address the routes without a version prefix.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, "", "/events", pbl.Events)
	app.Handle(http.MethodGet, "", "/status", pbl.Status)
	app.Handle(http.MethodGet, "", "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, "", "/blocks/next", pbl.NextBlock)
	app.Handle(http.MethodGet, "", "/blocks/:indexOrHash", pbl.QueryBlock)
	app.Handle(http.MethodPost, "", "/blocks", pbl.AddBlock)
	app.Handle(http.MethodGet, "", "/transactions", pbl.Mempool)
	app.Handle(http.MethodGet, "", "/transactions/:hash", pbl.QueryTransaction)
	app.Handle(http.MethodGet, "", "/transactions/:hash/proof", pbl.TransactionProof)
	app.Handle(http.MethodPost, "", "/transactions", pbl.AddTransaction)
}
