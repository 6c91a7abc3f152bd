package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/protochain/business/sys/validate"
	"github.com/ardanlabs/protochain/business/web/errs"
	"github.com/ardanlabs/protochain/business/web/mid"
	"github.com/ardanlabs/protochain/foundation/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp() *web.App {
	log := zap.NewNop().Sugar()

	app := web.NewApp(
		make(chan os.Signal, 1),
		mid.Logger(log),
		mid.Errors(log),
		mid.Metrics(),
		mid.Cors("*"),
		mid.Panics(),
	)

	app.Handle(http.MethodGet, "", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})

	app.Handle(http.MethodGet, "", "/missing", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewTrusted(errors.New("block not found"), http.StatusNotFound)
	})

	app.Handle(http.MethodGet, "", "/invalid", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var body struct {
			Hash string `json:"hash" validate:"required"`
		}
		return validate.Check(body)
	})

	app.Handle(http.MethodGet, "", "/ok", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, "ok", http.StatusOK)
	})

	return app
}

func serve(t *testing.T, app *web.App, path string) (*httptest.ResponseRecorder, errs.Response) {
	t.Helper()

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp errs.Response
	if w.Code >= http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}

	return w, resp
}

func TestErrors(t *testing.T) {
	app := newApp()

	w, resp := serve(t, app, "/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), resp.Error)

	w, resp = serve(t, app, "/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "block not found", resp.Error)

	w, resp = serve(t, app, "/invalid")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "data validation error", resp.Error)
	assert.Contains(t, resp.Fields, "hash")

	w, _ = serve(t, app, "/ok")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
