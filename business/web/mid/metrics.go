package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/protochain/business/sys/metrics"
	"github.com/ardanlabs/protochain/foundation/web"
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			started := time.Now()

			// Call the next handler.
			err := handler(ctx, w, r)

			// Handle updating the metrics that can be handled here.
			if err != nil {
				metrics.AddError()
			}

			statusCode := http.StatusOK
			if v, verr := web.GetValues(ctx); verr == nil && v.StatusCode != 0 {
				statusCode = v.StatusCode
			}
			metrics.ObserveRequest(r.Method, statusCode, started)

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
