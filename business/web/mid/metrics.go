package mid

import (
	"context"
	"expvar"
	"net/http"

	"github.com/ardanlabs/hashchain/foundation/web"
)

// Counters exposed on the debug vars endpoint.
var (
	requestCount = expvar.NewInt("requests")
	errorCount   = expvar.NewInt("errors")
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// Increment the request and errors counters.
			requestCount.Add(1)
			if err != nil {
				errorCount.Add(1)
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
