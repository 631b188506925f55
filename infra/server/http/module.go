package http

import (
	nethttp "net/http"

	"go.uber.org/fx"
)

var Module = fx.Module("http-server",
	fx.Provide(NewServer),

	// The server starts as a lifecycle side effect; nothing downstream
	// consumes it, so force construction.
	fx.Invoke(func(*nethttp.Server) {}),
)
