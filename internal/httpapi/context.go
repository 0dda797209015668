package httpapi

import "context"

// serverBaseCtx is canceled on shutdown. Handlers doing I/O join it with the
// request context.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context; nil resets it.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives from req and additionally cancels when base is done.
func joinContexts(base, req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req)
	if base.Err() != nil {
		cancel()
	}
	stop := context.AfterFunc(base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
