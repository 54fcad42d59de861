package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides a *Tracer built from a Config supplied elsewhere in the
// graph and flushes it on shutdown.
//
//	app := fx.New(
//	    fx.Supply(tracer.Config{ServiceName: "search", EnableExport: true}),
//	    logger.FXModule,
//	    tracer.FXModule,
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(NewClientWithDI),
	fx.Invoke(RegisterTracerLifecycle),
)

// TracerParams groups the dependencies of NewClientWithDI.
type TracerParams struct {
	fx.In

	Config Config
	Logger Logger `optional:"true"`
}

// NewClientWithDI builds a Tracer from injected dependencies.
func NewClientWithDI(params TracerParams) (*Tracer, error) {
	return NewClient(params.Config, params.Logger)
}

// RegisterTracerLifecycle flushes pending spans when the application stops.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if tracer.logger != nil {
				tracer.logger.Info("shutting down tracer...", nil, nil)
			}
			return tracer.Shutdown(ctx)
		},
	})
}
