package storage

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("storage",
	fx.Provide(Open),
	fx.Invoke(func(lc fx.Lifecycle, s *Store) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return s.Close()
			},
		})
	}),
)
