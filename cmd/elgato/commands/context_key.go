package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/butterflysky/elgato-keylight/internal/control"
)

type serviceContextKey struct{}

// WithService stores svc in ctx. When the root command finds a service in
// its context it uses it instead of building one from the config file.
func WithService(ctx context.Context, svc control.Service) context.Context {
	return context.WithValue(ctx, serviceContextKey{}, svc)
}

func serviceFromContext(ctx context.Context) (control.Service, bool) {
	if ctx == nil {
		return nil, false
	}
	svc, ok := ctx.Value(serviceContextKey{}).(control.Service)
	return svc, ok && svc != nil
}

// getService returns the service set up by the root command.
func getService(cmd *cobra.Command) (control.Service, error) {
	if svc, ok := serviceFromContext(cmd.Context()); ok {
		return svc, nil
	}
	return nil, errors.New("light service not initialised")
}
