// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/draftly/internal/draft"
	"github.com/jackzampolin/draftly/internal/home"
	"github.com/jackzampolin/draftly/internal/prompts"
	"github.com/jackzampolin/draftly/internal/providers"
	"github.com/jackzampolin/draftly/internal/review"
)

// Limits bounds request bodies.
type Limits struct {
	MaxJSONBytes   int64
	MaxUploadBytes int64
}

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Registry *providers.Registry
	// Reviewer is nil when no LLM provider is configured.
	Reviewer *review.Reviewer
	Drafter  *draft.Drafter
	Prompts  *prompts.Resolver
	Logger   *slog.Logger
	Home     *home.Dir
	Env      string
	Limits   Limits
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// ReviewerFrom extracts the document reviewer from context.
func ReviewerFrom(ctx context.Context) *review.Reviewer {
	if s := ServicesFrom(ctx); s != nil {
		return s.Reviewer
	}
	return nil
}

// DrafterFrom extracts the drafter from context.
func DrafterFrom(ctx context.Context) *draft.Drafter {
	if s := ServicesFrom(ctx); s != nil {
		return s.Drafter
	}
	return nil
}

// PromptResolverFrom extracts the prompt resolver from context.
func PromptResolverFrom(ctx context.Context) *prompts.Resolver {
	if s := ServicesFrom(ctx); s != nil {
		return s.Prompts
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

// EnvFrom returns the deployment environment name.
func EnvFrom(ctx context.Context) string {
	if s := ServicesFrom(ctx); s != nil {
		return s.Env
	}
	return ""
}

// LimitsFrom returns request body limits. Zero fields mean no configured limit.
func LimitsFrom(ctx context.Context) Limits {
	if s := ServicesFrom(ctx); s != nil {
		return s.Limits
	}
	return Limits{}
}
