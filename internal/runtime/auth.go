// internal/runtime/auth.go
package runtime

import (
	"context"
	"log/slog"
	"os"

	"github.com/mbrt/gmailctl/cmd/gmailctl/localcred"
	gmailapi "google.golang.org/api/gmail/v1"
)

type Scope int

const (
	ScopeReadonly Scope = iota
	ScopeModify
)

// NewGmailService builds an authenticated Gmail service using gmailctl's
// local credential store. localcred chooses scopes based on what the binary
// requests on first run.
func NewGmailService(ctx context.Context, cfgDir string, scope Scope) (*gmailapi.Service, error) {
	switch scope {
	case ScopeReadonly:
		return (localcred.Provider{}).Service(ctx, cfgDir)
	case ScopeModify:
		return (localcred.Provider{}).Service(ctx, cfgDir)
	default:
		panic("unknown scope")
	}
}

func DefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
