package main

import (
	"context"
	"fmt"
	"io"

	"github.com/wrale/wrale-scheduler/internal/wschedd/auth"
)

// tokenFlags select a one-shot token command instead of serving
type tokenFlags struct {
	issueFor  int64
	revokeFor int64
}

func (f tokenFlags) set() bool {
	return f.issueFor != 0 || f.revokeFor != 0
}

// runTokenCommand revokes first so both flags together rotate a user's token
func runTokenCommand(ctx context.Context, svc *auth.Service, f tokenFlags, out io.Writer) error {
	if f.revokeFor != 0 {
		if err := svc.RevokeTokens(ctx, f.revokeFor); err != nil {
			return fmt.Errorf("revoking tokens: %w", err)
		}
		fmt.Fprintf(out, "revoked tokens of user %d\n", f.revokeFor)
	}
	if f.issueFor != 0 {
		token, err := svc.CreateToken(ctx, f.issueFor)
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}
		fmt.Fprintln(out, token.Plain)
	}
	return nil
}
