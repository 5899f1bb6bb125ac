package outbound

import "context"

// CredentialSource yields the opaque credential forwarded to every invocation.
// It is consulted once per batch.
type CredentialSource interface {
	Load(ctx context.Context) (string, error)
}
