// Package channel holds the per-channel ingestion adapters. Each adapter
// delivers only content authored by the user; the pipeline trusts that
// filter and handles normalization, chunking and dedup itself.
package channel

import "context"

// Item is one raw unit of user-authored text from a channel.
type Item struct {
	Text     string
	Metadata map[string]string
}

// Emit hands one item to the ingestion pipeline. Returning an error
// stops the fetch.
type Emit func(Item) error

// Adapter is the capability contract every channel implements.
type Adapter interface {
	// SourceType tags samples produced from this channel.
	SourceType() string
	// TestConnection verifies reachability/credentials without ingesting.
	TestConnection(ctx context.Context) (bool, string)
	// Fetch streams raw user-authored items to emit, in channel order.
	Fetch(ctx context.Context, emit Emit) error
}

// Authenticator is the optional two-step auth surface some channels
// expose (Telegram). File-backed channels return requiresAuth=false.
type Authenticator interface {
	StartAuth(ctx context.Context, phone string) (requiresAuth bool, message string, err error)
	CompleteAuth(ctx context.Context, code string) error
}
