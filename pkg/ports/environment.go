package ports

import (
	"context"

	"github.com/aretw0/turning/pkg/domain"
)

// Environment is the system under test as seen by the runtime.
// Setup and Teardown wrap the whole run; Before and After wrap every root test case;
// AfterEach runs after every attempt of every test case with the context it produced.
type Environment[C any] interface {
	Setup(ctx context.Context) error
	Teardown(ctx context.Context) error
	Before(ctx context.Context) error
	After(ctx context.Context) error
	AfterEach(ctx context.Context, c C, data domain.AfterEachData) error
}

// NopEnvironment implements every hook as a no-op. Embed it to override a subset.
type NopEnvironment[C any] struct{}

func (NopEnvironment[C]) Setup(context.Context) error    { return nil }
func (NopEnvironment[C]) Teardown(context.Context) error { return nil }
func (NopEnvironment[C]) Before(context.Context) error   { return nil }
func (NopEnvironment[C]) After(context.Context) error    { return nil }
func (NopEnvironment[C]) AfterEach(context.Context, C, domain.AfterEachData) error {
	return nil
}
