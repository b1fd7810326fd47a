package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorDefaultsToSystem(t *testing.T) {
	assert.Equal(t, "system", ActorFromContext(context.Background()))
	assert.Equal(t, "system", ActorFromContext(WithActor(context.Background(), "  ")))
	assert.Equal(t, "alice", ActorFromContext(WithActor(context.Background(), " alice ")))
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
