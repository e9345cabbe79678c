package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }

type pong struct{ N int }

func TestPublishWithoutBus(t *testing.T) {
	Use(nil)
	unsubscribe := Subscribe(func(context.Context, ping) { t.Fatal("no bus is installed") })
	Publish(context.Background(), ping{1})
	unsubscribe()
}

func TestSubscribeByType(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var pings, pongs []int
	unsubPing := Subscribe(func(_ context.Context, e ping) { pings = append(pings, e.N) })
	defer Subscribe(func(_ context.Context, e pong) { pongs = append(pongs, e.N) })()

	Publish(context.Background(), ping{1})
	Publish(context.Background(), pong{2})
	unsubPing()
	Publish(context.Background(), ping{3})

	require.Equal(t, []int{1}, pings)
	require.Equal(t, []int{2}, pongs)
}

func TestUnsubscribeKeepsOtherHandlers(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var got []string
	first := Subscribe(func(context.Context, ping) { got = append(got, "first") })
	defer Subscribe(func(context.Context, ping) { got = append(got, "second") })()

	Publish(context.Background(), ping{})
	first()
	first()
	Publish(context.Background(), ping{})

	require.Equal(t, []string{"first", "second", "second"}, got)
}

type ctxKey struct{}

func TestContextIsForwarded(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var got any
	defer Subscribe(func(ctx context.Context, _ ping) { got = ctx.Value(ctxKey{}) })()
	Publish(context.WithValue(context.Background(), ctxKey{}, "v"), ping{})
	require.Equal(t, "v", got)
}
