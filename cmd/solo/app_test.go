package main

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/solo"
	"github.com/arloliu/solo/internal/logging"
	"github.com/arloliu/solo/subscription"
	solotest "github.com/arloliu/solo/testing"
)

func TestApp_RelaysOnlyWhileLeader(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping embedded NATS test in short mode")
	}

	ctx := t.Context()
	_, nc := solotest.StartEmbeddedNATS(t)
	js, _ := solotest.CreateStream(t, nc, "ORDERS", "orders.>")
	_, relayed := solotest.CreateStream(t, nc, "RELAYED", "relayed.>")

	cfg := defaultHostConfig()
	cfg.Election = solo.TestConfig()
	cfg.Election.LeaseBucket = "app-lease"
	cfg.Admin.Addr = "127.0.0.1:0"
	cfg.Consumers = []subscription.ConsumerConfig{{StreamName: "ORDERS", Durable: "orders-relay"}}

	a, err := newApp(ctx, cfg, nc, logging.NewTest(t))
	require.NoError(t, err)
	require.NoError(t, a.start(ctx))
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.stop(stopCtx)
	})

	require.True(t, a.manager.IsLeader())
	require.True(t, a.gate.IsOpen())
	require.Eventually(t, a.publisher.Enabled, time.Second, 10*time.Millisecond)

	_, err = js.Publish(ctx, "orders.created", []byte(`{"id":1}`))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		info, err := relayed.Info(ctx)
		return err == nil && info.State.Msgs == 1
	}, 2*time.Second, 20*time.Millisecond)

	msg, err := relayed.GetLastMsgForSubject(ctx, "relayed.orders.created")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1}`, string(msg.Data))

	base := "http://" + a.adminAddr.String()

	resp, err := http.Get(base + "/management/leader") //nolint:noctx
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Contains(t, string(body), `"leader":true`)

	resp, err = http.Post(base+"/management/shutdown", "application/json", nil) //nolint:noctx
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, solo.StateReleased, a.manager.State())
	require.False(t, a.gate.IsOpen())
	require.Eventually(t, func() bool { return !a.publisher.Enabled() }, time.Second, 10*time.Millisecond)

	// Nothing is relayed once leadership is handed over.
	_, err = js.Publish(ctx, "orders.created", []byte(`{"id":2}`))
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	info, err := relayed.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), info.State.Msgs)

	resp, err = http.Get(base + "/metrics") //nolint:noctx
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Contains(t, string(body), "solo_election_state_transitions_total")
}
