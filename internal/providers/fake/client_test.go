package fake

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/canopyhost/canopy/internal/core"
)

func recvEvent(t *testing.T, w core.Watcher) core.WatchEvent {
	t.Helper()
	select {
	case ev, ok := <-w.ResultChan():
		if !ok {
			t.Fatal("watch channel closed unexpectedly")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
	return core.WatchEvent{}
}

func expectNoEvent(t *testing.T, w core.Watcher) {
	t.Helper()
	select {
	case ev, ok := <-w.ResultChan():
		if ok {
			t.Fatalf("unexpected event: %v %s/%s", ev.Type, ev.Resource.Kind, ev.Resource.Metadata.Name)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCreateThenGet(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	port := int32(8080)
	created, err := client.Create(ctx, core.NewService("apps", "frontend", core.ServiceSpec{Port: &port}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.Metadata.UID == "" {
		t.Error("expected a store-assigned UID")
	}
	if created.Metadata.CreationTimestamp.IsZero() {
		t.Error("expected a store-assigned creation timestamp")
	}

	got, err := client.Get(ctx, core.KindService, "apps", "frontend")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != created {
		t.Error("expected Get to return the stored resource")
	}
	if got.Service.Spec.Port == nil || *got.Service.Spec.Port != 8080 {
		t.Errorf("spec not preserved: %+v", got.Service.Spec)
	}
}

func TestCreateDoesNotAliasInput(t *testing.T) {
	client := NewClient()
	input := core.NewContainer("", "redis", core.ContainerSpec{Image: "redis:7"})

	created, err := client.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created == input {
		t.Fatal("expected the store to hold a copy, not the caller's value")
	}

	// Mutating the caller's value must not change stored state.
	input.Container.Spec.Image = "redis:8"
	got, err := client.Get(context.Background(), core.KindContainer, "", "redis")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Container.Spec.Image != "redis:7" {
		t.Errorf("caller mutation leaked into the store: %q", got.Container.Spec.Image)
	}
}

func TestServicePortAllocation(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	create := func(name string, port *int32) *core.Resource {
		t.Helper()
		r, err := client.Create(ctx, core.NewService("", name, core.ServiceSpec{Port: port}))
		if err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
		return r
	}

	a := create("a", nil)
	if a.Service.Status.EffectivePort != 52001 {
		t.Errorf("service a: expected port 52001, got %d", a.Service.Status.EffectivePort)
	}

	b := create("b", nil)
	if b.Service.Status.EffectivePort != 52002 {
		t.Errorf("service b: expected port 52002, got %d", b.Service.Status.EffectivePort)
	}

	explicit := int32(9999)
	c := create("c", &explicit)
	if c.Service.Status.EffectivePort != 9999 {
		t.Errorf("service c: expected explicit port 9999, got %d", c.Service.Status.EffectivePort)
	}

	// The explicit port must not disturb the counter.
	d := create("d", nil)
	if d.Service.Status.EffectivePort != 52003 {
		t.Errorf("service d: expected port 52003, got %d", d.Service.Status.EffectivePort)
	}
}

func TestServiceAddressDefaults(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	plain, err := client.Create(ctx, core.NewService("", "plain", core.ServiceSpec{}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if plain.Service.Status.EffectiveAddress != "localhost" {
		t.Errorf("expected default address localhost, got %q", plain.Service.Status.EffectiveAddress)
	}

	addr := "10.1.2.3"
	pinned, err := client.Create(ctx, core.NewService("", "pinned", core.ServiceSpec{Address: &addr}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pinned.Service.Status.EffectiveAddress != "10.1.2.3" {
		t.Errorf("expected pinned address, got %q", pinned.Service.Status.EffectiveAddress)
	}
}

func TestWithPortStart(t *testing.T) {
	client := NewClient(WithPortStart(6000))

	r, err := client.Create(context.Background(), core.NewService("", "svc", core.ServiceSpec{}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Service.Status.EffectivePort != 6001 {
		t.Errorf("expected port 6001, got %d", r.Service.Status.EffectivePort)
	}
}

func TestConcurrentCreatesAllocateUniquePorts(t *testing.T) {
	client := NewClient()
	const n = 50

	var (
		mu    sync.Mutex
		ports []int
	)

	eg, ctx := errgroup.WithContext(context.Background())
	for i := range n {
		eg.Go(func() error {
			r, err := client.Create(ctx, core.NewService("", fmt.Sprintf("svc-%d", i), core.ServiceSpec{}))
			if err != nil {
				return err
			}
			mu.Lock()
			ports = append(ports, int(r.Service.Status.EffectivePort))
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("concurrent create: %v", err)
	}

	sort.Ints(ports)
	for i, p := range ports {
		if want := 52001 + i; p != want {
			t.Fatalf("ports not dense and unique: index %d has %d, want %d", i, p, want)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	client := NewClient()

	_, err := client.Get(context.Background(), core.KindService, "", "ghost")
	if !core.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeleteAlwaysFails(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	if _, err := client.Create(ctx, core.NewService("", "svc", core.ServiceSpec{})); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		kind      core.ResourceKind
		namespace string
		name      string
	}{
		{core.KindService, "", "svc"},
		{core.KindService, "", "ghost"},
		{core.KindContainer, "apps", "anything"},
	}

	for _, tt := range tests {
		err := client.Delete(ctx, tt.kind, tt.namespace, tt.name)
		if !core.IsUnimplemented(err) {
			t.Errorf("Delete(%s, %q, %q): expected Unimplemented, got %v", tt.kind, tt.namespace, tt.name, err)
		}
	}
}

func TestListFiltersByNamespace(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	for _, r := range []*core.Resource{
		core.NewService("ns1", "a", core.ServiceSpec{}),
		core.NewService("", "b", core.ServiceSpec{}),
		core.NewService("ns1", "c", core.ServiceSpec{}),
		core.NewService("ns2", "d", core.ServiceSpec{}),
		core.NewContainer("ns1", "e", core.ContainerSpec{Image: "redis:7"}),
	} {
		if _, err := client.Create(ctx, r); err != nil {
			t.Fatalf("Create %s: %v", r.Metadata.Name, err)
		}
	}

	ns1, err := client.List(ctx, core.KindService, "ns1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ns1) != 2 || ns1[0].Metadata.Name != "a" || ns1[1].Metadata.Name != "c" {
		t.Errorf("unexpected ns1 listing: %v", names(ns1))
	}

	// Resources with unset namespace only match the empty filter.
	def, err := client.List(ctx, core.KindService, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(def) != 1 || def[0].Metadata.Name != "b" {
		t.Errorf("unexpected default-namespace listing: %v", names(def))
	}
}

func TestWatchReplaysExistingInOrder(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	want := []string{"one", "two", "three"}
	for _, name := range want {
		if _, err := client.Create(ctx, core.NewService("", name, core.ServiceSpec{})); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	if _, err := client.Create(ctx, core.NewContainer("", "noise", core.ContainerSpec{Image: "x"})); err != nil {
		t.Fatalf("Create noise: %v", err)
	}

	w, err := client.Watch(ctx, core.KindService, "")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Stop()

	for _, name := range want {
		ev := recvEvent(t, w)
		if ev.Type != core.WatchEventAdded {
			t.Errorf("expected ADDED, got %v", ev.Type)
		}
		if ev.Resource.Metadata.Name != name {
			t.Errorf("replay out of order: expected %q, got %q", name, ev.Resource.Metadata.Name)
		}
	}

	// Replay done; a new creation arrives after it.
	if _, err := client.Create(ctx, core.NewService("", "four", core.ServiceSpec{})); err != nil {
		t.Fatalf("Create four: %v", err)
	}
	ev := recvEvent(t, w)
	if ev.Resource.Metadata.Name != "four" {
		t.Errorf("expected live event for %q, got %q", "four", ev.Resource.Metadata.Name)
	}
}

func TestWatchFiltersByKindNotNamespace(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	w, err := client.Watch(ctx, core.KindService, "ns1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Stop()

	// A different kind never reaches the subscription.
	if _, err := client.Create(ctx, core.NewContainer("ns1", "redis", core.ContainerSpec{Image: "redis:7"})); err != nil {
		t.Fatalf("Create: %v", err)
	}
	expectNoEvent(t, w)

	// The live stream does not filter by namespace.
	if _, err := client.Create(ctx, core.NewService("other", "svc", core.ServiceSpec{})); err != nil {
		t.Fatalf("Create: %v", err)
	}
	ev := recvEvent(t, w)
	if ev.Resource.Metadata.Namespace != "other" {
		t.Errorf("expected cross-namespace event, got namespace %q", ev.Resource.Metadata.Namespace)
	}
}

func TestWatchStopRemovesSubscription(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	w, err := client.Watch(ctx, core.KindService, "")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	w.Stop()
	for range w.ResultChan() {
	}

	client.mu.Lock()
	remaining := len(client.subs)
	client.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected no remaining subscriptions, got %d", remaining)
	}

	// Creating after cancellation must not error or deliver.
	if _, err := client.Create(ctx, core.NewService("", "late", core.ServiceSpec{})); err != nil {
		t.Fatalf("Create after Stop: %v", err)
	}
}

func TestWatchContextCancellation(t *testing.T) {
	client := NewClient()
	ctx, cancel := context.WithCancel(context.Background())

	w, err := client.Watch(ctx, core.KindService, "")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cancel()

	select {
	case _, ok := <-w.ResultChan():
		if ok {
			t.Fatal("expected channel close, got event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed after context cancellation")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		client.mu.Lock()
		remaining := len(client.subs)
		client.mu.Unlock()
		if remaining == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscription not removed after cancellation: %d left", remaining)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWatchSlowConsumerDoesNotBlockCreate(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	w, err := client.Watch(ctx, core.KindService, "")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Stop()

	// Nobody reads from w while we create; publishes must not stall.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 100 {
			if _, err := client.Create(ctx, core.NewService("", fmt.Sprintf("burst-%d", i), core.ServiceSpec{})); err != nil {
				t.Errorf("Create: %v", err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("create blocked on a slow watch consumer")
	}

	// The backlog is still delivered in order.
	first := recvEvent(t, w)
	if first.Type != core.WatchEventAdded {
		t.Errorf("expected ADDED, got %v", first.Type)
	}
}

func TestLogStream(t *testing.T) {
	client := NewClient()
	ctx := context.Background()

	created, err := client.Create(ctx, core.NewContainer("apps", "redis", core.ContainerSpec{Image: "redis:7"}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rc, err := client.LogStream(ctx, created, core.LogStreamStdOut, core.LogOptions{Follow: true})
	if err != nil {
		t.Fatalf("LogStream: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "Container apps/redis") {
		t.Errorf("expected stream to describe the resource, got %q", text)
	}
	if !strings.Contains(text, "stdout") {
		t.Errorf("expected stream to name the stream type, got %q", text)
	}
}

func names(resources []*core.Resource) []string {
	out := make([]string, 0, len(resources))
	for _, r := range resources {
		out = append(out, r.Metadata.Name)
	}
	return out
}
