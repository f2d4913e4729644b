package identity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vkgraph/pkg/cache"
	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/httputil"
	"github.com/matzehuels/vkgraph/pkg/vk"
)

// fakeSource answers from a table and counts calls per identifier.
type fakeSource struct {
	mu    sync.Mutex
	users map[string]*vk.User
	errs  map[string]error
	calls map[string]int
	delay time.Duration
	total atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		users: make(map[string]*vk.User),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeSource) add(id int64, handle string) {
	u := &vk.User{ID: id, FirstName: "User", LastName: fmt.Sprint(id), ScreenName: handle}
	f.users[fmt.Sprint(id)] = u
	if handle != "" {
		f.users[handle] = u
	}
}

func (f *fakeSource) User(ctx context.Context, id string) (*vk.User, error) {
	f.total.Add(1)
	f.mu.Lock()
	f.calls[id]++
	err := f.errs[id]
	u := f.users[id]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s", vk.ErrNotFound, id)
	}
	return u, nil
}

func (f *fakeSource) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func newResolver(t *testing.T, src Source, opts Options) *Resolver {
	t.Helper()
	r, err := New(src, opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return r
}

func TestResolveCachesSuccess(t *testing.T) {
	src := newFakeSource()
	src.add(1, "one")
	r := newResolver(t, src, Options{})
	ctx := context.Background()

	for range 3 {
		u, ok := r.Resolve(ctx, 1)
		if !ok || u.ID != 1 {
			t.Fatalf("Resolve(1) = %v, %v", u, ok)
		}
	}
	if got := src.count("1"); got != 1 {
		t.Errorf("remote calls = %d, want 1", got)
	}
	st := r.Stats()
	if st.Hits != 2 || st.Misses != 1 || st.Entries != 1 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestResolveCachesDefinitiveFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"empty response", nil},
		{"api error", &vk.APIError{Method: "users.get", Code: vk.CodeInvalidUserID, Message: "Invalid user id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			if tt.err != nil {
				src.errs["9"] = tt.err
			}
			r := newResolver(t, src, Options{})

			for range 2 {
				if _, ok := r.Resolve(context.Background(), 9); ok {
					t.Fatal("Resolve(9) should fail")
				}
			}
			if got := src.count("9"); got != 1 {
				t.Errorf("remote calls = %d, want 1", got)
			}
		})
	}
}

func TestLookupLogsRestrictedBelowNotFound(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantLog bool
	}{
		{"private profile", vk.CodePrivateProfile, false},
		{"access denied", vk.CodeAccessDenied, false},
		{"invalid user id", vk.CodeInvalidUserID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			src.errs["9"] = &vk.APIError{Method: "users.get", Code: tt.code, Message: "refused"}
			var buf bytes.Buffer
			r := newResolver(t, src, Options{Logger: log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})})

			for range 2 {
				if _, err := r.Lookup(context.Background(), 9); !errors.Is(err, ErrUnresolvable) {
					t.Fatalf("Lookup(9) error = %v, want ErrUnresolvable", err)
				}
			}
			if got := src.count("9"); got != 1 {
				t.Errorf("remote calls = %d, want 1", got)
			}
			if got := bytes.Contains(buf.Bytes(), []byte("identity not found")); got != tt.wantLog {
				t.Errorf("info log written = %v, want %v (%q)", got, tt.wantLog, buf.String())
			}
		})
	}
}

func TestResolveDoesNotCacheTransportErrors(t *testing.T) {
	src := newFakeSource()
	src.add(5, "")
	src.errs["5"] = httputil.Retryable(fmt.Errorf("%w: users.get: connection reset", vk.ErrNetwork))
	r := newResolver(t, src, Options{})
	ctx := context.Background()

	if _, ok := r.Resolve(ctx, 5); ok {
		t.Fatal("first Resolve should fail")
	}

	src.mu.Lock()
	delete(src.errs, "5")
	src.mu.Unlock()

	if _, ok := r.Resolve(ctx, 5); !ok {
		t.Fatal("second Resolve should succeed")
	}
	if got := src.count("5"); got != 2 {
		t.Errorf("remote calls = %d, want 2", got)
	}
}

func TestResolveRejectsGroupKeys(t *testing.T) {
	src := newFakeSource()
	r := newResolver(t, src, Options{})

	_, err := r.Lookup(context.Background(), graph.GroupKey(5))
	if !errors.Is(err, ErrUnresolvable) {
		t.Errorf("Lookup(group) error = %v, want ErrUnresolvable", err)
	}
	if src.total.Load() != 0 {
		t.Error("group keys must not reach the API")
	}
}

func TestResolveEviction(t *testing.T) {
	src := newFakeSource()
	for i := int64(1); i <= 3; i++ {
		src.add(i, "")
	}
	r := newResolver(t, src, Options{Size: 2})
	ctx := context.Background()

	r.Resolve(ctx, 1)
	r.Resolve(ctx, 2)
	r.Resolve(ctx, 3) // evicts 1
	r.Resolve(ctx, 1)

	if got := src.count("1"); got != 2 {
		t.Errorf("calls for evicted key = %d, want 2", got)
	}
	if got := r.Stats().Entries; got != 2 {
		t.Errorf("Entries = %d, want 2", got)
	}
}

func TestResolveCoalescesConcurrentMisses(t *testing.T) {
	src := newFakeSource()
	src.add(7, "")
	src.delay = 50 * time.Millisecond
	r := newResolver(t, src, Options{})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := r.Resolve(context.Background(), 7); !ok {
				t.Error("Resolve(7) failed")
			}
		}()
	}
	wg.Wait()

	if got := src.count("7"); got != 1 {
		t.Errorf("remote calls = %d, want 1", got)
	}
}

func TestResolveSecondLevel(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	src := newFakeSource()
	src.add(11, "eleven")
	ctx := context.Background()

	first := newResolver(t, src, Options{Store: store, TTL: time.Hour})
	if _, ok := first.Resolve(ctx, 11); !ok {
		t.Fatal("Resolve(11) failed")
	}

	second := newResolver(t, src, Options{Store: store, TTL: time.Hour})
	u, ok := second.Resolve(ctx, 11)
	if !ok || u.ScreenName != "eleven" {
		t.Fatalf("Resolve(11) from store = %v, %v", u, ok)
	}
	if got := src.count("11"); got != 1 {
		t.Errorf("remote calls = %d, want 1", got)
	}
	if got := second.Stats().Remote; got != 0 {
		t.Errorf("Remote = %d, want 0", got)
	}
}

func TestResolveSeed(t *testing.T) {
	src := newFakeSource()
	src.add(42, "dm")
	r := newResolver(t, src, Options{})
	ctx := context.Background()

	u, err := r.ResolveSeed(ctx, "dm")
	if err != nil {
		t.Fatalf("ResolveSeed(dm) error: %v", err)
	}
	if u.ID != 42 {
		t.Errorf("ID = %d, want 42", u.ID)
	}

	if _, ok := r.Resolve(ctx, 42); !ok {
		t.Fatal("Resolve(42) after seed failed")
	}
	if got := src.count("42"); got != 0 {
		t.Errorf("seed should populate the numeric key, got %d calls", got)
	}

	if _, err := r.ResolveSeed(ctx, "nobody"); !errors.Is(err, vk.ErrNotFound) {
		t.Errorf("ResolveSeed(nobody) error = %v, want ErrNotFound", err)
	}
}
