// Package vktest provides an in-process fake of the VK API for tests.
package vktest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/matzehuels/vkgraph/pkg/vk"
)

// Server serves users.get, users.getFollowers and users.getSubscriptions
// from in-memory tables. Unknown users answer with API error 113.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	users         map[int64]vk.User
	handles       map[string]int64
	followers     map[int64][]int64
	subscriptions map[int64][]vk.SubscriptionItem
	failures      map[string]int
	calls         map[string]int
	requests      []Request
}

// Request records one call received by the server.
type Request struct {
	Method string
	Params map[string]string
}

// NewServer starts a fake API. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		users:         make(map[int64]vk.User),
		handles:       make(map[string]int64),
		followers:     make(map[int64][]int64),
		subscriptions: make(map[int64][]vk.SubscriptionItem),
		failures:      make(map[string]int),
		calls:         make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// BaseURL returns the API root to pass as vk.Config.BaseURL.
func (s *Server) BaseURL() string { return s.Server.URL + "/method/" }

// AddUser registers a resolvable user.
func (s *Server) AddUser(u vk.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	if u.ScreenName != "" {
		s.handles[u.ScreenName] = u.ID
	}
}

// AddUsers registers users with generated names.
func (s *Server) AddUsers(ids ...int64) {
	for _, id := range ids {
		s.AddUser(vk.User{ID: id, FirstName: "User", LastName: strconv.FormatInt(id, 10), ScreenName: "id" + strconv.FormatInt(id, 10)})
	}
}

// SetFollowers sets the follower list of id.
func (s *Server) SetFollowers(id int64, followers ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followers[id] = followers
}

// SetSubscriptions sets the extended subscription list of id.
func (s *Server) SetSubscriptions(id int64, items ...vk.SubscriptionItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[id] = items
}

// FailNext makes the next n calls whose method and user match key answer
// with HTTP 500. The key is "method" or "method:user".
func (s *Server) FailNext(key string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key] = n
}

// Calls returns how many requests were made for key ("method" or
// "method:user").
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// Requests returns a copy of all recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Profile is a subscription item for a user.
func Profile(id int64) vk.SubscriptionItem {
	return vk.SubscriptionItem{ID: id, Type: vk.TypeProfile}
}

// Community is a subscription item for a group.
func Community(id int64, name string) vk.SubscriptionItem {
	return vk.SubscriptionItem{ID: id, Type: vk.TypeGroup, Name: name, ScreenName: "club" + strconv.FormatInt(id, 10)}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/method/")
	q := r.URL.Query()
	subject := q.Get("user_id")
	if subject == "" {
		subject = q.Get("user_ids")
	}

	s.mu.Lock()
	params := make(map[string]string, len(q))
	for k := range q {
		params[k] = q.Get(k)
	}
	s.requests = append(s.requests, Request{Method: method, Params: params})
	s.calls[method]++
	s.calls[method+":"+subject]++
	fail := s.take(method+":"+subject) || s.take(method)
	s.mu.Unlock()

	if fail {
		http.Error(w, "temporarily unavailable", http.StatusInternalServerError)
		return
	}
	if q.Get("access_token") == "" {
		writeError(w, 5, "User authorization failed: no access_token passed.")
		return
	}

	switch method {
	case "users.get":
		s.usersGet(w, q.Get("user_ids"))
	case "users.getFollowers":
		s.followersGet(w, q)
	case "users.getSubscriptions":
		s.subscriptionsGet(w, q)
	default:
		writeError(w, 3, "Unknown method passed")
	}
}

func (s *Server) take(key string) bool {
	if s.failures[key] > 0 {
		s.failures[key]--
		return true
	}
	return false
}

func (s *Server) lookup(ident string) (vk.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := strconv.ParseInt(ident, 10, 64)
	if err != nil {
		var ok bool
		if id, ok = s.handles[ident]; !ok {
			return vk.User{}, false
		}
	}
	u, ok := s.users[id]
	return u, ok
}

func (s *Server) usersGet(w http.ResponseWriter, ids string) {
	var out []vk.User
	for _, ident := range strings.Split(ids, ",") {
		u, ok := s.lookup(ident)
		if !ok {
			writeError(w, vk.CodeInvalidUserID, "Invalid user id")
			return
		}
		out = append(out, u)
	}
	writeResponse(w, out)
}

func (s *Server) followersGet(w http.ResponseWriter, q map[string][]string) {
	id, offset, count, ok := pageArgs(q)
	if !ok {
		writeError(w, 100, "One of the parameters specified was missing or invalid")
		return
	}
	s.mu.Lock()
	all := s.followers[id]
	s.mu.Unlock()
	writeResponse(w, map[string]any{"count": len(all), "items": window(all, offset, count)})
}

func (s *Server) subscriptionsGet(w http.ResponseWriter, q map[string][]string) {
	id, offset, count, ok := pageArgs(q)
	if !ok {
		writeError(w, 100, "One of the parameters specified was missing or invalid")
		return
	}
	s.mu.Lock()
	all := s.subscriptions[id]
	s.mu.Unlock()
	writeResponse(w, map[string]any{"count": len(all), "items": window(all, offset, count)})
}

func pageArgs(q map[string][]string) (id int64, offset, count int, ok bool) {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	var err error
	if id, err = strconv.ParseInt(get("user_id"), 10, 64); err != nil {
		return 0, 0, 0, false
	}
	offset, _ = strconv.Atoi(get("offset"))
	if count, err = strconv.Atoi(get("count")); err != nil {
		count = 100
	}
	return id, offset, count, true
}

func window[T any](all []T, offset, count int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := min(offset+count, len(all))
	return all[offset:end]
}

func writeResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"response": v})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"error_code": code, "error_msg": msg},
	})
}
