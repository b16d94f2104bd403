package cosmos

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Sternrassler/docdb-client/internal/testutil"
	"github.com/Sternrassler/docdb-client/pkg/headers"
	"github.com/Sternrassler/docdb-client/pkg/pagination"
	"github.com/Sternrassler/docdb-client/pkg/session"
)

func newTestClient(t *testing.T, endpoint string, opts ...ClientOption) *Client {
	t.Helper()
	c, err := NewClient(endpoint, http.DefaultClient, append([]ClientOption{WithAccount("acct")}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestListUsers_TwoPages(t *testing.T) {
	var (
		mu            sync.Mutex
		continuations []string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dbs/app/users" {
			t.Errorf("path = %s, want /dbs/app/users", r.URL.Path)
		}

		mu.Lock()
		continuations = append(continuations, r.Header.Get(headers.Continuation))
		page := len(continuations)
		mu.Unlock()

		w.Header().Set(headers.RequestCharge, "2.5")
		w.Header().Set(headers.ActivityID, testActivityID)
		w.Header().Set(headers.SessionToken, "0:1")
		if page == 1 {
			w.Header().Set(headers.Continuation, "tok1")
			w.Write([]byte(`{"_rid":"abc","Users":[{"id":"u1"}],"_count":1}`))
			return
		}
		w.Write([]byte(`{"_rid":"abc","Users":[{"id":"u2"}],"_count":1}`))
	}))
	defer srv.Close()

	pager := newTestClient(t, srv.URL).Database("app").ListUsers(ListOptions{})

	pages, err := pagination.Collect(context.Background(), pager)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}

	first := pages[0]
	if first.ResourceID != "abc" || first.Len() != 1 || first.Items[0].ID != "u1" {
		t.Errorf("page 1 = %+v", first)
	}
	if first.Charge != 2.5 {
		t.Errorf("page 1 charge = %v, want 2.5", first.Charge)
	}
	if first.Continuation() == nil || *first.Continuation() != "tok1" {
		t.Errorf("page 1 continuation = %v, want tok1", first.Continuation())
	}
	if pages[1].Continuation() != nil {
		t.Errorf("page 2 continuation = %q, want nil", *pages[1].Continuation())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(continuations) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(continuations))
	}
	if continuations[0] != "" {
		t.Errorf("first request continuation = %q, want none", continuations[0])
	}
	if continuations[1] != "tok1" {
		t.Errorf("second request continuation = %q, want tok1", continuations[1])
	}

	if pager.More() {
		t.Error("More() = true after last page")
	}
	if _, err := pager.NextPage(context.Background()); !errors.Is(err, pagination.ErrExhausted) {
		t.Errorf("NextPage() after last page error = %v, want ErrExhausted", err)
	}
}

func TestListCollections_FakeServer(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()
	fake.SetPages("/dbs/app/colls", itemsCollections,
		`[{"id":"orders","partitionKey":{"paths":["/customerId"],"kind":"Hash"}}]`,
		`[{"id":"customers"}]`,
		`[]`,
	)

	pager := newTestClient(t, fake.URL()).Database("app").ListCollections(ListOptions{MaxItemCount: 1})

	var ids []string
	pageCount := 0
	for page, err := range pager.Pages(context.Background()) {
		if err != nil {
			t.Fatalf("Pages() error = %v", err)
		}
		pageCount++
		for coll := range page.All() {
			ids = append(ids, coll.ID)
		}
	}

	if pageCount != 3 {
		t.Errorf("pages = %d, want 3", pageCount)
	}
	if len(ids) != 2 || ids[0] != "orders" || ids[1] != "customers" {
		t.Errorf("ids = %v, want [orders customers]", ids)
	}

	for _, req := range fake.Requests() {
		if got := req.Header.Get(headers.MaxItemCount); got != "1" {
			t.Errorf("%s = %q, want 1", headers.MaxItemCount, got)
		}
	}
}

func TestListDatabases_Resume(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()
	fake.SetPages("/dbs", itemsDatabases, `[{"id":"a"}]`, `[{"id":"b"}]`, `[{"id":"c"}]`)

	c := newTestClient(t, fake.URL())

	first := c.ListDatabases(ListOptions{})
	page, err := first.NextPage(context.Background())
	if err != nil {
		t.Fatalf("NextPage() error = %v", err)
	}
	if page.Items[0].ID != "a" {
		t.Fatalf("first item = %q, want a", page.Items[0].ID)
	}

	resumed := c.ListDatabases(ListOptions{Continuation: first.Continuation()})
	pages, err := pagination.Collect(context.Background(), resumed)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(pages) != 2 || pages[0].Items[0].ID != "b" || pages[1].Items[0].ID != "c" {
		t.Errorf("resumed pages = %d, want b then c", len(pages))
	}
}

func TestList_SessionPropagation(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()
	fake.SetPages("/dbs/app/users", itemsUsers, `[{"id":"u1"}]`, `[{"id":"u2"}]`)

	store := session.NewMemoryStore()
	c := newTestClient(t, fake.URL(), WithSessionStore(store))

	if _, err := pagination.Collect(context.Background(), c.Database("app").ListUsers(ListOptions{})); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	reqs := fake.Requests()
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}
	if got := reqs[0].Header.Get(headers.SessionToken); got != "" {
		t.Errorf("first request session token = %q, want none", got)
	}
	if got := reqs[1].Header.Get(headers.SessionToken); got != "0:1" {
		t.Errorf("second request session token = %q, want 0:1", got)
	}

	token, err := store.Get(context.Background(), session.Key{Account: "acct", Database: "app"})
	if err != nil || token != "0:2" {
		t.Errorf("stored token = %q, %v, want 0:2", token, err)
	}
}

func TestList_EventualSkipsSessionToken(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()
	fake.SetPages("/dbs/app/users", itemsUsers, `[{"id":"u1"}]`, `[{"id":"u2"}]`)

	c := newTestClient(t, fake.URL())
	opts := ListOptions{ConsistencyLevel: ConsistencyEventual}

	if _, err := pagination.Collect(context.Background(), c.Database("app").ListUsers(opts)); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	for i, req := range fake.Requests() {
		if got := req.Header.Get(headers.SessionToken); got != "" {
			t.Errorf("request %d session token = %q, want none", i, got)
		}
		if got := req.Header.Get(headers.ConsistencyLevel); got != "Eventual" {
			t.Errorf("request %d consistency = %q, want Eventual", i, got)
		}
	}
}

func TestList_StatusError(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()

	pager := newTestClient(t, fake.URL()).Database("missing").ListUsers(ListOptions{})

	_, err := pager.NextPage(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound || statusErr.Code != "NotFound" {
		t.Errorf("StatusError = %+v", statusErr)
	}
	if pager.More() {
		t.Error("More() = true after failed step")
	}
}

func TestList_InvalidContinuationMakesNoRequest(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()

	pager := newTestClient(t, fake.URL()).Database("app").ListUsers(ListOptions{Continuation: strPtr("bad\ntoken")})

	_, err := pager.NextPage(context.Background())

	var buildErr *RequestConstructionError
	if !errors.As(err, &buildErr) {
		t.Fatalf("error = %v, want *RequestConstructionError", err)
	}
	if n := fake.RequestCount(); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestList_DecodeErrorStopsPagination(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()
	resp := testutil.NewPageResponse("abc", itemsUsers, `[{"id":"u1"}]`, "tok1")
	delete(resp.Headers, headers.SessionToken)
	fake.SetResponse("/dbs/app/users", resp)

	pager := newTestClient(t, fake.URL()).Database("app").ListUsers(ListOptions{})

	pages, err := pagination.Collect(context.Background(), pager)

	var metaErr *headers.MetadataError
	if !errors.As(err, &metaErr) || metaErr.Header != headers.SessionToken {
		t.Fatalf("error = %v, want missing session token", err)
	}
	if len(pages) != 0 {
		t.Errorf("pages = %d, want 0", len(pages))
	}
	if fake.RequestCount() != 1 {
		t.Errorf("requests = %d, want 1", fake.RequestCount())
	}
}

type failingSender struct {
	err error
}

func (s failingSender) Do(*http.Request) (*http.Response, error) {
	return nil, s.err
}

func TestList_TransportErrorReturnedUnchanged(t *testing.T) {
	sendErr := errors.New("connection reset")
	c, err := NewClient("https://acct.documents.example.com", failingSender{err: sendErr})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.ListDatabases(ListOptions{}).NextPage(context.Background())
	if err != sendErr {
		t.Errorf("error = %v, want the sender's error unchanged", err)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, session.Key) (string, error) {
	return "", errors.New("store unavailable")
}

func (failingStore) Set(context.Context, session.Key, string) error {
	return errors.New("store unavailable")
}

func TestList_SessionStoreFailureDoesNotFailPage(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()
	fake.SetPages("/dbs/app/users", itemsUsers, `[{"id":"u1"}]`)

	c := newTestClient(t, fake.URL(), WithSessionStore(failingStore{}))

	page, err := c.Database("app").ListUsers(ListOptions{}).NextPage(context.Background())
	if err != nil {
		t.Fatalf("NextPage() error = %v", err)
	}
	if page.Len() != 1 {
		t.Errorf("Len = %d, want 1", page.Len())
	}
}

func TestList_CancelledContext(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()
	fake.SetPages("/dbs/app/users", itemsUsers, `[{"id":"u1"}]`, `[{"id":"u2"}]`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pager := newTestClient(t, fake.URL()).Database("app").ListUsers(ListOptions{})

	var seen int
	var lastErr error
	for _, err := range pager.Pages(ctx) {
		if err != nil {
			lastErr = err
			break
		}
		seen++
		cancel()
	}

	if seen != 1 {
		t.Errorf("pages before cancel = %d, want 1", seen)
	}
	if !errors.Is(lastErr, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", lastErr)
	}
	if fake.RequestCount() != 1 {
		t.Errorf("requests = %d, want 1", fake.RequestCount())
	}
}

func TestAllItems(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()
	fake.SetPages("/dbs/app/users", itemsUsers, `[{"id":"u1"},{"id":"u2"}]`, `[]`, `[{"id":"u3"}]`)

	pager := newTestClient(t, fake.URL()).Database("app").ListUsers(ListOptions{})

	var ids []string
	for user, err := range AllItems(context.Background(), pager) {
		if err != nil {
			t.Fatalf("AllItems() error = %v", err)
		}
		ids = append(ids, user.ID)
	}

	if len(ids) != 3 || ids[0] != "u1" || ids[2] != "u3" {
		t.Errorf("ids = %v, want [u1 u2 u3]", ids)
	}
}

func TestAllItems_BreakStopsFetching(t *testing.T) {
	fake := testutil.NewFakeDocDB()
	defer fake.Close()
	fake.SetPages("/dbs/app/users", itemsUsers, `[{"id":"u1"},{"id":"u2"}]`, `[{"id":"u3"}]`)

	pager := newTestClient(t, fake.URL()).Database("app").ListUsers(ListOptions{})

	for user, err := range AllItems(context.Background(), pager) {
		if err != nil {
			t.Fatal(err)
		}
		if user.ID == "u1" {
			break
		}
	}

	if fake.RequestCount() != 1 {
		t.Errorf("requests = %d, want 1", fake.RequestCount())
	}
	if !pager.More() {
		t.Error("More() = false, want the listing to be resumable")
	}
}
