package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/service"
)

var alice = &model.Identity{UserID: "u-alice", Email: "alice@example.com"}

// newRequest builds a request carrying identity and chi URL params.
func newRequest(method, target, body string, id *model.Identity, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	ctx := req.Context()
	if id != nil {
		ctx = auth.ContextWithIdentity(ctx, id)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

type stubRecords struct {
	records map[string]*model.Record
	err     error
	gotID   *model.Identity
	gotIn   service.RecordInput
}

func (s *stubRecords) List(_ context.Context, id *model.Identity) ([]*model.Record, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*model.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out, nil
}

func (s *stubRecords) Create(_ context.Context, id *model.Identity, in service.RecordInput) (*model.Record, error) {
	s.gotID, s.gotIn = id, in
	if s.err != nil {
		return nil, s.err
	}
	return &model.Record{ID: "new", Title: in.Title, Description: in.Description, Content: in.Content, OwnerID: id.UserID}, nil
}

func (s *stubRecords) Get(_ context.Context, id *model.Identity, recordID string) (*model.Record, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.records[recordID]
	if !ok {
		return nil, service.ErrRecordNotFound
	}
	return rec, nil
}

func (s *stubRecords) Update(_ context.Context, id *model.Identity, recordID string, in service.RecordInput) (*model.Record, error) {
	s.gotID, s.gotIn = id, in
	if s.err != nil {
		return nil, s.err
	}
	return &model.Record{ID: recordID, Title: in.Title, Content: in.Content, OwnerID: id.UserID}, nil
}

func (s *stubRecords) Delete(_ context.Context, id *model.Identity, _ string) error {
	s.gotID = id
	return s.err
}

type stubExports struct {
	out      *service.Rendered
	archived *service.Archived
	err      error
	format   string
	draft    service.RecordInput
}

func (s *stubExports) Preview(context.Context, *model.Identity, string) (*service.Rendered, error) {
	return s.out, s.err
}

func (s *stubExports) Export(context.Context, *model.Identity, string) (*service.Rendered, error) {
	return s.out, s.err
}

func (s *stubExports) Draft(_ context.Context, _ *model.Identity, in service.RecordInput, format string) (*service.Rendered, error) {
	s.draft, s.format = in, format
	return s.out, s.err
}

func (s *stubExports) Archive(context.Context, *model.Identity, string) (*service.Archived, error) {
	return s.archived, s.err
}

type stubSessions struct {
	signIn   *service.SignIn
	err      error
	gotToken string
	signOuts int
}

func (s *stubSessions) SignIn(_ context.Context, token string) (*service.SignIn, error) {
	s.gotToken = token
	return s.signIn, s.err
}

func (s *stubSessions) SignOut(_ context.Context, token string) error {
	s.gotToken = token
	s.signOuts++
	return s.err
}

type stubResolver struct {
	user *model.User
}

func (s *stubResolver) ResolveUser(_ context.Context, id *model.Identity) (*model.User, error) {
	if id == nil {
		return nil, service.ErrUnauthenticated
	}
	if s.user == nil {
		return nil, service.ErrUserNotFound
	}
	return s.user, nil
}
