package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/reviews-api/internal/api/middleware"
	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

type stubAccountService struct {
	ports.AccountService
	accounts  []*domain.Account
	lastPatch domain.AccountPatch
	lastInput ports.CreateAccountInput
}

func (s *stubAccountService) List(_ context.Context, params ports.ListParams) (*ports.AccountList, error) {
	return &ports.AccountList{Items: s.accounts, PageInfo: ports.NewPageInfo(int64(len(s.accounts)), params)}, nil
}

func (s *stubAccountService) Get(_ context.Context, username string) (*domain.Account, error) {
	for _, a := range s.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccountService) Create(_ context.Context, in ports.CreateAccountInput) (*domain.Account, error) {
	s.lastInput = in
	return &domain.Account{ID: "new", Username: in.Username, Email: in.Email, Role: in.Role}, nil
}

func (s *stubAccountService) UpdateMe(_ context.Context, caller access.Caller, patch domain.AccountPatch) (*domain.Account, error) {
	s.lastPatch = patch
	return &domain.Account{ID: caller.AccountID, Username: caller.Username, Email: "me@example.com", Role: caller.Role}, nil
}

var alice = &domain.Account{ID: "u1", Username: "alice", Email: "alice@example.com", Role: domain.RoleUser}

func TestAccountHandler_Get_RedactsEmail(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(&stubAccountService{accounts: []*domain.Account{alice}})

	tests := []struct {
		name      string
		viewer    access.Caller
		wantEmail bool
	}{
		{"anonymous", access.Anonymous(), false},
		{"other user", access.Caller{AccountID: "u2", Role: domain.RoleUser}, false},
		{"moderator", access.Caller{AccountID: "m1", Role: domain.RoleModerator}, false},
		{"self", access.Caller{AccountID: "u1", Role: domain.RoleUser}, true},
		{"admin", access.Caller{AccountID: "a1", Role: domain.RoleAdmin}, true},
		{"superuser", access.Caller{AccountID: "s1", Role: domain.RoleUser, IsSuperuser: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("username")
			c.SetParamValues("alice")
			c.Set(middleware.CallerKey, tt.viewer)

			require.NoError(t, h.Get(c))

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			_, hasEmail := resp["email"]
			assert.Equal(t, tt.wantEmail, hasEmail)
			assert.Equal(t, "alice", resp["username"])
		})
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(&stubAccountService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("username")
	c.SetParamValues("ghost")

	assert.ErrorIs(t, h.Get(c), domain.ErrAccountNotFound)
}

func TestAccountHandler_List_Envelope(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(&stubAccountService{accounts: []*domain.Account{alice}})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=1&limit=5", nil), rec)

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp pageResponse[accountResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.Count)
	assert.Equal(t, 5, resp.Limit)
	require.Len(t, resp.Results, 1)
	assert.Empty(t, resp.Results[0].Email)
}

func TestAccountHandler_List_BadPage(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(&stubAccountService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=two", nil), httptest.NewRecorder())
	err := h.List(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestAccountHandler_Create_PassesRole(t *testing.T) {
	e := newTestEcho()
	svc := &stubAccountService{}
	h := NewAccountHandler(svc)

	c, rec := jsonContext(e, http.MethodPost, "/", `{"username":"bob","email":"bob@example.com","role":"moderator"}`)
	c.Set(middleware.CallerKey, access.Caller{AccountID: "a1", Role: domain.RoleAdmin})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.RoleModerator, svc.lastInput.Role)
	assert.Contains(t, rec.Body.String(), "bob@example.com")
}

func TestAccountHandler_Create_MalformedEmail(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(&stubAccountService{})

	c, _ := jsonContext(e, http.MethodPost, "/", `{"username":"bob","email":"bob.example.com"}`)
	c.Set(middleware.CallerKey, access.Caller{AccountID: "a1", Role: domain.RoleAdmin})

	var verr *domain.ValidationError
	require.ErrorAs(t, h.Create(c), &verr)
	assert.Equal(t, map[string][]string{"email": {"enter a valid email address"}}, verr.Fields)
}

func TestAccountHandler_Update_MalformedEmail(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(&stubAccountService{})

	c, _ := jsonContext(e, http.MethodPatch, "/", `{"email":"bob@"}`)
	c.SetParamNames("username")
	c.SetParamValues("bob")
	c.Set(middleware.CallerKey, access.Caller{AccountID: "a1", Role: domain.RoleAdmin})

	var verr *domain.ValidationError
	require.ErrorAs(t, h.Update(c), &verr)
	assert.Equal(t, map[string][]string{"email": {"enter a valid email address"}}, verr.Fields)
}

func TestAccountHandler_UpdateMe_MalformedEmail(t *testing.T) {
	e := newTestEcho()
	h := NewAccountHandler(&stubAccountService{})

	c, _ := jsonContext(e, http.MethodPatch, "/", `{"email":"not-an-email"}`)
	c.Set(middleware.CallerKey, access.Caller{AccountID: "u1", Username: "alice", Role: domain.RoleUser})

	var verr *domain.ValidationError
	require.ErrorAs(t, h.UpdateMe(c), &verr)
	assert.Equal(t, []string{"enter a valid email address"}, verr.Fields["email"])
}

func TestAccountHandler_UpdateMe_ForwardsPatch(t *testing.T) {
	e := newTestEcho()
	svc := &stubAccountService{}
	h := NewAccountHandler(svc)

	c, rec := jsonContext(e, http.MethodPatch, "/", `{"bio":"hi","role":"admin"}`)
	c.Set(middleware.CallerKey, access.Caller{AccountID: "u1", Username: "alice", Role: domain.RoleUser})

	require.NoError(t, h.UpdateMe(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastPatch.Bio)
	assert.Equal(t, "hi", *svc.lastPatch.Bio)
	assert.Contains(t, rec.Body.String(), "me@example.com")
}
