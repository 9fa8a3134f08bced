package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/grouper/source"
	"github.com/arloliu/grouper/types"
)

func TestHandlePeople(t *testing.T) {
	for _, path := range []string{"/api/people", "/api/users"} {
		t.Run(path+" serves the loaded roster", func(t *testing.T) {
			roster := source.DefaultRoster()
			srv := newTestServer(t, &fakeService{snap: loadedSnapshot(roster)})

			rec := do(t, srv, http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			var people []types.Person
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &people))
			require.Equal(t, roster, people)
		})
	}

	t.Run("field names are name job department", func(t *testing.T) {
		srv := newTestServer(t, &fakeService{snap: loadedSnapshot([]types.Person{{Name: "a", Job: "b", Department: "c"}})})

		rec := do(t, srv, http.MethodGet, "/api/people", nil)
		require.JSONEq(t, `[{"name":"a","job":"b","department":"c"}]`, rec.Body.String())
	})

	t.Run("empty roster is an empty array", func(t *testing.T) {
		srv := newTestServer(t, &fakeService{snap: loadedSnapshot(nil)})

		rec := do(t, srv, http.MethodGet, "/api/people", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("loading is 503", func(t *testing.T) {
		srv := newTestServer(t, &fakeService{})

		rec := do(t, srv, http.MethodGet, "/api/people", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("failure is 502 with the cause", func(t *testing.T) {
		srv := newTestServer(t, &fakeService{snap: failedSnapshot(errors.New("no such table: Users"))})

		rec := do(t, srv, http.MethodGet, "/api/users", nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Contains(t, body.Error, "no such table: Users")
	})

	t.Run("wrong method is rejected", func(t *testing.T) {
		srv := newTestServer(t, &fakeService{snap: loadedSnapshot(nil)})

		rec := do(t, srv, http.MethodDelete, "/api/people", nil)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleGroups(t *testing.T) {
	roster := source.DefaultRoster()
	groups := []types.Group{roster[:6], roster[6:]}

	t.Run("missing count uses the default", func(t *testing.T) {
		svc := &fakeService{snap: loadedSnapshot(roster), groups: groups}
		srv := newTestServer(t, svc)

		rec := do(t, srv, http.MethodGet, "/api/groups", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 2, svc.lastCount)
		require.Equal(t, "", svc.lastStrategy)

		var body struct {
			Groups []types.Group `json:"groups"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, groups, body.Groups)
	})

	t.Run("count is parsed leniently", func(t *testing.T) {
		cases := map[string]int{
			"3":       3,
			"+4":      4,
			"%205x":   5,
			"abc":     0,
			"":        0,
			"-1":      -1,
			"9999999": 9999999,
		}
		for raw, want := range cases {
			svc := &fakeService{snap: loadedSnapshot(roster), groups: []types.Group{}}
			srv := newTestServer(t, svc)

			rec := do(t, srv, http.MethodGet, "/api/groups?count="+raw, nil)
			require.Equal(t, http.StatusOK, rec.Code, raw)
			require.Equal(t, want, svc.lastCount, raw)
		}
	})

	t.Run("strategy is passed through", func(t *testing.T) {
		svc := &fakeService{snap: loadedSnapshot(roster), groups: groups}
		srv := newTestServer(t, svc)

		rec := do(t, srv, http.MethodGet, "/api/groups?count=2&strategy=round-robin", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "round-robin", svc.lastStrategy)
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		svc := &fakeService{snap: loadedSnapshot(roster), groups: []types.Group{}}
		srv := newTestServer(t, svc)

		rec := do(t, srv, http.MethodGet, "/api/groups?count=0", nil)
		require.JSONEq(t, `{"groups":[]}`, rec.Body.String())
	})

	errCases := []struct {
		name string
		err  error
		code int
	}{
		{"unknown strategy is 400", fmt.Errorf("%w: %q", types.ErrUnknownStrategy, "x"), http.StatusBadRequest},
		{"loading is 503", types.ErrRosterLoading, http.StatusServiceUnavailable},
		{"failure is 502", fmt.Errorf("%w: %w", types.ErrRosterUnavailable, errors.New("down")), http.StatusBadGateway},
		{"anything else is 500", errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeService{err: tc.err})

			rec := do(t, srv, http.MethodGet, "/api/groups?count=2", nil)
			require.Equal(t, tc.code, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.err.Error(), body.Error)
		})
	}
}

func TestHandleRefresh(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		svc := &fakeService{snap: loadedSnapshot(nil)}
		srv := newTestServer(t, svc)

		rec := do(t, srv, http.MethodPost, "/api/people/refresh", nil)
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.JSONEq(t, `{"state":"loading"}`, rec.Body.String())
		require.Equal(t, 1, svc.refreshes)
	})

	t.Run("not started is 503", func(t *testing.T) {
		srv := newTestServer(t, &fakeService{refreshErr: types.ErrNotStarted})

		rec := do(t, srv, http.MethodPost, "/api/people/refresh", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("get is not allowed", func(t *testing.T) {
		srv := newTestServer(t, &fakeService{})

		rec := do(t, srv, http.MethodGet, "/api/people/refresh", nil)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
