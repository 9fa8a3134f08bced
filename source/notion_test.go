package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/grouper/types"
)

func notionRow(name, job, department string) map[string]any {
	text := func(s string) []map[string]string {
		if s == "" {
			return []map[string]string{}
		}

		return []map[string]string{{"plain_text": s}}
	}

	return map[string]any{
		"properties": map[string]any{
			"Name":       map[string]any{"title": text(name)},
			"job":        map[string]any{"rich_text": text(job)},
			"department": map[string]any{"rich_text": text(department)},
		},
	}
}

func TestNewNotion_Validation(t *testing.T) {
	_, err := NewNotion(NotionConfig{SecretKey: "s"})
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	_, err = NewNotion(NotionConfig{DatabaseID: "db"})
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	n, err := NewNotion(NotionConfig{DatabaseID: "db", SecretKey: "s"})
	require.NoError(t, err)
	require.Equal(t, DefaultNotionBaseURL, n.cfg.BaseURL)
	require.Equal(t, DefaultNotionVersion, n.cfg.Version)
}

func TestNotion_ListPeople(t *testing.T) {
	t.Run("sends headers and maps properties", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/v1/databases/db-123/query", r.URL.Path)
			require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			require.Equal(t, "2022-06-28", r.Header.Get("Notion-Version"))
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"results": []any{
					notionRow("佐藤 健", "エンジニア", "プロダクト事業部"),
					notionRow("", "ghost", "row"),
					notionRow("小林 誠", "セールス", ""),
				},
			})
		}))
		defer srv.Close()

		n, err := NewNotion(NotionConfig{BaseURL: srv.URL, DatabaseID: "db-123", SecretKey: "secret"})
		require.NoError(t, err)

		people, err := n.ListPeople(context.Background())
		require.NoError(t, err)
		require.Equal(t, []types.Person{
			{Name: "佐藤 健", Job: "エンジニア", Department: "プロダクト事業部"},
			{Name: "小林 誠", Job: "セールス", Department: ""},
		}, people)
	})

	t.Run("follows pagination cursors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req notionQueryRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			calls.Add(1)
			switch req.StartCursor {
			case "":
				_ = json.NewEncoder(w).Encode(map[string]any{
					"results":     []any{notionRow("a", "j", "d")},
					"has_more":    true,
					"next_cursor": "page-2",
				})
			case "page-2":
				_ = json.NewEncoder(w).Encode(map[string]any{
					"results":  []any{notionRow("b", "j", "d")},
					"has_more": false,
				})
			default:
				t.Errorf("unexpected cursor %q", req.StartCursor)
			}
		}))
		defer srv.Close()

		n, err := NewNotion(NotionConfig{BaseURL: srv.URL + "/", DatabaseID: "db", SecretKey: "s"})
		require.NoError(t, err)

		people, err := n.ListPeople(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, types.Group(people).Names())
		require.Equal(t, int32(2), calls.Load())
	})

	t.Run("non-2xx surfaces the response body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"API token is invalid."}`)
		}))
		defer srv.Close()

		n, err := NewNotion(NotionConfig{BaseURL: srv.URL, DatabaseID: "db", SecretKey: "bad"})
		require.NoError(t, err)

		_, err = n.ListPeople(context.Background())
		require.ErrorIs(t, err, types.ErrNotionRequest)
		require.Contains(t, err.Error(), "API token is invalid.")
		require.Contains(t, err.Error(), "401")
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "<html>")
		}))
		defer srv.Close()

		n, err := NewNotion(NotionConfig{BaseURL: srv.URL, DatabaseID: "db", SecretKey: "s"})
		require.NoError(t, err)

		_, err = n.ListPeople(context.Background())
		require.Error(t, err)
		require.NotErrorIs(t, err, types.ErrNotionRequest)
	})
}
