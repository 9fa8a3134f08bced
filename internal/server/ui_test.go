package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/grouper/source"
	"github.com/arloliu/grouper/types"
)

// browser replays the session cookie across requests.
type browser struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (b *browser) request(method, target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}

	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			b.cookie = c
		}
	}

	return rec
}

func (b *browser) page() string {
	b.t.Helper()

	rec := b.request(http.MethodGet, "/", nil)
	require.Equal(b.t, http.StatusOK, rec.Code)
	require.Equal(b.t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	return rec.Body.String()
}

func TestIndex_States(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		b := &browser{t: t, h: newTestServer(t, &fakeService{})}

		body := b.page()
		require.Contains(t, body, "<div>loading...</div>")
		require.NotContains(t, body, "シャッフル")
	})

	t.Run("failed", func(t *testing.T) {
		b := &browser{t: t, h: newTestServer(t, &fakeService{snap: failedSnapshot(errors.New("down"))})}

		body := b.page()
		require.Contains(t, body, "<div>failed to load</div>")
		require.NotContains(t, body, "loading...")
		require.NotContains(t, body, "シャッフル")
	})

	t.Run("loaded", func(t *testing.T) {
		b := &browser{t: t, h: newTestServer(t, &fakeService{snap: loadedSnapshot(source.DefaultRoster())})}

		body := b.page()
		require.Contains(t, body, "メンバー (クリックして表示)")
		require.Regexp(t, `<h3><button type="submit">メンバー`, body)
		require.NotRegexp(t, `<button[^>]*>\s*<h[1-6]`, body, "headings may not be nested in buttons")
		require.Contains(t, body, "シャッフル")
		require.Contains(t, body, `value="2"`)
		require.NotContains(t, body, "職種:")
		require.NotContains(t, body, "グループ1:")
		require.NotNil(t, b.cookie)
	})
}

func TestIndex_MemberToggle(t *testing.T) {
	b := &browser{t: t, h: newTestServer(t, &fakeService{snap: loadedSnapshot(source.DefaultRoster())})}
	b.page()

	rec := b.request(http.MethodPost, "/members/toggle", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	body := b.page()
	engineer := strings.Index(body, "<h4>職種: エンジニア</h4>")
	designer := strings.Index(body, "<h4>職種: デザイナー</h4>")
	sales := strings.Index(body, "<h4>職種: セールス</h4>")
	require.Positive(t, engineer)
	require.Greater(t, designer, engineer)
	require.Greater(t, sales, designer)
	require.Contains(t, body, "<li>佐藤 健 - (プロダクト事業部)</li>")
	require.Contains(t, body, "<li>山田 花子 - (セールス事業部)</li>")

	b.request(http.MethodPost, "/members/toggle", url.Values{})
	require.NotContains(t, b.page(), "職種:")
}

func TestShuffle(t *testing.T) {
	roster := source.DefaultRoster()
	groups := []types.Group{roster[:2], roster[2:3]}

	t.Run("stores groups in the session", func(t *testing.T) {
		svc := &fakeService{snap: loadedSnapshot(roster), groups: groups}
		b := &browser{t: t, h: newTestServer(t, svc)}
		b.page()

		rec := b.request(http.MethodPost, "/shuffle", url.Values{"count": {"2"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, 2, svc.lastCount)
		require.Equal(t, "", svc.lastStrategy)

		body := b.page()
		require.Contains(t, body, "<div>グループ1: 佐藤 健, 鈴木 美咲</div>")
		require.Contains(t, body, "<div>グループ2: 高橋 翔</div>")
		require.NotContains(t, body, "グループ3:")
	})

	t.Run("keeps the raw count text", func(t *testing.T) {
		svc := &fakeService{snap: loadedSnapshot(roster), groups: []types.Group{}}
		b := &browser{t: t, h: newTestServer(t, svc)}

		b.request(http.MethodPost, "/shuffle", url.Values{"count": {"abc"}})
		require.Equal(t, 0, svc.lastCount)

		body := b.page()
		require.Contains(t, body, `value="abc"`)
		require.NotContains(t, body, "グループ1:")
	})

	t.Run("sessions are independent", func(t *testing.T) {
		svc := &fakeService{snap: loadedSnapshot(roster), groups: groups}
		srv := newTestServer(t, svc)
		alice := &browser{t: t, h: srv}
		bob := &browser{t: t, h: srv}

		alice.request(http.MethodPost, "/shuffle", url.Values{"count": {"2"}})
		require.Contains(t, alice.page(), "グループ1:")
		require.NotContains(t, bob.page(), "グループ1:")
		require.NotEqual(t, alice.cookie.Value, bob.cookie.Value)
	})

	t.Run("loading keeps previous groups", func(t *testing.T) {
		svc := &fakeService{snap: loadedSnapshot(roster), groups: groups}
		b := &browser{t: t, h: newTestServer(t, svc)}
		b.request(http.MethodPost, "/shuffle", url.Values{"count": {"2"}})

		svc.snap = loadedSnapshot(roster)
		svc.err = types.ErrRosterLoading
		rec := b.request(http.MethodPost, "/shuffle", url.Values{"count": {"5"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)

		body := b.page()
		require.Contains(t, body, "グループ1: 佐藤 健, 鈴木 美咲")
		require.Contains(t, body, `value="5"`)
	})

	t.Run("unknown session cookie starts a new session", func(t *testing.T) {
		svc := &fakeService{snap: loadedSnapshot(roster)}
		b := &browser{t: t, h: newTestServer(t, svc)}
		b.cookie = &http.Cookie{Name: sessionCookieName, Value: "not-a-uuid"}

		b.page()
		require.NotEqual(t, "not-a-uuid", b.cookie.Value)
	})
}

func TestSessionStore(t *testing.T) {
	st := newSessionStore(0)
	require.Equal(t, 0, st.len())

	rec := httptest.NewRecorder()
	sess := st.get(rec, httptest.NewRequest(http.MethodGet, "/", nil), 4)
	require.Equal(t, "4", sess.view().GroupCount)
	require.Equal(t, 1, st.len())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	again := httptest.NewRecorder()
	require.Same(t, sess, st.get(again, req, 4))
	require.Empty(t, again.Result().Cookies())

	st.close()
	require.Equal(t, 0, st.len())
}
