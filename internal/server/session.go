package server

import (
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/arloliu/grouper/types"
)

const sessionCookieName = "grouper_session"

// session is the UI state of one browser.
type session struct {
	mu             sync.Mutex
	groupCount     string
	groups         []types.Group
	membersVisible bool
}

// sessionView is an immutable copy of a session used for rendering.
type sessionView struct {
	GroupCount     string
	Groups         []types.Group
	MembersVisible bool
}

func (s *session) view() sessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sessionView{
		GroupCount:     s.groupCount,
		Groups:         s.groups,
		MembersVisible: s.membersVisible,
	}
}

func (s *session) setGroups(raw string, groups []types.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.groupCount = raw
	s.groups = slices.Clone(groups)
}

func (s *session) setGroupCount(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.groupCount = raw
}

func (s *session) toggleMembers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.membersVisible = !s.membersVisible
}

// sessionStore keeps sessions in a TTL cache. Every access extends the
// session lifetime by the TTL.
type sessionStore struct {
	cache     *cache.Cache
	ttl       time.Duration
	closeOnce sync.Once
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &sessionStore{
		cache: cache.New(ttl, ttl),
		ttl:   ttl,
	}
}

// get returns the session for r, creating one and setting the cookie on w
// when r carries no valid session id.
func (st *sessionStore) get(w http.ResponseWriter, r *http.Request, defaultCount int) *session {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			if v, ok := st.cache.Get(id.String()); ok {
				sess := v.(*session)
				st.cache.Set(id.String(), sess, st.ttl)

				return sess
			}
		}
	}

	id := uuid.NewString()
	sess := &session{groupCount: strconv.Itoa(defaultCount)}
	st.cache.Set(id, sess, st.ttl)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(st.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return sess
}

// len returns the number of live sessions.
func (st *sessionStore) len() int {
	return st.cache.ItemCount()
}

// close drops all sessions.
func (st *sessionStore) close() {
	st.closeOnce.Do(st.cache.Flush)
}
