package server

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/arloliu/grouper"
	"github.com/arloliu/grouper/types"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": strings.Join,
}).ParseFS(templateFS, "templates/index.html"))

// jobSection lists the members of one job.
type jobSection struct {
	Job     string
	Members []types.Person
}

// indexPage is the data rendered by the index template.
type indexPage struct {
	Loading        bool
	Failed         bool
	Jobs           []jobSection
	MembersVisible bool
	GroupCount     string
	Groups         []types.Group
}

// handleIndex renders the shuffle page for the caller's session.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r, s.defaultGroupCount)
	view := sess.view()
	snap := s.svc.Snapshot()

	page := indexPage{
		Loading:        snap.State == types.RosterStateLoading,
		Failed:         snap.State == types.RosterStateFailed,
		MembersVisible: view.MembersVisible,
		GroupCount:     view.GroupCount,
		Groups:         view.Groups,
	}

	if snap.State == types.RosterStateLoaded && view.MembersVisible {
		for _, job := range grouper.Jobs(snap.People) {
			page.Jobs = append(page.Jobs, jobSection{
				Job:     job,
				Members: grouper.MembersByJob(snap.People, job),
			})
		}
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		s.logger.Error("failed to render index", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleShuffle runs one partition pass with the submitted group count and
// stores the result in the session.
//
// While the roster is loading the count text is kept and the previous groups
// stay in place.
func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r, s.defaultGroupCount)
	raw := r.FormValue("count")

	groups, err := s.svc.ShuffleWith("", grouper.ParseGroupCount(raw))
	switch {
	case err == nil:
		sess.setGroups(raw, groups)
	case errors.Is(err, types.ErrRosterLoading), errors.Is(err, types.ErrRosterUnavailable):
		sess.setGroupCount(raw)
	default:
		s.logger.Error("shuffle failed", "error", err)
		http.Error(w, err.Error(), statusForError(err))

		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleToggleMembers flips the member list visibility.
func (s *Server) handleToggleMembers(w http.ResponseWriter, r *http.Request) {
	s.sessions.get(w, r, s.defaultGroupCount).toggleMembers()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
