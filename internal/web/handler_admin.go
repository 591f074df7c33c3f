package web

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/vbonduro/everything/internal/auth"
	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/sysinfo"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// admin wraps h so it only runs for a bearer token naming an existing admin
// account.
func (s *Server) admin(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Tokens == nil || s.deps.Users == nil {
			s.writeError(w, r, errUnavailable)
			return
		}
		tok, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		claims, err := s.deps.Tokens.Validate(tok)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		user := s.deps.Users.Lookup(claims.Subject)
		if user == nil {
			s.writeError(w, r, auth.ErrInvalidToken)
			return
		}
		if user.Role != auth.RoleAdmin {
			s.writeError(w, r, auth.ErrForbidden)
			return
		}
		h(w, r.WithContext(auth.WithUser(r.Context(), user)))
	}
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tokens == nil || s.deps.Users == nil {
		s.writeError(w, r, errUnavailable)
		return
	}
	user, err := s.deps.Users.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tok, err := s.deps.Tokens.Generate(user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("access token issued", "username", user.Username)
	s.writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok, TokenType: "bearer"})
}

func (s *Server) systemReader() (*sysinfo.Reader, error) {
	if s.deps.System == nil {
		return nil, errUnavailable
	}
	return s.deps.System, nil
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	sys, err := s.systemReader()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	info, err := sys.Info()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSystemDisk(w http.ResponseWriter, r *http.Request) {
	sys, err := s.systemReader()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	disks, err := sys.Disks()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, disks)
}

func (s *Server) handleSystemNetwork(w http.ResponseWriter, r *http.Request) {
	sys, err := s.systemReader()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ifaces, err := sys.Network()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ifaces)
}

func (s *Server) handleFileList(w http.ResponseWriter, r *http.Request) {
	showHidden, err := queryFlag(r, "show_hidden", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	files, err := sysinfo.List(path, showHidden)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleFileInfo(w http.ResponseWriter, r *http.Request) {
	info, err := sysinfo.Stat(r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleFileMkdir(w http.ResponseWriter, r *http.Request) {
	parents, err := queryFlag(r, "parents", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	info, err := sysinfo.Mkdir(r.URL.Query().Get("path"), parents)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("directory created", "path", info.Path)
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleFileRemove(w http.ResponseWriter, r *http.Request) {
	recursive, err := queryFlag(r, "recursive", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	path := r.URL.Query().Get("path")
	msg, err := sysinfo.Remove(path, recursive)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("path removed", "path", path, "recursive", recursive)
	s.writeJSON(w, http.StatusOK, message("%s", msg))
}

func (s *Server) handleFileCopy(w http.ResponseWriter, r *http.Request) {
	overwrite, err := queryFlag(r, "overwrite", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	info, err := sysinfo.Copy(q.Get("source"), q.Get("destination"), overwrite)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleProcessList(w http.ResponseWriter, r *http.Request) {
	sys, err := s.systemReader()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	procs, err := sys.Processes(sysinfo.ListOptions{
		SortBy:  q.Get("sort_by"),
		Limit:   limit,
		Pattern: q.Get("pattern"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, procs)
}

func parsePID(r *http.Request) (int, error) {
	pid, err := strconv.Atoi(r.PathValue("pid"))
	if err != nil {
		return 0, domain.Invalid("pid", "must be an integer")
	}
	return pid, nil
}

func (s *Server) handleGetProcess(w http.ResponseWriter, r *http.Request) {
	sys, err := s.systemReader()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pid, err := parsePID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := sys.Process(pid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProcessRun(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var timeout time.Duration
	if v := q.Get("timeout"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil || secs < 0 {
			s.writeError(w, r, domain.Invalid("timeout", "must be a non-negative number of seconds"))
			return
		}
		timeout = time.Duration(secs * float64(time.Second))
	}

	s.logger.Info("running command", "command", q.Get("command"), "cwd", q.Get("cwd"))
	res, err := sysinfo.Run(r.Context(), q.Get("command"), q.Get("cwd"), timeout)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleKillProcess(w http.ResponseWriter, r *http.Request) {
	pid, err := parsePID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	force, err := queryFlag(r, "force", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	msg, err := sysinfo.Kill(pid, force)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("process signalled", "pid", pid, "force", force, "server_pid", os.Getpid())
	s.writeJSON(w, http.StatusOK, message("%s", msg))
}
