// Package web serves a read-only browser view of the connections list. Its
// real purpose is the URL surface: the page's query string is decoded by the
// same codec the TUI projects into, so any deep link minted in the TUI opens
// here as the same filtered/sorted/paginated view, and params the server
// does not recognize survive into every link it renders.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"scout-cli/internal/api"
	"scout-cli/internal/listctl"
	"scout-cli/internal/model"
	"scout-cli/internal/query"
	"scout-cli/internal/selection"
)

type ServerConfig struct {
	Addr     string
	Defaults query.Defaults
}

type Server struct {
	cfg    ServerConfig
	client *api.Client
	log    *zap.Logger
	tmpl   *template.Template
}

func NewServer(cfg ServerConfig, client *api.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:    cfg,
		client: client,
		log:    log,
		tmpl:   template.Must(template.New("connections").Parse(connectionsTmpl)),
	}
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /connections", s.handleConnections)
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/connections", http.StatusFound)
	})
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type rowVM struct {
	Conn     model.Connection
	Selected bool
}

type pageVM struct {
	Rows       []rowVM
	Query      query.ListQuery
	Err        string
	Total      int
	TotalPages int
	PrevLink   string
	NextLink   string
	ClearLink  string
	Detail     *model.Connection
	DetailMiss string // selected id that is not on this page
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	q := query.Decode(r.URL.Query(), s.cfg.Defaults)

	vm := pageVM{Query: q}
	page, err := s.client.ListConnections(r.Context(), q)
	switch {
	case errors.Is(err, api.ErrNoToken):
		vm.Err = "not logged in yet"
	case err != nil:
		vm.Err = err.Error()
	default:
		// An out-of-range page clamps silently, same as the TUI controller.
		if clamped := q.Clamp(page.Pagination.TotalPages); clamped.Page != q.Page {
			q = clamped
			page, err = s.client.ListConnections(r.Context(), q)
			if err != nil && !errors.Is(err, context.Canceled) {
				vm.Err = err.Error()
			}
			vm.Query = q
		}
		vm.Total = page.Pagination.Total
		vm.TotalPages = page.Pagination.TotalPages
	}

	// The selection param rides along in the same query string.
	selected := r.URL.Query().Get(selection.DefaultParam)
	for _, c := range page.Items {
		row := rowVM{Conn: c, Selected: c.ID == selected}
		if row.Selected {
			conn := c
			vm.Detail = &conn
		}
		vm.Rows = append(vm.Rows, row)
	}
	if selected != "" && vm.Detail == nil {
		vm.DetailMiss = selected
	}

	vm.PrevLink = s.pageLink(r.URL.Query(), q, q.Page-1, vm.TotalPages)
	vm.NextLink = s.pageLink(r.URL.Query(), q, q.Page+1, vm.TotalPages)
	vm.ClearLink = s.clearLink(r.URL.Query())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, vm); err != nil {
		s.log.Debug("render failed", zap.Error(err))
	}
}

// pageLink rebuilds the current URL for page n, replacing only the params
// the list owns and keeping everything else (selection, view, whatever a
// marketing campaign stuck on the link).
func (s *Server) pageLink(raw url.Values, q query.ListQuery, n, totalPages int) string {
	if n < 1 || n == q.Page || (totalPages > 0 && n > totalPages) {
		return ""
	}
	next := q
	next.Page = n
	addr := listctl.ParseAddress(raw.Encode())
	addr.Replace(listParams(), query.Encode(next, s.cfg.Defaults))
	return "/connections?" + addr.Encode()
}

func (s *Server) clearLink(raw url.Values) string {
	addr := listctl.ParseAddress(raw.Encode())
	addr.Replace(listParams(), nil)
	if enc := addr.Encode(); enc != "" {
		return "/connections?" + enc
	}
	return "/connections"
}

func listParams() []string {
	return []string{
		query.ParamStatus, query.ParamSearch, query.ParamSortBy,
		query.ParamSortOrder, query.ParamPage, query.ParamLimit,
	}
}

// Serve blocks until ctx is done or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("web view listening", zap.String("addr", s.cfg.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

const connectionsTmpl = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>scout — connections</title>
<style>
body { font: 14px/1.5 system-ui, sans-serif; margin: 2rem auto; max-width: 64rem; color: #222; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .4rem .8rem; border-bottom: 1px solid #ddd; }
tr.selected { background: #eef4ff; }
.err { color: #a40000; }
.muted { color: #777; }
nav a { margin-right: 1rem; }
</style>
</head>
<body>
<h1>Connections</h1>
{{if .Err}}<p class="err">{{.Err}}</p>{{end}}
<p class="muted">{{.Total}} connections · page {{.Query.Page}}{{if .TotalPages}} of {{.TotalPages}}{{end}}
{{if .Query.Status}} · status: {{.Query.Status}}{{end}}
{{if .Query.Search}} · search: “{{.Query.Search}}”{{end}}
· <a href="{{.ClearLink}}">clear</a></p>
<table>
<tr><th>Company</th><th>Role</th><th>Status</th><th>Updated</th></tr>
{{range .Rows}}
<tr{{if .Selected}} class="selected"{{end}}>
<td>{{.Conn.CompanyName}}</td>
<td>{{.Conn.RoleTitle}}</td>
<td>{{.Conn.Status}}</td>
<td>{{.Conn.UpdatedAt.Format "2006-01-02"}}</td>
</tr>
{{end}}
</table>
{{if .Detail}}
<h2>{{.Detail.CompanyName}} — {{.Detail.RoleTitle}}</h2>
<p>Status: {{.Detail.Status}}</p>
{{if .Detail.Notes}}<pre>{{.Detail.Notes}}</pre>{{end}}
{{else if .DetailMiss}}
<p class="muted">Connection {{.DetailMiss}} is not on this page.</p>
{{end}}
<nav>
{{if .PrevLink}}<a href="{{.PrevLink}}">&larr; prev</a>{{end}}
{{if .NextLink}}<a href="{{.NextLink}}">next &rarr;</a>{{end}}
</nav>
</body>
</html>`
