package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"scout-cli/internal/api"
	"scout-cli/internal/config"
	"scout-cli/internal/listctl"
	"scout-cli/internal/query"
	"scout-cli/internal/selection"
	"scout-cli/internal/store"
	"scout-cli/internal/tui"
)

// runtime is the shared wiring every command starts from: config, logger,
// token source, API client and the local store.
type runtime struct {
	cfg    *config.Config
	log    *zap.Logger
	tokens *api.TokenFile
	client *api.Client
	store  *store.Store
}

func (app *App) runtime() (*runtime, func(), error) {
	cfg, err := config.Load(app.CfgFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.APIURL == "" {
		return nil, nil, fmt.Errorf("api_url is not configured (config file or SCOUT_API_URL)")
	}

	log, logClose := newLogger(cfg, app.Debug)

	tokens := api.NewTokenFile(cfg.TokenFile, log)
	if err := tokens.Watch(); err != nil {
		// Without the watcher a fresh login needs a restart; everything else
		// still works.
		log.Warn("token file watch failed", zap.Error(err))
	}

	client, err := api.New(cfg.APIURL, tokens, api.WithLogger(log))
	if err != nil {
		tokens.Close()
		logClose()
		return nil, nil, err
	}

	rt := &runtime{cfg: cfg, log: log, tokens: tokens, client: client}

	if path, err := store.DefaultPath(); err == nil {
		if st, err := store.Open(context.Background(), path); err == nil {
			rt.store = st
		} else {
			log.Warn("local store unavailable", zap.Error(err))
		}
	}

	cleanup := func() {
		if rt.store != nil {
			rt.store.Close()
		}
		tokens.Close()
		logClose()
	}
	return rt, cleanup, nil
}

// newLogger logs to the configured file so TUI output stays clean. No log
// file means no logging.
func newLogger(cfg *config.Config, debug bool) (*zap.Logger, func()) {
	if cfg.LogFile == "" {
		return zap.NewNop(), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return zap.NewNop(), func() {}
	}

	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{cfg.LogFile}
	zc.ErrorOutputPaths = []string{cfg.LogFile}
	if debug || cfg.Debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := zc.Build()
	if err != nil {
		return zap.NewNop(), func() {}
	}
	return log, func() { _ = log.Sync() }
}

func (rt *runtime) defaults() query.Defaults {
	d := query.ConnectionDefaults()
	if rt.cfg.DefaultLimit > 0 {
		d.Limit = rt.cfg.DefaultLimit
	}
	return d
}

// parseValues decodes an encoded query string, dropping it wholesale when
// malformed. The query codec handles per-param fallback from there.
func parseValues(encoded string) url.Values {
	vals, err := url.ParseQuery(encoded)
	if err != nil {
		return url.Values{}
	}
	return vals
}

// linkValues extracts the query string from a pasted portal URL, or treats
// the argument as a bare query string.
func linkValues(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if strings.Contains(link, "://") {
		if u, err := url.Parse(link); err == nil {
			return u.RawQuery
		}
		return ""
	}
	return strings.TrimPrefix(link, "?")
}

// listDeps builds the full TUI dependency set around one list controller,
// optionally seeded from a deep link.
func (rt *runtime) listDeps(ctx context.Context, link string) (tui.Deps, error) {
	addr := listctl.ParseAddress(linkValues(link))
	d := rt.defaults()

	ctl := listctl.New(rt.client, d,
		listctl.WithAddress(addr),
		listctl.WithInitialQuery(query.Decode(addr.Values(), d)),
		listctl.WithLogger(rt.log),
	)
	ctx = listctl.NewContext(ctx, ctl)

	return tui.Deps{
		Ctx:     ctx,
		Ctl:     ctl,
		Sel:     selection.New(selection.DefaultParam, addr),
		Client:  rt.client,
		Addr:    addr,
		Store:   rt.store,
		BaseURL: rt.portalBase(),
		Log:     rt.log,
	}, nil
}

// portalBase is the web origin deep links point at. It defaults to the API
// origin, which the portal serves the web app from.
func (rt *runtime) portalBase() string {
	if rt.cfg.PortalURL != "" {
		return strings.TrimRight(rt.cfg.PortalURL, "/")
	}
	return strings.TrimRight(rt.cfg.APIURL, "/")
}
