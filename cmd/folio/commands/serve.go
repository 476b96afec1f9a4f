package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/folio/am"
	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/logger"
	"github.com/teranos/folio/server"
	"github.com/teranos/folio/source"
	"github.com/teranos/folio/viz"
)

// ServeCmd starts the live preview server.
var ServeCmd = &cobra.Command{
	Use:     "serve <data-file>...",
	Aliases: []string{"server"},
	Short:   "Start the live preview server",
	Long: `Host one visualization per data file and serve them to the browser over a
WebSocket. The builder is picked from the file type; prefix a file with
name= to choose one (skilltree=skills.toml). Each builder can be hosted once.

With --watch, saving a data file rebuilds its visualization and saving a
config file reconfigures all of them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

var serveOpts struct {
	Port  int
	Host  string
	Watch bool
}

func init() {
	f := ServeCmd.Flags()
	f.IntVarP(&serveOpts.Port, "port", "p", 0, "Port to listen on (default server.port)")
	f.StringVar(&serveOpts.Host, "host", "localhost", "Interface to listen on")
	f.BoolVarP(&serveOpts.Watch, "watch", "w", false, "Rebuild on data or config file changes")
}

type target struct {
	path   string
	inst   *viz.Instance
	loader *source.Loader
}

// parseTarget splits "name=path" into the builder name and the path.
func parseTarget(arg string) (name, path string) {
	if name, path, ok := strings.Cut(arg, "="); ok && name != "" {
		if _, known := builders[strings.ToLower(name)]; known {
			return name, path
		}
	}
	return "", arg
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	port := serveOpts.Port
	if port == 0 {
		port = cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg)
	var targets []*target
	for _, arg := range args {
		name, path := parseTarget(arg)
		b, err := pickBuilder(name, path)
		if err != nil {
			return err
		}
		if _, err := source.FormatOf(path); err != nil {
			return err
		}
		loader := source.FileLoader(path)
		inst := viz.New(b, loader, cfg, anim.NewLoop())
		if err := srv.Host(inst); err != nil {
			return errors.Wrapf(err, "cannot host %s", path)
		}
		loader.Start(ctx)
		targets = append(targets, &target{path: path, inst: inst, loader: loader})
	}

	if serveOpts.Watch {
		stopWatch, err := watch(ctx, srv, targets)
		if err != nil {
			return err
		}
		defer stopWatch()
	}

	addr := fmt.Sprintf("%s:%d", serveOpts.Host, port)
	printServeBanner(addr, srv.Names(), serveOpts.Watch)

	errChan := make(chan error, 1)
	go func() { errChan <- srv.ListenAndServe(addr) }()

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed to start")
	case <-ctx.Done():
	}

	pterm.Info.Println("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown failed")
	}
	pterm.Success.Println("Server stopped")
	return nil
}

// watch reloads data files into their loaders and pushes config changes to
// every instance. The returned func stops all watchers.
func watch(ctx context.Context, srv *server.Server, targets []*target) (func(), error) {
	log := logger.ComponentLogger("watch")
	byPath := make(map[string]*target, len(targets))
	paths := make([]string, 0, len(targets))
	for _, t := range targets {
		abs, err := filepath.Abs(t.path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve %s", t.path)
		}
		byPath[abs] = t
		paths = append(paths, abs)

		inst := t.inst
		var loads atomic.Int64
		t.loader.OnChange(func(source.Dataset) {
			if loads.Add(1) == 1 {
				return
			}
			inst.Loop().Post(inst.Rebuild)
		})
	}

	dataWatcher, err := source.NewWatcher(paths, source.DefaultDebounce, func(path string) {
		if t, ok := byPath[path]; ok {
			log.Infow("Data file changed", logger.FieldFile, path)
			t.loader.Reload(ctx)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to watch data files")
	}
	dataWatcher.Start()

	var configWatchers []*am.ConfigWatcher
	for _, path := range am.Files() {
		cw, err := am.NewConfigWatcher(path)
		if err != nil {
			log.Warnw("Cannot watch config file", logger.FieldFile, path, logger.FieldError, err)
			continue
		}
		cw.OnReload(func(*am.Config) error {
			// the watcher only read its own file; reload the merged view
			cfg, err := am.Load()
			if err != nil {
				return err
			}
			srv.Each(func(inst *viz.Instance) { inst.Reconfigure(cfg) })
			return nil
		})
		cw.Start()
		configWatchers = append(configWatchers, cw)
	}

	return func() {
		dataWatcher.Close()
		for _, cw := range configWatchers {
			cw.Stop()
		}
	}, nil
}
