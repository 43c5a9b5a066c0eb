package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"github.com/mesh-intelligence/clinic/internal/clinic"
	"github.com/mesh-intelligence/clinic/internal/logging"
	"github.com/mesh-intelligence/clinic/internal/paths"
	"github.com/mesh-intelligence/clinic/internal/printer"
	"github.com/mesh-intelligence/clinic/internal/sqlite"
	"github.com/mesh-intelligence/clinic/pkg/types"
)

// session is an open store with the service and logger built over it.
type session struct {
	cfg   types.Config
	store *sqlite.Store
	log   *logging.Logger
	svc   *clinic.Service
}

// open loads configuration and opens the store. console receives log output
// in addition to the log file; nil logs to the file only. The caller must
// Close the session.
func (a *app) open(ctx context.Context, console io.Writer) (*session, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir, a.flags.dataDir)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log, console, isTerminal(console))
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	store, err := sqlite.Open(ctx, databasePath(cfg))
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	spool := printer.New(cfg.Print.SpoolDir, cfg.Print.Command, log.Logger)
	return &session{
		cfg:   cfg,
		store: store,
		log:   log,
		svc:   clinic.New(store, spool, log.Logger),
	}, nil
}

func (s *session) Close() error {
	return errors.Join(s.store.Close(), s.log.Close())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// parseID parses a positive record id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidID, arg)
	}
	return id, nil
}
