package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/peripherylabs/agentsync/cmd/util"
	"github.com/peripherylabs/agentsync/pkg/classify"
	"github.com/peripherylabs/agentsync/pkg/config"
	"github.com/peripherylabs/agentsync/pkg/errors"
	"github.com/peripherylabs/agentsync/pkg/extract"
	syncEngine "github.com/peripherylabs/agentsync/pkg/sync"
)

// New creates a new `sync` command.
func New() *cobra.Command {
	var configDir string
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "sync PATH...",
		Short: "Reconcile tracked files and print the updates for the agent.",
		Long: "Track the given files (directories are walked) and run a\n" +
			"reconciliation pass, printing the update needed to bring the\n" +
			"agent's view of each file current. With --every, passes rerun\n" +
			"on an interval until interrupted.",
		Args: cobra.MinimumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args, configDir, every); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&configDir, "config", ".",
		"directory containing "+config.WorkspaceConfigName)
	cmd.Flags().DurationVar(&every, "every", 0,
		"rerun a reconciliation pass on this interval (0 runs a single pass)")
	return cmd
}

func run(paths []string, configDir string, every time.Duration) error {
	workspace, err := config.Parse(configDir)
	if err != nil {
		// A missing config file just means defaults.
		if _, ok := errors.RootCause(err).(errors.FileNotFound); !ok {
			return err
		}
		workspace = config.Default()
	}

	fs := afero.NewOsFs()
	engine := syncEngine.New(fs, syncEngine.NoBuffers{}, classify.New(fs),
		extract.NewPDF(fs), clockwork.NewRealClock())

	for _, path := range append(workspace.Roots, paths...) {
		if err := track(engine, fs, workspace, path); err != nil {
			return errors.WithContext(err, fmt.Sprintf("track %q", path))
		}
	}

	if engine.IsEmpty() {
		return errors.NewFriendlyError(
			"Nothing to sync.\n" +
				"None of the given paths contained trackable files.")
	}

	runPass(engine)
	if every == 0 && workspace.Interval > 0 {
		every = time.Duration(workspace.Interval) * time.Second
	}
	if every == 0 {
		return nil
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		<-ticker.C
		if engine.IsEmpty() {
			log.Info("All tracked files were deleted. Nothing left to sync.")
			return nil
		}
		runPass(engine)
	}
}

// track registers a file with the engine, or walks a directory and
// registers its files. Unsupported files are skipped with a warning
// rather than aborting the sync.
func track(engine *syncEngine.Engine, fs afero.Fs, workspace config.Workspace, path string) error {
	fi, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileNotFound{Path: path}
		}
		return errors.WithContext(err, "stat")
	}

	if !fi.IsDir() {
		return trackFile(engine, path)
	}

	return afero.Walk(fs, path, func(walked string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if workspace.Ignored(walked) {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		return trackFile(engine, walked)
	})
}

func trackFile(engine *syncEngine.Engine, path string) error {
	err := engine.Track(path)
	if unsupported, ok := errors.RootCause(err).(errors.UnsupportedContent); ok {
		log.WithField("path", unsupported.Path).Debugf(
			"Skipping file with unsupported content type %q", unsupported.MimeType)
		return nil
	}
	return err
}

// runPass runs one reconciliation pass and renders each outcome.
func runPass(engine *syncEngine.Engine) {
	outcomes := engine.SyncAll()

	paths := make([]string, 0, len(outcomes))
	for path := range outcomes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var changed, failed int
	for _, path := range paths {
		outcome := outcomes[path]
		if outcome.Err != nil {
			failed++
			log.WithError(outcome.Err).WithField("path", path).
				Error("Failed to reconcile")
			continue
		}

		switch update := outcome.Update.(type) {
		case syncEngine.WholeFile:
			changed++
			fmt.Printf("=== %s\n%s", path, update.Content)
		case syncEngine.DiffUpdate:
			changed++
			log.WithField("path", path).Infof("Changed (%s lines)", update.Patch.Summary())
			fmt.Print(update.Patch.Text)
		case syncEngine.Deleted:
			changed++
			log.WithField("path", path).Info("Deleted")
		case nil:
			log.WithField("path", path).Debug("Unchanged")
		}
	}

	log.Infof("Reconciled %d files: %d changed, %d failed.",
		len(outcomes), changed, failed)
}
