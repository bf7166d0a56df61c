package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	goVersion "github.com/hashicorp/go-version"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/peripherylabs/agentsync/pkg/errors"
)

// WorkspaceConfigName is the name of the workspace configuration file,
// looked up in the directory a sync is run from.
const WorkspaceConfigName = "agentsync.yaml"

// InitialConfigVersion is the version assumed for config files that don't
// specify one.
const InitialConfigVersion = "1.0"

// SupportedConfigVersion is the newest config version this binary
// understands. Older versions still parse; newer ones are rejected.
const SupportedConfigVersion = "1.0"

// alwaysIgnored are path components that are never tracked, regardless of
// the workspace config.
var alwaysIgnored = []string{".git", ".DS_Store", WorkspaceConfigName, "agentsync.log"}

// parseConfigErrTemplate is a template for when the CLI fails to parse yaml
// configuration files. This can happen for a multitude of reasons, including
// extraneous fields and incorrect field types. However, the yaml library
// constructs errors in a way that loses context, and so we can only pass the
// error message on.
const parseConfigErrTemplate = "Configuration file could not be parsed. " +
	"Please review %q.\n" +
	"Common pitfalls include:\n" +
	" - Using the wrong types for fields\n" +
	" - Having extra fields inside the config file\n\n" +
	"For reference, here is the error from the parser:\n" +
	"%s"

// Workspace configures how files in a workspace are tracked and how often
// reconciliation passes run.
type Workspace struct {
	Version string `json:"version,omitempty"`

	// Interval is the number of seconds between reconciliation passes
	// when syncing continuously. Zero means a single pass.
	Interval int `json:"interval,omitempty"`

	// Except lists file and directory names (shell patterns allowed) that
	// are skipped when walking directories.
	Except []string `json:"except,omitempty"`

	// Roots are extra paths tracked on top of the ones given on the
	// command line. ~ expands to the user's home directory.
	Roots []string `json:"roots,omitempty"`

	// Only populated and consumed by agentsync. Never set by the user.
	path string
}

// GetPath returns the filepath that the workspace config was parsed from.
// A getter method is used rather than making the field public so that it
// can't get set by the yaml unmarshalling.
func (c Workspace) GetPath() string {
	return c.path
}

// Default returns the workspace configuration used when no agentsync.yaml
// exists.
func Default() Workspace {
	return Workspace{
		Version: InitialConfigVersion,
		Except:  append([]string{}, alwaysIgnored...),
	}
}

// Parse parses the workspace configuration in the directory `dir`.
func Parse(dir string) (Workspace, error) {
	configPath := filepath.Join(dir, WorkspaceConfigName)
	config := Workspace{
		path:    configPath,
		Version: InitialConfigVersion,
	}
	if err := parseConfig(configPath, &config); err != nil {
		return Workspace{}, errors.WithContext(err, "parse")
	}

	var expandedRoots []string
	for _, root := range config.Roots {
		// Expand ~'s so roots can live outside the workspace.
		expanded, err := homedir.Expand(root)
		if err != nil {
			return Workspace{}, errors.WithContext(err, "expand homedir")
		}
		expandedRoots = append(expandedRoots, filepath.Clean(expanded))
	}
	config.Roots = expandedRoots

	for i, exception := range config.Except {
		config.Except[i] = filepath.Clean(exception)
	}
	config.Except = append(config.Except, alwaysIgnored...)

	return config, nil
}

// Ignored returns whether any component of `path` matches one of the
// workspace's exception patterns.
func (c Workspace) Ignored(path string) bool {
	for _, component := range strings.Split(filepath.ToSlash(path), "/") {
		for _, pattern := range c.Except {
			if matched, err := filepath.Match(pattern, component); err == nil && matched {
				return true
			}
		}
	}
	return false
}

type incompatibleVersionError struct {
	path, supported, actual string
}

func (err incompatibleVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The configuration file %q is incompatible "+
		"with this version of agentsync.\n"+
		"Supported versions are %q and older, but got %q.",
		err.path, err.supported, err.actual)
}

func parseConfig(path string, config *Workspace) error {
	configBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if isPathNotFoundError(err) {
			return errors.FileNotFound{Path: path}
		}
		return errors.WithContext(err, "read file")
	}

	err = yaml.Unmarshal(configBytes, config)
	if err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}

	if err := checkVersion(path, config.Version); err != nil {
		return err
	}

	// Do a strict unmarshal to check for any extra fields. We do a non-strict
	// unmarshal first so that we can catch version errors before erroring on
	// extra fields.
	err = yaml.UnmarshalStrict(configBytes, config, yaml.DisallowUnknownFields)
	if err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}
	return nil
}

// checkVersion rejects config files written for a newer agentsync.
func checkVersion(path, actual string) error {
	parsed, err := goVersion.NewVersion(actual)
	if err != nil {
		return incompatibleVersionError{path, SupportedConfigVersion, actual}
	}

	supported := goVersion.Must(goVersion.NewVersion(SupportedConfigVersion))
	if parsed.GreaterThan(supported) {
		return incompatibleVersionError{path, SupportedConfigVersion, actual}
	}
	return nil
}

func isPathNotFoundError(err error) bool {
	if os.IsNotExist(err) {
		return true
	}
	if fileErr, ok := err.(*os.PathError); ok &&
		fileErr.Op == "open" && fileErr.Err.Error() == "no such file or directory" {
		return true
	}
	return false
}
