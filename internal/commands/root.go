// Package commands contains all CLI command definitions.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/autogen/compiler/gen"
	"github.com/syssam/autogen/internal/logging"
)

// ErrDiagnostics is returned when a pass reported error diagnostics. They
// have already been printed.
var ErrDiagnostics = errors.New("generation reported errors")

// Flag and configuration keys. Each is also read from AUTOGEN_<KEY> with
// dashes replaced by underscores, and from autogen.yaml.
const (
	keyConfig          = "config"
	keyProjectDir      = "project-dir"
	keyModule          = "module"
	keyHeader          = "header"
	keyLogLevel        = "log-level"
	keyLogFormat       = "log-format"
	keyPackages        = "packages"
	keyTests           = "tests"
	keyBuildFlags      = "build-flags"
	keyDefinitions     = "definitions"
	keyExtension       = "extension"
	keyErrorsPackage   = "errors-package"
	keyResourcesDir    = "resources-dir"
	keyWorkers         = "workers"
	keyExportedSetters = "exported-setters"
	keyNoCache         = "no-cache"
	keyOnly            = "only"
	keyDebounce        = "debounce"
)

// app holds what every command shares.
type app struct {
	vp     *viper.Viper
	stdout io.Writer
	stderr io.Writer
	log    logrus.FieldLogger
}

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{vp: viper.New(), stdout: stdout, stderr: stderr}
	rootCmd := &cobra.Command{
		Use:   "autogen",
		Short: "Generate property accessors and typed error tables",
		Long: `autogen generates getters and change-notifying setters for struct types
marked //autogen:observable, and typed error classes with localized resource
bundles from XML error definitions.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	defaults := gen.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.String(keyConfig, "", "config file (default is autogen.yaml in the project directory)")
	flags.String(keyProjectDir, defaults.ProjectDir, "project directory")
	flags.String(keyModule, "", "module path (default is read from go.mod)")
	flags.String(keyHeader, defaults.Header, "header comment of generated files")
	flags.String(keyLogLevel, logging.DefaultLogLevel.String(), "log level (trace, debug, info, warn, error)")
	flags.String(keyLogFormat, string(logging.DefaultLogFormat), "log format (text, json)")
	flags.StringSlice(keyPackages, defaults.Packages, "package patterns scanned for property markers")
	flags.Bool(keyTests, false, "also scan test variants of the packages")
	flags.StringSlice(keyBuildFlags, nil, "build flags passed to the package loader")
	flags.StringSlice(keyDefinitions, defaults.Definitions, "error definition files, directories or globs")
	flags.String(keyExtension, defaults.Extension, "extension of error definition files")
	flags.String(keyErrorsPackage, defaults.ErrorsPackage, "directory of the generated error classes")
	flags.String(keyResourcesDir, defaults.ResourcesDir, "directory of the resource bundles and accessors")
	flags.Int(keyWorkers, defaults.Workers, "number of parallel emitters")
	flags.Bool(keyExportedSetters, false, "generate exported setters (SetName)")
	flags.Bool(keyNoCache, false, "regenerate every input, ignoring the cache")

	registerGenerateCmd(rootCmd, a)
	registerWatchCmd(rootCmd, a)
	registerDumpCmd(rootCmd, a)

	return rootCmd
}

// init reads the configuration file and environment and sets up logging.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	vp := a.vp
	// Flags of the running command include the inherited persistent ones.
	if err := vp.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	vp.SetEnvPrefix("autogen")
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv()

	explicit := vp.GetString(keyConfig)
	if explicit != "" {
		vp.SetConfigFile(explicit)
	} else {
		vp.SetConfigName("autogen")
		vp.SetConfigType("yaml")
		vp.AddConfigPath(vp.GetString(keyProjectDir))
	}
	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := logging.Setup(logging.Options{
		Level:  vp.GetString(keyLogLevel),
		Format: vp.GetString(keyLogFormat),
		Output: a.stderr,
	}); err != nil {
		return err
	}
	a.log = logging.Subsys("autogen")
	if used := vp.ConfigFileUsed(); used != "" {
		a.log.WithField("config", used).Debug("Using config file")
	}
	return nil
}

// config builds the generation config from flags, environment and file.
func (a *app) config() (*gen.Config, error) {
	vp := a.vp
	opts := []gen.Option{
		gen.WithProjectDir(vp.GetString(keyProjectDir)),
		gen.WithHeader(vp.GetString(keyHeader)),
		gen.WithPackages(vp.GetStringSlice(keyPackages)...),
		gen.WithTests(vp.GetBool(keyTests)),
		gen.WithBuildFlags(vp.GetStringSlice(keyBuildFlags)...),
		gen.WithDefinitions(vp.GetStringSlice(keyDefinitions)...),
		gen.WithExtension(vp.GetString(keyExtension)),
		gen.WithErrorsPackage(vp.GetString(keyErrorsPackage)),
		gen.WithResourcesDir(vp.GetString(keyResourcesDir)),
		gen.WithWorkers(vp.GetInt(keyWorkers)),
		gen.WithExportedSetters(vp.GetBool(keyExportedSetters)),
	}
	if module := vp.GetString(keyModule); module != "" {
		opts = append(opts, gen.WithModule(module))
	}
	if vp.GetBool(keyNoCache) {
		opts = append(opts, gen.WithoutCache())
	}
	if only := vp.GetString(keyOnly); only != "" {
		opts = append(opts, gen.WithPipelines(gen.Pipeline(only)))
	}
	return gen.NewConfig(opts...)
}
