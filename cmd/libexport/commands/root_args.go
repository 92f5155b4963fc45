package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/macropower/libexport/pkg/exporterrors"
	"github.com/macropower/libexport/pkg/paths"
	"github.com/macropower/libexport/pkg/project"
)

const configFileName = project.FileName

var ErrNoProject = errors.New("no project descriptor found")

// RootArgs holds the persistent flags shared by every command.
type RootArgs struct {
	config    *string
	logLevel  *string
	logFormat *string
	profiles  *ProfileArgs
}

func NewRootArgs() *RootArgs {
	return &RootArgs{
		config:    new(string),
		logLevel:  new(string),
		logFormat: new(string),
		profiles:  NewProfileArgs(),
	}
}

// AddFlags registers the persistent flags on fs.
func (a *RootArgs) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(a.config, "config", "c", "", "Path to the project descriptor (default: nearest "+configFileName+")")
	must(cobra.MarkFlagFilename(fs, "config", "yaml", "yml"))

	fs.StringVar(a.logLevel, "log_level", "warn", "Set the log level (debug, info, warn, error)")
	fs.StringVar(a.logFormat, "log_format", "text", "Set the log format (text, logfmt, json)")

	a.profiles.AddFlags(fs)
}

func (a *RootArgs) GetConfig() string {
	return *a.config
}

func (a *RootArgs) GetLogLevel() string {
	return *a.logLevel
}

func (a *RootArgs) GetLogFormat() string {
	return *a.logFormat
}

func (a *RootArgs) Profiles() *ProfileArgs {
	return a.profiles
}

// ConfigPath returns the --config value, or the closest [configFileName]
// above the working directory.
func (a *RootArgs) ConfigPath() (string, error) {
	if a.GetConfig() != "" {
		return a.GetConfig(), nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	path, err := paths.FindConfig(wd, configFileName)
	if err != nil {
		return "", fmt.Errorf("%w: %w: %w", exporterrors.ErrInvalidArguments, ErrNoProject, err)
	}

	return path, nil
}

// LoadProject loads the descriptor at [RootArgs.ConfigPath].
func (a *RootArgs) LoadProject() (*project.Project, error) {
	path, err := a.ConfigPath()
	if err != nil {
		return nil, err
	}

	slog.Debug("loading project", slog.String("path", path))

	p, err := project.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	return p, nil
}
