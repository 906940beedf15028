package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"docscribe/internal/config"
	"docscribe/internal/model"
	"docscribe/internal/pipeline"
	"docscribe/internal/prompt"
	"docscribe/internal/service"
	"docscribe/internal/ui"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const dotEnvFile = ".env"

// application holds the dependencies shared by every command.
type application struct {
	v        *viper.Viper
	fs       afero.Fs
	stderr   io.Writer
	printer  *ui.Printer
	prompter prompt.Prompter
	runner   pipeline.Runner

	settings *config.Settings
	logger   *slog.Logger
	svc      *service.Service
}

func newApplication() *application {
	return &application{
		v:        config.NewViper(),
		fs:       afero.NewOsFs(),
		stderr:   os.Stderr,
		printer:  ui.NewPrinter(os.Stdout),
		prompter: prompt.NewTerminal(os.Stdin, os.Stdout),
		runner:   pipeline.ExecRunner{},
	}
}

// setup resolves settings and builds the service. It runs before every command.
func (app *application) setup() error {
	if err := config.LoadDotEnv(app.fs, dotEnvFile); err != nil {
		return err
	}
	settings, err := config.Load(app.v)
	if err != nil {
		return err
	}
	app.settings = settings
	app.logger = slog.New(slog.NewTextHandler(app.stderr, &slog.HandlerOptions{Level: settings.LogLevel}))
	app.logger.Debug("Resolved settings", "config", settings.ConfigFile, "root", settings.RootDir)

	app.svc = service.New(service.Options{
		Fs:       app.fs,
		Settings: settings,
		Prompter: app.prompter,
		Printer:  app.printer,
		Logger:   app.logger,
		Runner:   app.runner,
	})
	return nil
}

func newRootCmd(app *application) *cobra.Command {
	root := &cobra.Command{
		Use:   "docscribe",
		Short: "docscribe generates documents from templates and data scripts",
		Long: `docscribe renders document templates (docx, md, html, txt) with data returned
by a per-document script, and exports the result through configured exporters.

Usage:
  docscribe init -p pip
  docscribe doc create -n invoice -t md
  docscribe generate -n invoice -e local`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", config.DefaultConfigFile, "Path of the configuration file")
	flags.String("root", config.DefaultRootDir, "Directory holding repositories, outputs and scratch files")
	flags.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	bindFlags(app.v, flags, map[string]string{
		"config":    config.KeyConfigFile,
		"root":      config.KeyRootDir,
		"log-level": config.KeyLogLevel,
	})

	root.AddCommand(
		newInitCmd(app),
		newDocCmd(app),
		newSegmentCmd(app, model.CategoryRepositories),
		newSegmentCmd(app, model.CategoryExporters),
		newGenerateCmd(app),
		newPreviewCmd(app),
	)
	return root
}

func newInitCmd(app *application) *cobra.Command {
	var packageManager string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize docscribe configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.svc.Init(packageManager)
		},
	}
	cmd.Flags().StringVarP(&packageManager, "package-manager", "p", "", fmt.Sprintf("Python package manager to use %v", config.PackageManagers))
	_ = cmd.MarkFlagRequired("package-manager")
	return cmd
}

// bindFlags maps flag names to settings keys so flags override env and defaults.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if f := flags.Lookup(flag); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// askName prompts for a value when the flag was left empty.
func (app *application) askName(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return app.prompter.Ask(label, "")
}

func main() {
	app := newApplication()
	if err := newRootCmd(app).Execute(); err != nil {
		ui.NewPrinter(os.Stderr).Error("%v", err)
		os.Exit(1)
	}
}
