package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"docscribe/internal/model"
	"docscribe/internal/prompt"
	"docscribe/internal/ui"

	"github.com/hashicorp/go-version"
)

// DefaultPackageManager is used when the configuration document names none.
const DefaultPackageManager = "pip"

// Requirement is one required_modules entry: "name" or "name==version".
type Requirement struct {
	Raw  string
	Name string
	Pin  *version.Version
}

// ParseRequirement parses a required_modules entry.
func ParseRequirement(raw string) (Requirement, error) {
	raw = strings.TrimSpace(raw)
	name, pin, pinned := strings.Cut(raw, "==")
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Requirement{}, fmt.Errorf("%w: empty module name in %q", model.ErrValidation, raw)
	}
	req := Requirement{Raw: raw, Name: name}
	if pinned {
		v, err := version.NewVersion(strings.TrimSpace(pin))
		if err != nil {
			return Requirement{}, fmt.Errorf("%w: invalid version in %q: %v", model.ErrValidation, raw, err)
		}
		req.Pin = v
	}
	return req, nil
}

// Installer checks and installs a document's Python requirements through
// the configured package manager.
type Installer struct {
	runner         Runner
	packageManager string
	prompter       prompt.Prompter
	printer        *ui.Printer
	logger         *slog.Logger
}

// NewInstaller creates an Installer. An empty packageManager means pip.
func NewInstaller(runner Runner, packageManager string, p prompt.Prompter, printer *ui.Printer, logger *slog.Logger) *Installer {
	if packageManager == "" {
		packageManager = DefaultPackageManager
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Installer{runner: runner, packageManager: packageManager, prompter: p, printer: printer, logger: logger}
}

func (in *Installer) pipCommand(args ...string) Command {
	if in.packageManager == "pipenv" {
		return Command{Name: "pipenv", Args: append([]string{"run", "pip"}, args...)}
	}
	return Command{Name: in.packageManager, Args: args}
}

// InstalledVersion reports the installed version of name, if any.
func (in *Installer) InstalledVersion(ctx context.Context, name string) (string, bool, error) {
	res, err := in.runner.Run(ctx, in.pipCommand("show", name))
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", model.ErrDependencyInstall, err)
	}
	if res.ExitCode != 0 {
		return "", false, nil
	}
	scanner := bufio.NewScanner(bytes.NewReader(res.Stdout))
	for scanner.Scan() {
		if v, ok := strings.CutPrefix(scanner.Text(), "Version:"); ok {
			return strings.TrimSpace(v), true, nil
		}
	}
	return "", true, nil
}

// Satisfied reports whether req is met. An installed version newer than the
// pin asks the user whether the pinned version should be installed instead.
func (in *Installer) Satisfied(ctx context.Context, req Requirement) (bool, error) {
	current, installed, err := in.InstalledVersion(ctx, req.Name)
	if err != nil || !installed {
		return false, err
	}
	if req.Pin == nil {
		return true, nil
	}

	v, err := version.NewVersion(current)
	if err != nil {
		in.logger.Debug("Unparseable installed version", "module", req.Name, "version", current)
		return false, nil
	}
	switch v.Compare(req.Pin) {
	case -1:
		return false, nil
	case 1:
		install, err := in.prompter.Confirm(fmt.Sprintf(
			"Module %s version %s is installed. Do you want to install version %s?", req.Name, current, req.Pin.Original()), false)
		if err != nil {
			return false, err
		}
		return !install, nil
	}
	return true, nil
}

// Install makes sure every requirement is met. Declining the confirmation
// aborts with model.ErrAborted; a failing install with model.ErrDependencyInstall.
func (in *Installer) Install(ctx context.Context, requirements []string) error {
	if len(requirements) == 0 {
		return nil
	}

	var missing []string
	for _, raw := range requirements {
		req, err := ParseRequirement(raw)
		if err != nil {
			return err
		}
		ok, err := in.Satisfied(ctx, req)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, req.Raw)
		}
	}
	if len(missing) == 0 {
		in.logger.Debug("All requirements satisfied", "count", len(requirements))
		return nil
	}

	proceed, err := in.prompter.Confirm(fmt.Sprintf(
		"Do you want to install the required modules? (%s)", strings.Join(missing, ", ")), true)
	if err != nil {
		return err
	}
	if !proceed {
		return fmt.Errorf("%w: required modules not installed", model.ErrAborted)
	}

	cmd := in.pipCommand(append([]string{"install"}, missing...)...)
	in.logger.Info("Installing requirements", "command", cmd.String())
	res, err := in.runner.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDependencyInstall, err)
	}
	if res.ExitCode != 0 {
		in.printer.Error("Failed to install the required modules!")
		if line := res.LastStderrLine(); line != "" {
			return fmt.Errorf("%w: %s exited with status %d: %s", model.ErrDependencyInstall, cmd.Name, res.ExitCode, line)
		}
		return fmt.Errorf("%w: %s exited with status %d", model.ErrDependencyInstall, cmd.Name, res.ExitCode)
	}
	return nil
}
