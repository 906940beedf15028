package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"docscribe/internal/model"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// newSegmentCmd builds the command group shared by repositories and exporters.
func newSegmentCmd(app *application, category model.Category) *cobra.Command {
	title := cases.Title(language.English).String(category.Singular())
	cmd := &cobra.Command{
		Use:   category.Singular(),
		Short: fmt.Sprintf("Commands group for %s resource", title),
	}

	add := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Create a new %s", category.Singular()),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.svc.CreateSegment(cmd.Context(), category, ""); err != nil {
				return err
			}
			app.printer.Success("%s created.", title)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete [name]",
		Short: fmt.Sprintf("Delete a %s", category.Singular()),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := app.svc.SegmentNames(category)
			if err != nil {
				return err
			}
			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				if len(names) == 0 {
					return fmt.Errorf("%w: no %s found", model.ErrNotFound, category)
				}
				name, err = app.prompter.Choose(fmt.Sprintf("Enter the name of the %s to delete", category.Singular()), names)
				if err != nil {
					return err
				}
			}
			if err := app.svc.DeleteSegment(cmd.Context(), category, name); err != nil {
				return err
			}
			if slices.Contains(names, name) {
				app.printer.Success("%s deleted.", title)
			}
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List configured %s", category),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.listSegments(category)
		},
	}

	cmd.AddCommand(add, del, list)
	switch category {
	case model.CategoryRepositories:
		list.Use = "list [repository]"
		list.Short = "List repositories, or the reports of one repository"
		list.Args = cobra.MaximumNArgs(1)
		list.RunE = func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return app.listSegments(category)
			}
			reports, err := app.svc.ListReports(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				app.printer.Warn("No reports found in %s", args[0])
				return nil
			}
			rows := make([][]string, len(reports))
			for i, report := range reports {
				rows[i] = []string{report}
			}
			app.printer.Table([]string{"Report"}, rows)
			return nil
		}
		cmd.AddCommand(newDownloadCmd(app))
	case model.CategoryExporters:
		cmd.AddCommand(newExportCmd(app))
	}
	return cmd
}

func (app *application) listSegments(category model.Category) error {
	infos, err := app.svc.ListSegments(category)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		app.printer.Warn("No %s found", category)
		return nil
	}
	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{info.Name, info.Type}
	}
	app.printer.Table([]string{"Name", "Type"}, rows)
	return nil
}

func newDownloadCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "download <repository> <report>",
		Short: "Download a report from a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := app.svc.DownloadReport(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			app.logger.Info("Report downloaded", "repository", args[0], "report", args[1], "path", dest)
			return nil
		},
	}
}

func newExportCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "export <exporter> <file>",
		Short: "Send a file through an exporter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := model.ModeText
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(args[1])), ".")
			if t, err := model.ParseTemplateType(ext); err == nil {
				mode = t.ReadMode()
			} else if ext != "" {
				mode = model.ModeBinary
			}
			_, err := app.svc.ExportFile(cmd.Context(), args[0], args[1], mode)
			return err
		},
	}
}
