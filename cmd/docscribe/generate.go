package main

import (
	"fmt"
	"os"
	"os/signal"

	"docscribe/internal/model"
	"docscribe/internal/pipeline"
	"docscribe/internal/preview"
	"docscribe/internal/service"

	"github.com/spf13/cobra"
)

func newGenerateCmd(app *application) *cobra.Command {
	req := pipeline.Request{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a document and export it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Document, err = app.askName(req.Document, "Enter the name of the document"); err != nil {
				return err
			}
			if req.Exporter == "" {
				names, err := app.svc.SegmentNames(model.CategoryExporters)
				if err != nil {
					return err
				}
				if req.Exporter, err = app.prompter.Choose("Enter the name of the exporter to use", names); err != nil {
					return err
				}
			}
			_, err = app.svc.RunGeneration(cmd.Context(), req)
			return err
		},
	}
	cmd.Flags().StringVarP(&req.Document, "name", "n", "", "Name of the document package")
	cmd.Flags().StringVarP(&req.Repository, "repository", "r", service.DefaultSegmentName, "Repository to use")
	cmd.Flags().StringVarP(&req.Exporter, "exporter", "e", "", "Exporter to use")
	cmd.Flags().BoolVar(&req.UseDefaultKwargs, "use-default-kwargs", false, "Use default kwargs for the document")
	return cmd
}

func newPreviewCmd(app *application) *cobra.Command {
	var exporter, addr string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Serve the documents written by a local exporter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := app.svc.ExporterDir(exporter)
			if err != nil {
				return err
			}
			srv, err := preview.New(app.fs, exporter, dir, app.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			app.printer.Info("Serving %s on %s (Ctrl+C to stop)", dir, displayAddr(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&exporter, "exporter", "e", service.DefaultSegmentName, "Local exporter to preview")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	return cmd
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return fmt.Sprintf("http://localhost%s", addr)
	}
	return "http://" + addr
}
