package main

import (
	"fmt"
	"strings"

	"docscribe/internal/model"
	"docscribe/internal/service"

	"github.com/spf13/cobra"
)

func newDocCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Commands group for Doc resource",
	}
	cmd.AddCommand(newDocCreateCmd(app), newDocDeleteCmd(app))
	return cmd
}

func newDocCreateCmd(app *application) *cobra.Command {
	var name, repository, templateType string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new document in a repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseTemplateType(templateType)
			if err != nil {
				return err
			}
			name, err := app.askName(name, "Enter the name of the document")
			if err != nil {
				return err
			}
			_, err = app.svc.CreateDocument(name, repository, t)
			return err
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the new document")
	cmd.Flags().StringVarP(&repository, "repository", "r", service.DefaultSegmentName, "Repository to create the document in")
	cmd.Flags().StringVarP(&templateType, "type", "t", string(model.DefaultTemplateType),
		fmt.Sprintf("Type of the document [%s]", strings.Join(model.TemplateTypeNames(), "|")))
	return cmd
}

func newDocDeleteCmd(app *application) *cobra.Command {
	var name, repository string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a document from a repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.askName(name, "Enter the name of the document to delete")
			if err != nil {
				return err
			}
			ok, err := app.prompter.Confirm(fmt.Sprintf("Are you sure you want to delete %s from %s", name, repository), false)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: document %s was not deleted", model.ErrAborted, name)
			}
			return app.svc.DeleteDocument(name, repository)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the document to delete")
	cmd.Flags().StringVarP(&repository, "repository", "r", service.DefaultSegmentName, "Repository to delete the document from")
	return cmd
}
