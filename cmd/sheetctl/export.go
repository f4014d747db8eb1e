package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/premiumcars/listingsheet/internal/client"
)

func newExportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Download a listing sheet as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(true)
			if err != nil {
				return err
			}
			doc, err := c.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			path := filepath.Join(dir, documentName(doc, "listing.pdf"))
			if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", path, len(doc.Body))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "Directory to write the PDF to")
	return cmd
}

func newPreviewCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "preview ID",
		Short: "Download the HTML preview of a listing sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(true)
			if err != nil {
				return err
			}
			doc, err := c.Preview(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if file == "-" {
				_, err := a.out.Write(doc.Body)
				return err
			}
			path := file
			if path == "" {
				path = documentName(doc, "listing.html")
			}
			if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(a.out, "Saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "output", "o", "", "File to write, - for stdout (default: server filename)")
	return cmd
}

// documentName keeps only the base of the server supplied filename.
func documentName(doc *client.Document, fallback string) string {
	name := filepath.Base(doc.Filename)
	if name == "." || name == "/" || name == "" {
		return fallback
	}
	return name
}
