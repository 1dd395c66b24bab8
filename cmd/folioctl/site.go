package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/folio/backend/internal/sitetool"
	"github.com/folio/backend/internal/storage"
)

func siteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Site deployment hygiene",
	}
	cmd.AddCommand(siteCleanCmd(), siteCopyAssetsCmd(), siteValidateManifestCmd())
	return cmd
}

func siteCleanCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "clean <dir>",
		Short: "Remove editor backups, OS metadata and merge leftovers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := sitetool.Clean(args[0], dryRun)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			verb := "removed"
			if dryRun {
				verb = "would remove"
			}
			for _, p := range found {
				fmt.Fprintf(out, "%s %s\n", verb, p)
			}
			fmt.Fprintf(out, "%d file(s) %s\n", len(found), verb)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list files without removing them")
	return cmd
}

func siteCopyAssetsCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "copy-assets <src> <dst>",
		Short: "Copy static assets into the build output",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			if fi, err := os.Stat(src); err != nil {
				return err
			} else if !fi.IsDir() {
				return fmt.Errorf("%s is not a directory", src)
			}

			var bar *progressbar.ProgressBar
			progress := func(done, total int64) {
				if quiet {
					return
				}
				if bar == nil {
					bar = progressbar.NewOptions64(total,
						progressbar.OptionSetDescription("Copying assets"),
						progressbar.OptionSetWriter(cmd.ErrOrStderr()),
						progressbar.OptionSetWidth(40),
						progressbar.OptionShowBytes(true),
						progressbar.OptionClearOnFinish(),
					)
				}
				_ = bar.Set64(done)
			}

			res, err := sitetool.CopyAssets(cmd.Context(), os.DirFS(src), storage.NewLocalStorage(dst, ""), progress)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %d file(s), %d bytes, to %s\n", res.Files, res.Bytes, dst)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func siteValidateManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-manifest <file>",
		Short: "Check a web app manifest for required fields and icons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			m, err := sitetool.ValidateManifest(f)
			if sitetool.IsManifestError(err) {
				for _, p := range m.Problems() {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", p)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: manifest for %q is valid\n", args[0], m.Name)
			return nil
		},
	}
}
