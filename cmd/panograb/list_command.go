package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"panograb/internal/browser"
	"panograb/internal/harvest"
	"panograb/internal/portal"
	"panograb/internal/preflight"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var idsOnly bool

	cmd := &cobra.Command{
		Use:   "list <url>",
		Short: "Print the viewer urls a fetch of url would download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(args[0])
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if _, err := portal.Classify(target, cfg.Portal.BaseURL); err != nil {
				return err
			}
			if err := requirePreflight(cmd, cfg, preflight.Options{NoVideo: true}); err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			var ids []portal.ItemID
			err = ctx.withBrowser(cmd.Context(), logger, func(session *browser.Session) error {
				runner, err := harvest.NewRunner(cfg, session, harvest.Flags{NoVideo: true}, harvest.WithLogger(logger))
				if err != nil {
					return err
				}
				ids, err = runner.Resolve(cmd.Context(), target)
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				if idsOnly {
					fmt.Fprintln(out, id)
					continue
				}
				fmt.Fprintln(out, portal.ViewerURL(cfg.Portal.BaseURL, cfg.Portal.ViewerPath, id))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&idsOnly, "ids", false, "Print bare item identifiers instead of viewer urls")
	return cmd
}
