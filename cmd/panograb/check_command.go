package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"panograb/internal/preflight"
	"panograb/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var opts preflight.Options

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify external programs, directories, and portal access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg, opts)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results {
				fmt.Fprintln(out, renderStatusLine(result.Name, resultKind(result), result.Detail, colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, formatOptional(ctx.configPath), colorize))
			fmt.Fprintln(out, renderStatusLine("Credentials set", statusInfo, yesNo(cfg.Auth.Username != "" && cfg.Auth.Password != ""), colorize))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "check", "", fmt.Sprintf("%d required check(s) failed", len(failed)), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.CheckPortal, "portal", false, "Also check that the portal answers HTTP requests")
	cmd.Flags().BoolVar(&opts.NoVideo, "no-video", false, "Treat ffmpeg as optional")
	return cmd
}

func resultKind(result preflight.Result) statusKind {
	switch {
	case result.Passed:
		return statusOK
	case result.Optional:
		return statusWarn
	default:
		return statusError
	}
}
