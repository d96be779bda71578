package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"panograb/internal/browser"
	"panograb/internal/config"
	"panograb/internal/harvest"
	"panograb/internal/portal"
	"panograb/internal/preflight"
	"panograb/internal/services"
	"panograb/internal/transcode"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var urlFlag string
	var downloadType string
	flags := harvest.Flags{CreateFolder: true}

	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Download one recording or every recording in a listing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(urlFlag)
			if len(args) == 1 {
				target = strings.TrimSpace(args[0])
			}
			if target == "" {
				return services.Wrap(services.ErrValidation, "fetch", "", "a viewer or listing url is required", nil)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if _, err := portal.Classify(target, cfg.Portal.BaseURL); err != nil {
				return err
			}

			format := cfg.Download.Format
			if cmd.Flags().Changed("download-type") {
				format = downloadType
			}
			flags.Format, err = transcode.ParseFormat(format)
			if err != nil {
				return services.Wrap(services.ErrValidation, "fetch", "download type", "", err)
			}

			if err := requirePreflight(cmd, cfg, preflight.Options{NoVideo: flags.NoVideo}); err != nil {
				return err
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			var summary harvest.Summary
			runErr := ctx.withBrowser(cmd.Context(), logger, func(session *browser.Session) error {
				runner, err := harvest.NewRunner(cfg, session, flags,
					harvest.WithLogger(logger),
					harvest.WithLedger(store),
					harvest.WithProgress(harvest.NewProgress(cmd.ErrOrStderr())),
				)
				if err != nil {
					return err
				}
				summary, err = runner.Run(cmd.Context(), target)
				return err
			})

			if len(summary.Items) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderRunSummary(summary))
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&urlFlag, "url", "", "Viewer or listing url to download")
	cmd.Flags().BoolVar(&flags.CreateFolder, "create-folder", true, "Write each recording into its own subfolder of the export directory")
	cmd.Flags().BoolVar(&flags.NoVideo, "no-video", false, "Skip transcoding; keep playlists, subtitles, and metadata")
	cmd.Flags().BoolVar(&flags.SkipExisting, "skip-existing", false, "Skip recordings whose folder is populated or that the ledger has recorded")
	cmd.Flags().StringVar(&downloadType, "download-type", "", "Media format to download (mp4 or mp3)")
	return cmd
}

// requirePreflight prints failed checks and stops the command when a
// required one failed.
func requirePreflight(cmd *cobra.Command, cfg *config.Config, opts preflight.Options) error {
	failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg, opts))
	if len(failed) == 0 {
		return nil
	}
	colorize := shouldColorize(cmd.ErrOrStderr())
	names := make([]string, 0, len(failed))
	for _, result := range failed {
		fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine(result.Name, statusError, result.Detail, colorize))
		names = append(names, result.Name)
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "", "failed checks: "+strings.Join(names, ", "), nil)
}
