package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/capture"
)

func newCaptureCmd() *cobra.Command {
	var (
		dir  string
		poll time.Duration
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Check in every face found in a directory of frames",
		Long: `Reads image files from --dir in name order, detects faces in each one and
records a check-in for every recognized employee. With --poll the command
keeps watching the directory for new frames. Ctrl-C stops after the current
frame.

Examples:
  rollcall capture --dir ./frames
  rollcall capture --dir /var/spool/camera --poll 2s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			loop := capture.NewLoop(a.Detector, a.Attendance, a.Logger).WithMetrics(a.Metrics)
			source := capture.DirSource{Dir: dir, PollInterval: poll}
			sum := loop.Run(ctx, source.Frames(ctx))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "frames:     %d\n", sum.Frames)
			fmt.Fprintf(out, "recorded:   %d\n", sum.Recorded)
			fmt.Fprintf(out, "suppressed: %d\n", sum.Suppressed)
			fmt.Fprintf(out, "unknown:    %d\n", sum.Unknown)
			fmt.Fprintf(out, "invalid:    %d\n", sum.Invalid)
			fmt.Fprintf(out, "no face:    %d\n", sum.NoFace)
			fmt.Fprintf(out, "errors:     %d\n", sum.Errors)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory of frame images")
	cmd.Flags().DurationVar(&poll, "poll", 0, "Keep watching the directory at this interval (0 = single pass)")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
