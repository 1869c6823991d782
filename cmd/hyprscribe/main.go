package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/leonardotrapani/hyprscribe/internal/transcriber"
	"github.com/leonardotrapani/hyprscribe/internal/transcript"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(transcriber.Load).ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitError carries a process exit status out of a command
type exitError int

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return int(ee)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func newRootCmd(loader transcriber.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hyprscribe [audio_path]",
		Short: "Transcribe an audio file to JSON with word timestamps",
		Long: `Transcribe one audio file and print a single JSON line:

  {"text": ..., "segments": [{"start": ..., "end": ..., "text": ..., "words": [{"word": ..., "start": ...}]}]}

Times are in seconds rounded to two decimals. The backend is chosen in the
config file (hyprscribe configure); the default is the local whisper.cpp
"base" model. A file named like a subcommand can be passed as ./<name>.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := run(cmd.Context(), args, cmd.OutOrStdout(), cmd.ErrOrStderr(), loader); code != 0 {
				return exitError(code)
			}
			return nil
		},
	}

	cmd.AddCommand(
		modelCmd(),
		configureCmd(),
		serveCmd(loader),
		testModelsCmd(loader),
	)

	return cmd
}

// run transcribes args[0] and writes the result JSON to stdout. It returns
// the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, loader transcriber.Loader) int {
	if len(args) == 0 {
		if err := transcript.Encode(stdout, transcript.ErrorOutput{Error: transcript.NoFileError}); err != nil {
			fmt.Fprintf(stderr, "hyprscribe: %v\n", err)
		}
		return 1
	}
	audioPath := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "hyprscribe: %v\n", err)
		return 1
	}
	if err := cfg.ValidateTranscription(); err != nil {
		fmt.Fprintf(stderr, "hyprscribe: invalid config: %v\n", err)
		return 1
	}

	model, err := loader(ctx, cfg.ToTranscriberConfig())
	if err != nil {
		fmt.Fprintf(stderr, "hyprscribe: failed to load model: %v\n", err)
		return 1
	}

	result, err := model.Transcribe(ctx, audioPath, transcriber.Options{WordTimestamps: true})
	if err != nil {
		fmt.Fprintf(stderr, "hyprscribe: transcription failed: %v\n", err)
		return 1
	}

	if err := transcript.Encode(stdout, transcript.Simplify(result)); err != nil {
		fmt.Fprintf(stderr, "hyprscribe: failed to write output: %v\n", err)
		return 1
	}
	return 0
}
