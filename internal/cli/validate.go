package cli

import (
	"github.com/spf13/cobra"

	"github.com/framepack/framepack/pkg/manifest"
	"github.com/framepack/framepack/pkg/packer"
)

// newValidateCmd creates the validate command: check a manifest without
// spending solver time on it.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest.toml>",
		Short: "Check a manifest's objects and groups without solving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			entries, cfg, err := manifest.Load(args[0])
			if err != nil {
				printError("%s", err)
				return err
			}
			if err := packer.Validate(entries, cfg); err != nil {
				printError("%s", err)
				return err
			}
			prog.done("validated manifest", "path", args[0])

			numFrames := cfg.NumFrames
			if numFrames == 0 {
				numFrames = packer.DefaultNumFrames
			}
			printSuccess("%s is valid", args[0])
			printDetail("%d entries, %d bits per frame, %d frames",
				len(entries), cfg.FrameCapacity, numFrames)
			return nil
		},
	}
}
