package cli

import (
	"fmt"

	"github.com/harun/plyght/pkg/figure"
	"github.com/spf13/cobra"
)

var renderWatch bool

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Render a TOML or YAML figure file",
	Long: `Render a figure described in a TOML (.toml) or YAML (.yaml, .yml) file
as one frame. With --watch the file is rendered again every time it changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVarP(&renderWatch, "watch", "w", false, "re-render when the file changes")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	s := newSession()
	defer s.Close()

	renderFile := func(path string) error {
		fig, err := figure.Load(path)
		if err != nil {
			return err
		}
		if err := figure.Render(s, fig); err != nil {
			// Reset so the next change tries to connect again.
			if s.Failed() {
				if appLogger != nil {
					appLogger.Warn().Err(err).Msg("Session failed, reconnecting on next change")
				}
				_ = s.Close()
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s (%d subplots)\n", path, len(fig.Subplots))
		return nil
	}

	if !renderWatch {
		return renderFile(args[0])
	}
	return figure.Watch(cmd.Context(), args[0], renderFile)
}
