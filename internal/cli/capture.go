package cli

import (
	"fmt"
	"sync"

	"github.com/harun/plyght/pkg/capture"
	"github.com/spf13/cobra"
)

var (
	captureListen string
	captureFrames bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Listen like a plotting server and print received tokens",
	Long: `Listen on the plotting server address and print every token received,
or with --frames one summary line per complete frame. Nothing is drawn;
this is for inspecting what a client sends.`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVar(&captureListen, "listen", "", "address to listen on (default from config)")
	captureCmd.Flags().BoolVar(&captureFrames, "frames", false, "print one summary line per frame instead of raw tokens")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	listen := captureListen
	if listen == "" && appConfig != nil {
		listen = appConfig.Capture.Listen
	}

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	frames := 0

	cfg := capture.Config{Address: listen}
	if appLogger != nil {
		l := appLogger.GetZerolog()
		cfg.Logger = &l
	}
	if captureFrames {
		cfg.OnFrame = func(frame []string) {
			mu.Lock()
			defer mu.Unlock()
			frames++
			fmt.Fprintf(out, "frame %d: %s\n", frames, capture.Summarize(frame))
		}
	} else {
		cfg.OnLine = func(line string) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintln(out, line)
		}
	}

	srv, err := capture.Listen(cfg)
	if err != nil {
		return err
	}

	<-cmd.Context().Done()
	return srv.Close()
}
