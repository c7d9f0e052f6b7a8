package cli

import (
	"bufio"
	"fmt"
	"math"

	"github.com/harun/plyght/pkg/plyght"
	"github.com/spf13/cobra"
)

var demoPause bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Send the sine wave demo frames",
	Long: `Send three demo frames to the plotting server: sine waves at two
resolutions, a short series of uneven length, and a two-subplot frame with
styled lines and a restricted x range.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().BoolVar(&demoPause, "pause", false, "wait for Enter between frames")
	rootCmd.AddCommand(demoCmd)
}

// sineSeries samples sin and sin^2 over periods half-turns.
func sineSeries(n, periods int) (xs, ys, ys2 []float64) {
	xs = make([]float64, n)
	ys = make([]float64, n)
	ys2 = make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(i*periods) * math.Pi / float64(n-1)
		ys[i] = math.Sin(xs[i])
		ys2[i] = ys[i] * ys[i]
	}
	return xs, ys, ys2
}

func runDemo(cmd *cobra.Command, args []string) error {
	s := newSession()
	defer s.Close()

	if err := s.Init(); err != nil {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	wait := func() {
		if demoPause {
			fmt.Fprintln(cmd.OutOrStdout(), "Press Enter for the next frame...")
			_, _ = in.ReadString('\n')
		}
	}

	xsSmall, ysSmall, ysSmall2 := sineSeries(10, 100)
	xsLarge, ysLarge, ysLarge2 := sineSeries(10000, 100)

	s.StartFrame().
		Plot().
		LineLabel("Sine (low res)").
		Line(xsSmall, ysSmall).
		LineLabel("SineSquared (low res)").
		Line(xsSmall, ysSmall2).
		LineLabel("Sine (high res)").
		Line(xsLarge, ysLarge).
		LineStyle("--b").
		LineLabel("SineSquared (high res)").
		Line(xsLarge, ysLarge2).
		Legend("").
		EndFrame()
	wait()

	// Mismatched lengths: only the first four points are sent.
	s.Frame(func(s *plyght.Session) {
		s.Plot().Line([]float64{0, 1, 2, 3, 4}, []float64{0, 2, 1, 0.5})
	})
	wait()

	s.StartFrame().
		Plot().
		LineLabel("Sine (low res)").
		LineStyle("+r").
		Line(xsSmall, ysSmall).
		LineLabel("SineSquared (low res)").
		LineStyle("-.g").
		Line(xsSmall, ysSmall2).
		Legend("").
		Plot().
		LineLabel("Sine (high res)").
		Line(xsLarge, ysLarge).
		LineStyle("--b").
		LineLabel("SineSquared (high res)").
		Line(xsLarge, ysLarge2).
		XRange(100, 150).
		Legend("").
		EndFrame()

	if err := s.Err(); err != nil {
		return err
	}
	if appLogger != nil {
		appLogger.Info().Str("session_id", s.ID()).Int("frames", 3).Msg("Demo sent")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent 3 frames to %s\n", s.Address())
	return nil
}
