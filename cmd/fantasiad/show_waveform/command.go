package showwaveform

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strconv"

	"github.com/go-analyze/charts"
	"github.com/mattn/go-sixel"
	"github.com/spf13/cobra"
	"github.com/thoukydides/fantasiad"
	"github.com/thoukydides/fantasiad/environment"
	"github.com/thoukydides/fantasiad/fantasia"
)

// sampling is the width of a sample in microseconds.
const sampling = fantasia.TxClock / 5

func Command() *cobra.Command {
	var cpath string
	var button string
	var resolution int

	cmd := &cobra.Command{
		Use:   "show-waveform FAN",
		Short: "Show the on-air waveform of a single frame for a button press",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := fantasiad.Load(cpath)
			if err != nil {
				return err
			}

			fan, ok := cfg.Fans[args[0]]
			if !ok {
				return fmt.Errorf("%s: %w", args[0], fantasiad.ErrUnknownFan)
			}

			b, err := fantasia.ParseButton(button)
			if err != nil {
				return err
			}

			word := fantasia.EncodeWord(b, fan.Address)
			frame := fantasia.EncodeFrame(word.Invert())

			//
			// Compute samples
			//

			ls := charts.LineSeries{Name: fmt.Sprintf("%s %s", b, word)}
			var labels []string
			var elapsed int
			for i, d := range frame {
				level := 0.0
				if i%2 == 0 {
					level = 1 // Pulses start with a mark
				}

				for range d / sampling {
					ls.Values = append(ls.Values, level)
					labels = append(labels, strconv.Itoa(elapsed/1000))
					elapsed += sampling
				}
			}

			//
			// Render chart
			//

			opt := charts.NewLineChartOptionWithSeries(charts.LineSeriesList{ls})
			opt.Theme = charts.GetTheme(charts.ThemeVividDark)
			opt.Padding = charts.NewBox(20, 20, 20, 20)
			opt.Title.Text = fmt.Sprintf("%s: %s (%s)", args[0], fan.Name, fan.Address.Serial())
			opt.Title.FontStyle.FontSize = 16
			opt.Title.Offset = charts.OffsetLeft
			opt.Legend = charts.LegendOption{
				Show:    fantasiad.ToPtr(true),
				Offset:  charts.OffsetCenter,
				Padding: charts.NewBox(0, 0, 0, 20),
			}
			opt.Symbol = charts.SymbolNone
			opt.LineStrokeWidth = 2
			opt.XAxis.Show = fantasiad.ToPtr(true)
			opt.XAxis.Title = "ms"
			opt.XAxis.Labels = labels
			opt.XAxis.LabelCount = elapsed / 1000
			opt.YAxis = []charts.YAxisOption{
				{
					Show:                   fantasiad.ToPtr(false),
					Min:                    fantasiad.ToPtr(float64(0)),
					Max:                    fantasiad.ToPtr(float64(1.2)),
					RangeValuePaddingScale: fantasiad.ToPtr(float64(0)),
				},
			}
			p := charts.NewPainter(charts.PainterOptions{
				OutputFormat: charts.ChartOutputPNG,
				Width:        resolution,
				Height:       int(float64(resolution) / 4),
			})

			err = p.LineChart(opt)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			mPNG, err := p.Bytes()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			m, _, err := image.Decode(bytes.NewReader(mPNG))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			codec := sixel.NewEncoder(os.Stdout)
			return codec.Encode(m)
		},
	}
	cmd.Flags().StringVarP(&cpath, "config", "c", environment.GetEnvPath(environment.KeyConfig, "/etc/fantasiad/fantasiad.yml"), "Configfile path")
	cmd.Flags().StringVarP(&button, "button", "b", "off", "The button to press (low, light, dim, medium, high, off, reverse)")
	cmd.Flags().IntVarP(&resolution, "resolution", "r", 1600, "The width size in pixel of the graph")

	return cmd
}
