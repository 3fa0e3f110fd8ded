package monitor

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/thoukydides/fantasiad"
)

func Command(client *http.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Start the TUI monitor display",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			resp, err := client.Get("http://unix/monitor")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 { // Should never happen
				b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
				return fmt.Errorf("sse bad status: %s body=%q", resp.Status, string(b))
			}

			tui := tea.NewProgram(newTUI(), tea.WithAltScreen())

			errc := make(chan error, 1)
			go func() {
				errc <- stream(resp.Body, tui.Send)
				tui.Quit()
			}()

			if _, err = tui.Run(); err != nil {
				return err
			}

			select {
			case err = <-errc:
				return err
			default:
				return nil // Quit by the user
			}
		},
	}
}

// stream forwards every fan status snapshot pushed by the daemon until the
// connection ends. Each event carries the statuses of all fans, not a delta.
func stream(r io.Reader, send func(tea.Msg)) error {
	for {
		event, err := fantasiad.ReadSSE(r)
		if err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
		if len(event) == 0 {
			continue
		}

		var statuses []fantasiad.Status
		if err = json.Unmarshal(event, &statuses); err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
		send(statuses)
	}
}
