package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/thoukydides/fantasiad"
	"github.com/thoukydides/fantasiad/fantasia"
)

func statusCommand(client *http.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of every fan",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := client.Get("http://unix/fans")
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			var statuses []fantasiad.Status
			if err = json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
				return err
			}

			for _, s := range statuses {
				power := "off"
				if s.State.On {
					power = "on"
				}

				fmt.Printf("%-12s %-16s %s  power=%s speed=%s (%s)\n", s.ID, s.Name, s.Serial, power, s.State.Speed, s.Phase)
				if s.Last != nil {
					outcome := "success"
					if s.Last.Error != "" {
						outcome = s.Last.Error
					}
					fmt.Printf("%12s last %s @ %s: %s\n", "", s.Last.Button, s.Last.At.Local().Format("15:04:05"), outcome)
				}
			}

			return nil
		},
	}
}

func powerCommand(client *http.Client) *cobra.Command {
	return &cobra.Command{
		Use:       "power FAN on|off",
		Short:     "Switch a fan on or off",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(_ *cobra.Command, args []string) error {
			var on bool
			switch args[1] {
			case "on":
				on = true
			case "off":
			default:
				return fmt.Errorf("%s: expected on or off", strconv.Quote(args[1]))
			}

			return post(client, args[0], "power", fantasiad.PowerRequest{On: &on})
		},
	}
}

func speedCommand(client *http.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "speed FAN PERCENT",
		Short: "Set the rotation speed of a fan, snapped to off, low (25), medium (50) or high (100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			percent, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("speed: %w", err)
			}

			return post(client, args[0], "speed", fantasiad.SpeedRequest{Speed: &percent})
		},
	}
}

func pressCommand(client *http.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "press FAN BUTTON",
		Short: "Press a remote button (low, light, dim, medium, high, off, reverse)",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := fantasia.ParseButton(args[1])
			if err != nil {
				return err
			}

			return post(client, args[0], "press", fantasiad.PressRequest{Button: &b})
		},
	}
}

func post(client *http.Client, fan, action string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := client.Post(fmt.Sprintf("http://unix/fans/%s/%s", fan, action), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reply fantasiad.Reply
	if err = json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("%s: %w", resp.Status, err)
	}

	if reply.Status != "success" {
		return fmt.Errorf("%s: %s", fan, reply.Message)
	}

	fmt.Println(reply.Status)
	return nil
}
