package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	http "github.com/wesleyorama2/grapple/http"
)

var postCmd = &cobra.Command{
	Use:   "post URL",
	Short: "Make a POST request to the specified URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		baseURL, path := parseURL(args[0])

		client, recorder, err := buildClient(cmd, baseURL)
		if err != nil {
			return err
		}

		req := http.NewRequest("POST", path)
		applyRequestFlags(cmd, req)

		data, _ := cmd.Flags().GetString("data")
		jsonData, _ := cmd.Flags().GetString("json")
		switch {
		case data != "" && jsonData != "":
			return fmt.Errorf("--data and --json are mutually exclusive")
		case data != "":
			req.WithBody(data)
		case jsonData != "":
			// Decode so the body encoder treats it as a structured record
			var record any
			if err := json.Unmarshal([]byte(jsonData), &record); err != nil {
				return fmt.Errorf("invalid --json value: %w", err)
			}
			req.WithBody(record)
		}

		return runRequest(cmd, client, recorder, req, baseURL)
	},
}

func init() {
	registerCommonFlags(postCmd)
	postCmd.Flags().StringP("data", "d", "", "Raw request body (sent as text/plain unless a Content-Type header is set)")
	postCmd.Flags().StringP("json", "j", "", "JSON request body (sent as application/json)")
}
