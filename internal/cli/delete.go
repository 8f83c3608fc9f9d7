package cli

import (
	"github.com/spf13/cobra"

	http "github.com/wesleyorama2/grapple/http"
)

var deleteCmd = &cobra.Command{
	Use:   "delete URL",
	Short: "Make a DELETE request to the specified URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		baseURL, path := parseURL(args[0])

		client, recorder, err := buildClient(cmd, baseURL)
		if err != nil {
			return err
		}

		req := http.NewRequest("DELETE", path)
		applyRequestFlags(cmd, req)

		return runRequest(cmd, client, recorder, req, baseURL)
	},
}

func init() {
	registerCommonFlags(deleteCmd)
}
