package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/grapple/form"
	http "github.com/wesleyorama2/grapple/http"
)

var formCmd = &cobra.Command{
	Use:   "form URL",
	Short: "Submit a multipart/form-data request to the specified URL",
	Long: `Submit a multipart form. Fields are given with -F name=value; a value
of @path attaches the file at path. Repeated field names are sent as
duplicate parts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		baseURL, path := parseURL(args[0])

		client, recorder, err := buildClient(cmd, baseURL)
		if err != nil {
			return err
		}

		fields, _ := cmd.Flags().GetStringArray("field")
		session, err := buildForm(fields)
		if err != nil {
			return err
		}

		req := http.NewRequest("POST", path).WithBody(session)
		applyRequestFlags(cmd, req)

		return runRequest(cmd, client, recorder, req, baseURL)
	},
}

// buildForm appends each -F field into a fresh form session
func buildForm(fields []string) (*form.Form, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("at least one -F field is required")
	}

	session := form.New()
	for _, field := range fields {
		name, value, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("invalid field %q, expected name=value", field)
		}

		if strings.HasPrefix(value, "@") {
			data, err := os.ReadFile(value[1:])
			if err != nil {
				return nil, fmt.Errorf("reading field file: %w", err)
			}
			if err := session.Append(name, data, form.WithFilename(filepath.Base(value[1:]))); err != nil {
				return nil, err
			}
			continue
		}

		if err := session.Append(name, value); err != nil {
			return nil, err
		}
	}

	return session, nil
}

func init() {
	registerCommonFlags(formCmd)
	formCmd.Flags().StringArrayP("field", "F", []string{}, "Form field as name=value, or name=@file to attach a file")
}
