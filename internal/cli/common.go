package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/grapple/internal/config"
	"github.com/wesleyorama2/grapple/internal/output"
	"github.com/wesleyorama2/grapple/pkg/jsonpath"
	"github.com/wesleyorama2/grapple/pkg/jsonschema"

	http "github.com/wesleyorama2/grapple/http"
	"github.com/wesleyorama2/grapple/querystring"
)

// registerCommonFlags adds the flags shared by every verb command
func registerCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("header", "H", []string{}, "HTTP headers to include (can be used multiple times)")
	cmd.Flags().StringArrayP("query", "q", []string{}, "Query parameters as key=value (repeat a key for arrays)")
	cmd.Flags().String("array-format", "", "Array encoding: none, bracket, index, comma, separator, bracket-separator")
	cmd.Flags().Bool("no-sort", false, "Disable query parameter sorting")
	cmd.Flags().StringP("user", "u", "", "Basic auth credentials as user:password")
	cmd.Flags().String("token", "", "Token credential for the Authorization header")
	cmd.Flags().String("auth-type", "", "Authorization scheme for token credentials (default Bearer)")
	cmd.Flags().Bool("only-successful", false, "Fail on responses with status >= 400")
	cmd.Flags().String("proxy", "", "Forward proxy URL")
	cmd.Flags().StringP("config", "c", "", "Path to a profiles config file")
	cmd.Flags().StringP("profile", "p", "", "Profile name from the config file")
	cmd.Flags().String("extract", "", "JSONPath expression to extract from the response body")
	cmd.Flags().String("schema", "", "Path to a JSON Schema to validate the response body against")
	cmd.Flags().Int("repeat", 1, "Number of times to repeat the request")
	cmd.Flags().Bool("stats", false, "Print a latency summary (useful with --repeat)")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
	cmd.Flags().DurationP("timeout", "t", 30*time.Second, "Request timeout")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
}

// parseURL splits a URL into base URL and path
func parseURL(fullURL string) (string, string) {
	if !strings.HasPrefix(fullURL, "http://") && !strings.HasPrefix(fullURL, "https://") {
		fullURL = "http://" + fullURL
	}

	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		return fullURL, "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	if parsedURL.User != nil {
		baseURL = fmt.Sprintf("%s://%s@%s", parsedURL.Scheme, parsedURL.User.String(), parsedURL.Host)
	}

	path := parsedURL.Path
	if path == "" {
		path = "/"
	}
	if parsedURL.RawQuery != "" {
		path = path + "?" + parsedURL.RawQuery
	}

	return baseURL, path
}

// buildClient constructs a client from the profile config (if any) plus
// command-line overrides. CLI flags win over profile values.
func buildClient(cmd *cobra.Command, baseURL string) (*http.Client, *http.Recorder, error) {
	var opts []http.ClientOption

	configPath, _ := cmd.Flags().GetString("config")
	profileName, _ := cmd.Flags().GetString("profile")
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		profile, err := cfg.Profile(profileName)
		if err != nil {
			return nil, nil, err
		}
		profileOpts, err := profile.ClientOptions()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, profileOpts...)
	} else if profileName != "" {
		return nil, nil, fmt.Errorf("--profile requires --config")
	}

	if baseURL != "" {
		opts = append(opts, http.WithBaseURL(baseURL))
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	opts = append(opts, http.WithTimeout(timeout))

	if user, _ := cmd.Flags().GetString("user"); user != "" {
		username, password, _ := strings.Cut(user, ":")
		opts = append(opts, http.WithAuth(http.BasicAuth(username, password)))
	} else if token, _ := cmd.Flags().GetString("token"); token != "" {
		auth := http.TokenAuth(token)
		auth.AuthType, _ = cmd.Flags().GetString("auth-type")
		opts = append(opts, http.WithAuth(auth))
	}

	if only, _ := cmd.Flags().GetBool("only-successful"); only {
		opts = append(opts, http.WithOnlySuccessful(true))
	}
	if proxy, _ := cmd.Flags().GetString("proxy"); proxy != "" {
		opts = append(opts, http.WithProxy(http.ProxySpec{URL: proxy}))
	}

	if qopts := queryOptionsFromFlags(cmd); qopts != nil {
		opts = append(opts, http.WithQueryOptions(*qopts))
	}

	var recorder *http.Recorder
	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		recorder = http.NewRecorder()
		opts = append(opts, http.WithRecorder(recorder))
	}

	return http.NewClient(opts...), recorder, nil
}

// queryOptionsFromFlags builds encoding options from the query flags,
// returning nil when none were set.
func queryOptionsFromFlags(cmd *cobra.Command) *querystring.Options {
	format, _ := cmd.Flags().GetString("array-format")
	noSort, _ := cmd.Flags().GetBool("no-sort")
	if format == "" && !noSort {
		return nil
	}

	opts := &querystring.Options{
		ArrayFormat: querystring.ArrayFormat(format),
	}
	if noSort {
		sortOff := false
		opts.Sort = &sortOff
	}
	return opts
}

// applyRequestFlags adds per-call headers and query parameters
func applyRequestFlags(cmd *cobra.Command, req *http.Request) {
	headers, _ := cmd.Flags().GetStringArray("header")
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			req.WithHeader(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
		}
	}

	params, _ := cmd.Flags().GetStringArray("query")
	for _, param := range params {
		key, value, ok := strings.Cut(param, "=")
		if !ok {
			continue
		}
		// A repeated key accumulates into an array value
		if existing, present := req.Query[key]; present {
			switch prev := existing.(type) {
			case []any:
				req.Query[key] = append(prev, value)
			default:
				req.Query[key] = []any{prev, value}
			}
			continue
		}
		req.WithQueryParam(key, value)
	}
}

// runRequest executes the request (honoring --repeat), prints the
// exchange, and applies --extract / --schema post-processing. It returns
// a non-nil error for the command's exit status.
func runRequest(cmd *cobra.Command, client *http.Client, recorder *http.Recorder, req *http.Request, baseURL string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")
	if !noColor && !output.IsTerminal() {
		noColor = true
	}
	repeat, _ := cmd.Flags().GetInt("repeat")
	if repeat < 1 {
		repeat = 1
	}

	formatter := output.NewFormatter(verbose, noColor)
	fmt.Print(formatter.FormatRequest(req, baseURL))

	var resp *http.Response
	var err error
	for i := 0; i < repeat; i++ {
		resp, err = client.Do(context.Background(), req)
		if err != nil {
			fmt.Fprint(os.Stderr, formatter.FormatError(err))
			return err
		}
	}

	fmt.Print(formatter.FormatResponse(resp))

	if recorder != nil {
		fmt.Print(formatter.FormatStats(recorder.Snapshot()))
	}

	if err := postProcess(cmd, resp); err != nil {
		fmt.Fprint(os.Stderr, formatter.FormatError(err))
		return err
	}
	return nil
}

// postProcess applies --extract and --schema to the response body
func postProcess(cmd *cobra.Command, resp *http.Response) error {
	body, err := resp.GetBodyAsString()
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("extract"); path != "" {
		value, err := jsonpath.Extract(body, path)
		if err != nil {
			return err
		}
		fmt.Println(value)
	}

	if schemaPath, _ := cmd.Flags().GetString("schema"); schemaPath != "" {
		schema, err := os.ReadFile(schemaPath)
		if err != nil {
			return fmt.Errorf("reading schema: %w", err)
		}
		valid, verrs, err := jsonschema.Validate(body, string(schema))
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("schema validation failed: %s", verrs.Error())
		}
		fmt.Println("schema: valid")
	}

	return nil
}
