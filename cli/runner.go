package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/viant/aura"
	"github.com/viant/aura/client/auth"
)

// Run parses args and executes the selected command, writing results to stdout.
func Run(args []string) error {
	return run(context.Background(), args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	options := &Options{}
	parser := flags.NewParser(options, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}
	logger := newLogger(stderr, options.LogLevel)

	var loaded *aura.ClientOptions
	if options.Config != "" {
		var err error
		if loaded, err = aura.LoadOptions(ctx, options.Config); err != nil {
			return err
		}
	}
	client, err := aura.NewClient(ctx, options.clientOptions(loaded), logger)
	if err != nil {
		return err
	}

	switch parser.Active.Name {
	case "login":
		result, err := client.Login(ctx, options.Login.Username, options.Login.Password)
		if err != nil {
			return err
		}
		return writeJSON(stdout, map[string]interface{}{
			"user_id":    result.Identity.UserID,
			"role":       result.Identity.Role,
			"expires_at": result.ExpiresAt,
		})
	case "logout":
		client.Logout(ctx)
		return nil
	case "status":
		return writeJSON(stdout, status(client))
	case "renew":
		if !client.Renew(ctx) {
			return auth.ErrSessionExpired
		}
		return writeJSON(stdout, status(client))
	case "request":
		requestOptions := &auth.RequestOptions{Method: strings.ToUpper(options.Request.Method)}
		if options.Request.Data != "" {
			requestOptions.Body = []byte(options.Request.Data)
		}
		response, err := client.PerformRequest(ctx, options.Request.Args.Endpoint, requestOptions)
		if err != nil {
			return err
		}
		if len(response.Data) == 0 {
			return writeJSON(stdout, map[string]interface{}{"status_code": response.StatusCode, "message": response.Message})
		}
		return writeJSON(stdout, response.Data)
	}
	return fmt.Errorf("unsupported command: %v", parser.Active.Name)
}

func status(client *auth.Client) map[string]interface{} {
	session := client.Credentials()
	ret := map[string]interface{}{
		"authenticated": session.IsAuthenticated(),
		"user_id":       client.UserID(),
		"role":          client.UserRole(),
	}
	if session.ExpiresAt != nil {
		ret["expires_at"] = *session.ExpiresAt
	}
	return ret
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(lvl).With().Timestamp().Logger()
}
