// Package cli implements merchantctl, a command-line front end for the
// merchant client library.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"merchant-client/internal/config"
	"merchant-client/pkg/merchant"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFileName = ".merchantctl.yaml"

// Settings keys, shared by flags, environment and the config file.
const (
	keyEnv     = "env"
	keyToken   = "token"
	keyBaseURL = "base_url"
	keyTimeout = "timeout"
	keyStrict  = "strict"
	keyVerbose = "verbose"
)

type app struct {
	v          *viper.Viper
	configPath string
	client     *merchant.Client
}

// NewRootCmd builds the merchantctl command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "merchantctl",
		Short: "Manage merchant customers and orders from the command line",
		Long: `merchantctl talks to the merchant API through the Go client library.

Settings are read from flags, then MERCHANT_* environment variables, then
~/` + configFileName + ` (keys: env, token, base_url, timeout, strict).
A timeout without a unit is a number of seconds.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.loadConfig() },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default $HOME/"+configFileName+")")
	flags.String("env", "", "Environment: sandbox or production")
	flags.String("token", "", "API access token")
	flags.String("base-url", "", "Override the API base URL")
	flags.Duration("timeout", 0, "Per-request timeout")
	flags.Bool("strict", true, "Fail on response fields the client does not know")
	flags.BoolP("verbose", "v", false, "Log requests to stderr")

	for key, flag := range map[string]string{
		keyEnv:     "env",
		keyToken:   "token",
		keyBaseURL: "base-url",
		keyTimeout: "timeout",
		keyStrict:  "strict",
		keyVerbose: "verbose",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(a.envCmd(), a.customersCmd(), a.ordersCmd())
	return root
}

// Execute runs merchantctl with os.Args.
func Execute(version string) error {
	root := NewRootCmd(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig layers defaults from the process environment under the
// optional config file. Flags and MERCHANT_* variables win over both.
func (a *app) loadConfig() error {
	env := config.FromEnv()
	a.v.SetDefault(keyEnv, env.MerchantEnv)
	a.v.SetDefault(keyTimeout, env.MerchantTimeout)
	a.v.SetDefault(keyStrict, true)
	for key, name := range map[string]string{
		keyEnv:     "MERCHANT_ENV",
		keyToken:   "MERCHANT_TOKEN",
		keyBaseURL: "MERCHANT_BASE_URL",
	} {
		if err := a.v.BindEnv(key, name); err != nil {
			return err
		}
	}

	path := a.configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, configFileName)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	a.v.SetConfigFile(path)
	a.v.SetConfigType("yaml")
	if err := a.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// merchantClient builds the client once per invocation.
func (a *app) merchantClient(cmd *cobra.Command) (*merchant.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	timeout, err := a.timeout()
	if err != nil {
		return nil, err
	}
	opts := []merchant.Option{
		merchant.WithTimeout(timeout),
		merchant.WithStrictSchema(a.v.GetBool(keyStrict)),
	}
	if u := a.v.GetString(keyBaseURL); u != "" {
		opts = append(opts, merchant.WithBaseURL(u))
	}
	if a.v.GetBool(keyVerbose) {
		opts = append(opts, merchant.WithLogger(newLogger(cmd.ErrOrStderr())))
	}
	c, err := merchant.NewClient(a.v.GetString(keyToken), a.v.GetString(keyEnv), opts...)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// timeout reads the timeout setting. Bare numbers count seconds, the same
// as MERCHANT_TIMEOUT_SECONDS; strings may also carry a unit ("1m30s").
func (a *app) timeout() (time.Duration, error) {
	switch v := a.v.Get(keyTimeout).(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		s := strings.TrimSpace(v)
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("timeout %q: want seconds or a duration such as 30s", v)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("timeout: unsupported value %v", v)
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[merchantctl] ", log.LstdFlags|log.LUTC)
}
