// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command callmux-probe submits one call over a DevTools-style WebSocket
// endpoint and prints the reply, optionally with the events received
// while waiting, as JSON lines.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.hybscloud.com/callmux"
	"code.hybscloud.com/callmux/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(nil).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. A nil dialer selects WebSocket.
func newRootCmd(dialer callmux.Dialer) *cobra.Command {
	v := viper.New()
	var configPath string

	root := &cobra.Command{
		Use:          "callmux-probe",
		Short:        "Drive a remote call/event endpoint from the command line",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (json, yaml or toml)")
	pf.String("endpoint", "", "WebSocket endpoint, e.g. ws://127.0.0.1:9222/devtools/browser/<id>")
	pf.Duration("timeout", 30*time.Second, "time to wait for the response")
	pf.String("log-level", "warn", "log level")
	pf.String("log-format", "console", "log format: console or json")
	mustBind(v, "endpoint", pf.Lookup("endpoint"))
	mustBind(v, "timeout", pf.Lookup("timeout"))
	mustBind(v, "log.level", pf.Lookup("log-level"))
	mustBind(v, "log.format", pf.Lookup("log-format"))

	call := &cobra.Command{
		Use:   "call <method>",
		Short: "Submit one call and print its response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				return err
			}
			logger, closer, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer closer.Close()
			return probe(cmd.Context(), cfg, args[0], dialer, logger, cmd.OutOrStdout())
		},
	}
	f := call.Flags()
	f.String("params", "", "call params as a JSON object")
	f.String("session", "", "session to scope the call to")
	f.Bool("events", false, "also print events received while waiting")
	mustBind(v, "params", f.Lookup("params"))
	mustBind(v, "session", f.Lookup("session"))
	mustBind(v, "events", f.Lookup("events"))

	root.AddCommand(call)
	return root
}

// mustBind binds key to flag. It fails only on a nil flag, a programming error.
func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
