package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/junbin-yang/go-statemachine/pkg/logger"
)

// app 命令执行期间共享的配置与日志
type app struct {
	configPath string
	cfg        *Config
	log        logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "fsmdiagram",
		Short: "Render state machine transitions as Mermaid diagrams",
		Long: `fsmdiagram renders the guarded transitions of a built-in state machine
or of a YAML/JSON definition file as a Mermaid stateDiagram-v2.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			a.log, err = newLogger(&cfg.Logger, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger.ReplaceDefault(a.log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default searches ./fsmdiagram.{yml,json,ini})")

	rootCmd.AddCommand(newRenderCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	return rootCmd
}

// Execute 执行根命令，失败时退出码为 1
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
