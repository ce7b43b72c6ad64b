package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/junbin-yang/go-statemachine/internal/machines"
	"github.com/junbin-yang/go-statemachine/pkg/definition"
	"github.com/junbin-yang/go-statemachine/pkg/diagram"
	"github.com/junbin-yang/go-statemachine/pkg/logger"
	"github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		machine   string
		file      string
		initial   string
		noInitial bool
		fence     bool
		watch     bool
		debounce  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a state machine as a Mermaid state diagram",
		Example: `  fsmdiagram render --machine Turnstile
  fsmdiagram render --file turnstile.yml --no-initial
  fsmdiagram render --file turnstile.yml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (machine == "") == (file == "") {
				return errors.New("exactly one of --machine or --file is required")
			}
			if watch && file == "" {
				return errors.New("--watch requires --file")
			}

			var opts []diagram.Option
			switch {
			case noInitial || !a.cfg.Diagram.Initial:
				opts = append(opts, diagram.WithoutInitial())
			case initial != "":
				opts = append(opts, diagram.WithInitial(statemachine.Text(initial)))
			}

			render := func(reg *statemachine.Registry) error {
				out := diagram.Mermaid(reg, opts...)
				if fence || a.cfg.Diagram.Fence {
					out = "```mermaid\n" + out + "```\n"
				}
				a.log.Debug("diagram rendered",
					logger.String("machine", reg.Name()),
					logger.Int("transitions", reg.Len()),
				)
				_, err := fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}

			if watch {
				return watchDefinition(cmd.Context(), a, file, debounce, render)
			}

			var (
				reg *statemachine.Registry
				err error
			)
			if machine != "" {
				reg, err = machines.Lookup(machine)
			} else {
				reg, err = definition.LoadFile(file)
			}
			if err != nil {
				return err
			}
			return render(reg)
		},
	}

	cmd.Flags().StringVarP(&machine, "machine", "m", "", "built-in machine name (see list)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "machine definition file (.yml, .yaml, .json)")
	cmd.Flags().StringVar(&initial, "initial", "", "override the initial state")
	cmd.Flags().BoolVar(&noInitial, "no-initial", false, "omit the [*] initial state line")
	cmd.Flags().BoolVar(&fence, "fence", false, "wrap output in a ```mermaid code block")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render whenever the definition file changes")
	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "quiet period before re-rendering in watch mode")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in state machines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sb strings.Builder
			names := machines.Names()
			a.log.Debug("listing machines", logger.Int("count", len(names)))
			for _, name := range names {
				reg, _ := machines.Lookup(name)
				fmt.Fprintf(&sb, "%s\t%d transitions\n", name, reg.Len())
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), sb.String())
			return err
		},
	}
}
