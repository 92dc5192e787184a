// Command logflow is the CLI front-end: start one or more pipelines,
// report their status, or restart one by name (spec §6). Grounded on
// the teacher's main.go signal-handling shape and the original's
// click-based cli/commands.py surface, rebuilt on cobra per the
// rest-of-pack's CLI convention.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/souzomain/logflow/internal/config"
	"github.com/souzomain/logflow/internal/engine"
	"github.com/souzomain/logflow/internal/logging"

	_ "github.com/souzomain/logflow/internal/processor"
	_ "github.com/souzomain/logflow/internal/sink"
	_ "github.com/souzomain/logflow/internal/source"
)

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:   "logflow",
		Short: "LogFlow: a configurable log ingestion and transformation engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			bootstrap := config.LoadBootstrap()
			level := bootstrap.LogLevel
			if verbose {
				level = "debug"
			}
			logging.Configure(level, bootstrap.JSONLogs, os.Stdout)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newStartCommand(), newStatusCommand(), newRestartCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newStartCommand() *cobra.Command {
	var configPaths []string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start LogFlow with the specified pipeline configuration(s)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.GetLogger("cli")
			e := engine.New()

			for _, path := range configPaths {
				if _, err := os.Stat(path); err != nil {
					fmt.Fprintf(os.Stderr, "Error: configuration file not found: %s\n", path)
					os.Exit(1)
				}
			}

			for _, path := range configPaths {
				name, err := e.Load(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				if err := e.Start(name); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			log.Info("shutting down gracefully", nil)
			e.StopAll()
			log.Info("logflow stopped", nil)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&configPaths, "config", "c", nil, "path to a pipeline configuration file (repeatable)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newStatusCommand() *cobra.Command {
	var configPaths []string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of the configured pipelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := engine.New()
			for _, path := range configPaths {
				if _, err := e.Load(path); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
			}

			statuses := e.StatusAll()
			if len(statuses) == 0 {
				fmt.Println("No pipelines are configured")
				return nil
			}

			fmt.Println("Pipeline Status:")
			fmt.Println("---------------")
			for _, s := range statuses {
				state := "STOPPED"
				if s.Running {
					state = "RUNNING"
				}
				fmt.Printf("%s: %s\n", s.Name, state)
				fmt.Printf("  Events: %d processed, %d dropped, %d errors\n",
					s.EventsProcessed, s.EventsDropped, s.ProcessingErrors)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&configPaths, "config", "c", nil, "path to a pipeline configuration file (repeatable)")
	return cmd
}

func newRestartCommand() *cobra.Command {
	var configPaths []string

	cmd := &cobra.Command{
		Use:   "restart [pipeline]",
		Short: "Restart a specific pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			e := engine.New()
			for _, path := range configPaths {
				if _, err := e.Load(path); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
			}

			found := false
			for _, loaded := range e.List() {
				if loaded == name {
					found = true
					break
				}
			}
			if !found {
				fmt.Fprintf(os.Stderr, "Error: pipeline not found: %s\n", name)
				os.Exit(1)
			}

			if err := e.Stop(name); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			time.Sleep(100 * time.Millisecond)
			if err := e.Start(name); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("Pipeline %s restarted\n", name)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&configPaths, "config", "c", nil, "path to a pipeline configuration file (repeatable)")
	return cmd
}
