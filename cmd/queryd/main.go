// Command queryd runs the query node: a Pipeline Builder turning a plan
// tree into a parallel dataflow Pipeline and executing it. Plan
// production (parsing/optimizing a query into a plan.Node tree) is an
// external collaborator; queryd demonstrates the wiring with a fixed demo
// plan until one is attached.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/internal/config"
	"github.com/latticedb/lattice/internal/logging"
	"github.com/latticedb/lattice/pkg/pipeline"
	"github.com/latticedb/lattice/pkg/plan"
	"github.com/latticedb/lattice/pkg/session"
)

const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitBuildError       = 2
	ExitExecError        = 3
)

func main() {
	var configPath string
	var maxThreads uint64

	root := &cobra.Command{
		Use:   "queryd",
		Short: "Build and run a demo dataflow Pipeline from a plan tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, maxThreads)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	root.Flags().Uint64Var(&maxThreads, "max-threads", 4, "maximum workers per ReadSource")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitInvalidArguments)
	}
}

func run(configPath string, maxThreads uint64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel)

	root := demoPlan()
	ctx := session.New("queryd-demo", maxThreads)

	p, err := pipeline.NewBuilder(nil).Build(ctx, root)
	if err != nil {
		log.WithError(err).Error("failed to build pipeline")
		os.Exit(ExitBuildError)
	}

	log.WithFields(map[string]interface{}{
		"pipes": len(p.Pipes),
		"width": p.Width(),
	}).Info("pipeline built")

	if err := pipeline.Execute(context.Background(), p); err != nil {
		log.WithError(err).Error("pipeline execution failed")
		os.Exit(ExitExecError)
	}

	log.Info("pipeline finished")
	return nil
}

// demoPlan builds Select -> Projection -> Filter -> ReadSource over two
// partitions, matching the builder's worked example.
func demoPlan() plan.Node {
	return &plan.Select{In: &plan.Projection{
		Exprs: []plan.Expr{{Text: "a"}},
		In: &plan.Filter{
			Predicate: plan.Expr{Text: "a > 1"},
			In: &plan.ReadSource{
				Partitions: []plan.Partition{{ID: "p0"}, {ID: "p1"}},
			},
		},
	}}
}
