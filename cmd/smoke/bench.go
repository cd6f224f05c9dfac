package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/NetPo4ki/go-smoke/task"
)

func newBenchCmd(e *env) *cobra.Command {
	var (
		jobs  int
		limit int
		work  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "run many small tasks on the configured scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jobs <= 0 {
				return fmt.Errorf("invalid flag value --jobs %d", jobs)
			}
			tasks := make([]*task.Task[int], jobs)
			for i := range tasks {
				tasks[i] = task.Scheduled(e.sched, func(s *task.Sender[int]) error {
					time.Sleep(work)
					return s.Send(i)
				})
			}
			start := time.Now()
			results, err := task.All(limit, tasks).Wait()
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scheduler: %s (%s)\n", e.sched.Name(), e.sched.Backend())
			fmt.Fprintf(out, "jobs: %d, elapsed: %s, per job: %s\n", len(results), elapsed, elapsed/time.Duration(len(results)))
			if p := e.sched.ThreadPool(); p != nil {
				st := p.Stats()
				fmt.Fprintf(out, "pool: bound=%d submitted=%d completed=%d\n", st.Bound, st.Submitted, st.Completed)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1000, "number of tasks to run")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum tasks driven at once, 0 for no limit")
	cmd.Flags().DurationVarP(&work, "work", "w", time.Millisecond, "simulated work per task")
	return cmd
}
