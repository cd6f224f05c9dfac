package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/NetPo4ki/go-smoke/stream"
	"github.com/NetPo4ki/go-smoke/task"
)

func newDemoCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "run a short tour of tasks and streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			greeting, err := task.Map(task.Delay(10*time.Millisecond), func(_ struct{}, err error) string {
				if err != nil {
					return "delay failed"
				}
				return "hello"
			}).Schedule(e.sched).Wait()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "delayed greeting: %s\n", greeting)

			squares := make([]*task.Task[int], 8)
			for i := range squares {
				squares[i] = task.Scheduled(e.sched, func(s *task.Sender[int]) error {
					time.Sleep(time.Duration(8-i) * time.Millisecond)
					return s.Send(i * i)
				})
			}
			all, err := task.All(4, squares).Wait()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "squares in input order: %v\n", all)

			even := stream.FromSlice([]int{1, 2, 3, 4}).Filter(func(n int) bool { return n%2 == 0 })
			doubled, err := stream.Map(even, func(n int) int { return n * 2 }).Collect()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "filter even, map x2: %v\n", doubled)

			merged := stream.Merge(stream.Range(0, 5), stream.Range(100, 105))
			sum, err := stream.Fold(merged, 0, func(acc, n int) int { return acc + n }).Wait()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "sum of merged ranges: %d\n", sum)

			results, err := task.Settle(0, []*task.Task[string]{
				task.Value("ok"),
				task.New(func(*task.Sender[string]) error { panic("demo panic") }),
			}).Wait()
			if err != nil {
				return err
			}
			for i, r := range results {
				if r.Err != nil {
					fmt.Fprintf(out, "settled %d: failed: %v\n", i, r.Err)
					continue
				}
				fmt.Fprintf(out, "settled %d: %s\n", i, r.Value)
			}
			return nil
		},
	}
}
