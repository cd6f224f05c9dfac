package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NetPo4ki/go-smoke/stream"
	"github.com/NetPo4ki/go-smoke/streamio"
)

func newLinesCmd(e *env) *cobra.Command {
	var (
		grep   string
		number bool
		bound  int
	)
	cmd := &cobra.Command{
		Use:   "lines <file>",
		Short: "stream the lines of a file, optionally filtered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			type line struct {
				n    int
				text string
			}
			n := 0
			numbered := stream.Map(streamio.Lines(f), func(s string) line {
				n++
				return line{n: n, text: s}
			})
			if grep != "" {
				numbered = numbered.Filter(func(l line) bool { return strings.Contains(l.text, grep) })
			}
			rx := numbered.Read(bound)
			out := cmd.OutOrStdout()
			count := 0
			for l := range rx.All() {
				if err := cmd.Context().Err(); err != nil {
					rx.Drop()
					return err
				}
				count++
				if number {
					fmt.Fprintf(out, "%6d\t%s\n", l.n, l.text)
				} else {
					fmt.Fprintln(out, l.text)
				}
			}
			if err := rx.Err(); err != nil {
				return err
			}
			e.log.Debug().Str("file", args[0]).Int("lines", count).Msg("lines streamed")
			return nil
		},
	}
	cmd.Flags().StringVarP(&grep, "grep", "g", "", "only print lines containing this text")
	cmd.Flags().BoolVarP(&number, "number", "n", false, "prefix lines with their line number")
	cmd.Flags().IntVar(&bound, "buffer", 0, "lines the reader may run ahead of the printer")
	return cmd
}
