package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showSQL bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&showSQL, "sql", false, "print the generated SQL")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Queries.Ask(ctx, "", strings.Join(args, " "))
	if err != nil {
		return err
	}

	answer := res.Answer()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Response)
	fmt.Fprintf(out, "confidence: %.1f\n", answer.Confidence)
	if showSQL && answer.SQLQuery != nil {
		fmt.Fprintf(out, "sql: %s\n", *answer.SQLQuery)
	}
	if answer.Error != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", *answer.Error)
	}
	return nil
}
