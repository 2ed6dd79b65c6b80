package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/urlgen-dev/urlgen/internal/config"
	"github.com/urlgen-dev/urlgen/internal/errors"
	"github.com/urlgen-dev/urlgen/internal/verify"
)

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay every reversal against the generated output",
		Long: `Execute each configured artifact in an embedded JavaScript engine
and call every reversal function with the sample arguments that
confirmed it during generation. Fails if any client-side reversal
disagrees with the server route table.

Examples:
  urlgen verify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify()
		},
	}

	return cmd
}

func runVerify() error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	report, err := verify.Verify(ctx, cfg)
	if err != nil {
		return err
	}

	if !report.OK() {
		for _, m := range report.Mismatches {
			errorMsg("%s %s: server %q, client %q", m.Artifact, m.QName, m.Want, m.Got)
		}
		return errors.New("E081").
			WithDetailf("%d of %d reversal(s) disagree", len(report.Mismatches), report.Checks)
	}

	success("Verified %d reversal(s) across %d artifact(s)", report.Checks, report.Artifacts)
	return nil
}
