package cmd

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chapel-lang/github-commit-emailer/internal/config"
	"github.com/chapel-lang/github-commit-emailer/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	cmd := &cobra.Command{
		Use: "lambda",
	}
	cmd.AddCommand(
		cmdLambdaHTTP(),
		cmdLambdaEvent(),
	)
	return cmd
}

// cmdLambdaHTTP is the command for running the lambda-http mode.
func cmdLambdaHTTP() *cobra.Command {
	return &cobra.Command{
		Use: "http",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return startLambda(cmd, config.ModeLambdaHTTP, func(rtm *runtime.Runtime) any { return rtm.Lambda })
		},
	}
}

// cmdLambdaEvent is the command for running the lambda in event mode.
func cmdLambdaEvent() *cobra.Command {
	return &cobra.Command{
		Use: "event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return startLambda(cmd, config.ModeLambdaEvent, func(rtm *runtime.Runtime) any { return rtm.LambdaForEvent })
		},
	}
}

func startLambda(cmd *cobra.Command, mode string, handlerFor func(*runtime.Runtime) any) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger = logger.With("mode", mode)

	rtm, cleanup, err := setup(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}
	defer cleanup()

	logger.Info("lambda starting...")
	lambda.StartWithOptions(handlerFor(rtm), lambda.WithContext(ctx))
	return nil
}
