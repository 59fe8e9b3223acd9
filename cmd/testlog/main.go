// testlog writes a few structured log lines to stdout. The process runner
// end-to-end tests spawn it and assert on its output.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	messageFlag = &cli.StringFlag{
		Name:  "message",
		Value: "default message",
		Usage: "The message to log",
	}
	levelFlag = &cli.StringFlag{
		Name:  "level",
		Value: "debug",
		Usage: "Lowest level to emit (eg. 'trace')",
	}
)

func newLogger(formatter logrus.Formatter) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(formatter)
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "testlog"
	app.Usage = "Emit log lines for process runner tests"
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr
	app.Commands = []*cli.Command{
		{
			Name:      "log",
			Usage:     "Log an info-level message as JSON",
			UsageText: "testlog log --message=hello",
			Flags:     []cli.Flag{messageFlag},
			Action: func(ctx *cli.Context) error {
				newLogger(&logrus.JSONFormatter{}).Info(ctx.String(messageFlag.Name))
				return nil
			},
		},
		{
			Name:      "terminal-log",
			Usage:     "Log an info-level message in text form with a field",
			UsageText: "testlog terminal-log --message=hello",
			Flags:     []cli.Flag{messageFlag},
			Action: func(ctx *cli.Context) error {
				logger := newLogger(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
				logger.WithField("some-field", "some-value").Info(ctx.String(messageFlag.Name))
				return nil
			},
		},
		{
			Name:      "debug",
			Usage:     "Log a debug-level and a trace-level message as JSON",
			UsageText: "testlog debug --message=hello --level=trace",
			Flags:     []cli.Flag{messageFlag, levelFlag},
			Action: func(ctx *cli.Context) error {
				level, err := logrus.ParseLevel(ctx.String(levelFlag.Name))
				if err != nil {
					return err
				}
				logger := newLogger(&logrus.JSONFormatter{})
				logger.SetLevel(level)
				msg := ctx.String(messageFlag.Name)
				logger.Debug(fmt.Sprintf("Debug Message: %s", msg))
				logger.Trace(fmt.Sprintf("Trace Message: %s", msg))
				return nil
			},
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
