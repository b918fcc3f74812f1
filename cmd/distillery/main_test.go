package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestBulkConfigFromFlags(t *testing.T) {
	run := func(t *testing.T, args ...string) error {
		t.Helper()
		app := &cli.App{
			Name: "distillery",
			Commands: []*cli.Command{
				{
					Name:  "bulk",
					Flags: bulkFlags(),
					Action: func(c *cli.Context) error {
						_, err := bulkConfigFromFlags(c)
						return err
					},
				},
			},
		}
		return app.Run(append([]string{"distillery", "bulk"}, args...))
	}

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, run(t))
	})

	t.Run("zero batch-size fails", func(t *testing.T) {
		err := run(t, "--batch-size", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size")
	})

	t.Run("zero report-interval fails", func(t *testing.T) {
		err := run(t, "--report-interval", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report-interval")
	})

	t.Run("zero max-retries fails", func(t *testing.T) {
		err := run(t, "--max-retries", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max-retries")
	})
}

func TestBulkFlagDefaults(t *testing.T) {
	flags := bulkFlags()

	intDefault := func(name string) int {
		for _, flag := range flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
				return f.Value
			}
		}
		t.Fatalf("flag %s not found", name)
		return 0
	}

	assert.Equal(t, 100, intDefault("batch-size"))
	assert.Equal(t, 100, intDefault("report-interval"))
	assert.Equal(t, 3, intDefault("max-retries"))
}

func TestAIConfigFromFlags(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		app := &cli.App{
			Name:  "distillery",
			Flags: aiFlags(),
			Action: func(c *cli.Context) error {
				config, err := aiConfigFromFlags(c)
				require.NoError(t, err)
				assert.Equal(t, "https://openrouter.ai/api/v1", config.Host)
				assert.Equal(t, "anthropic/claude-3.5-sonnet", config.ChatModel)
				return nil
			},
		}
		require.NoError(t, app.Run([]string{"distillery"}))
	})

	t.Run("empty chat model fails", func(t *testing.T) {
		app := &cli.App{
			Name:  "distillery",
			Flags: aiFlags(),
			Action: func(c *cli.Context) error {
				_, err := aiConfigFromFlags(c)
				return err
			},
		}
		err := app.Run([]string{"distillery", "--chat-model", ""})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ChatModel")
	})

	t.Run("host is normalized to /v1", func(t *testing.T) {
		app := &cli.App{
			Name:  "distillery",
			Flags: aiFlags(),
			Action: func(c *cli.Context) error {
				config, err := aiConfigFromFlags(c)
				require.NoError(t, err)
				assert.Equal(t, "http://localhost:11434/v1", config.Host)
				return nil
			},
		}
		require.NoError(t, app.Run([]string{"distillery", "--ai-host", "http://localhost:11434"}))
	})
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, tc := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(tc, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := newApp().Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}
