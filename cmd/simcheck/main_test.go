package main

import (
	"bytes"
	"flag"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/simcheck/core"
)

func TestParseSources(t *testing.T) {
	t.Run("empty spec selects nothing", func(t *testing.T) {
		sources, err := parseSources("")
		require.NoError(t, err)
		assert.Nil(t, sources)
	})

	t.Run("single source", func(t *testing.T) {
		sources, err := parseSources("articles")
		require.NoError(t, err)
		assert.Equal(t, []core.SourceType{core.SourceTypeArticle}, sources)
	})

	t.Run("multiple sources with spaces", func(t *testing.T) {
		sources, err := parseSources("articles, youtube")
		require.NoError(t, err)
		assert.Equal(t, []core.SourceType{core.SourceTypeArticle, core.SourceTypeYouTube}, sources)
	})

	t.Run("unknown source fails", func(t *testing.T) {
		_, err := parseSources("articles,podcasts")
		require.ErrorIs(t, err, core.ErrInvalidSourceType)
		assert.Contains(t, err.Error(), "podcasts")
	})
}

func TestSubmissionText(t *testing.T) {
	newContext := func(t *testing.T, file string, args ...string) *cli.Context {
		t.Helper()
		set := flag.NewFlagSet("submit", flag.ContinueOnError)
		set.String("file", "", "")
		require.NoError(t, set.Parse(args))
		c := cli.NewContext(cli.NewApp(), set, nil)
		if file != "" {
			require.NoError(t, c.Set("file", file))
		}
		return c
	}

	t.Run("positional arguments are joined", func(t *testing.T) {
		c := newContext(t, "", "hello", "world")
		text, err := submissionText(c)
		require.NoError(t, err)
		assert.Equal(t, "hello world", text)
	})

	t.Run("file contents are read", func(t *testing.T) {
		path := t.TempDir() + "/sub.txt"
		require.NoError(t, os.WriteFile(path, []byte("text from a file"), 0o644))

		c := newContext(t, path)
		text, err := submissionText(c)
		require.NoError(t, err)
		assert.Equal(t, "text from a file", text)
	})

	t.Run("missing file fails", func(t *testing.T) {
		c := newContext(t, t.TempDir()+"/absent.txt")
		_, err := submissionText(c)
		require.Error(t, err)
	})

	t.Run("no text at all fails", func(t *testing.T) {
		c := newContext(t, "")
		_, err := submissionText(c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no submission text")
	})
}

func TestCheckIDArg(t *testing.T) {
	newContext := func(t *testing.T, args ...string) *cli.Context {
		t.Helper()
		set := flag.NewFlagSet("status", flag.ContinueOnError)
		require.NoError(t, set.Parse(args))
		return cli.NewContext(cli.NewApp(), set, nil)
	}

	t.Run("valid uuid", func(t *testing.T) {
		want := core.NewCheckID()
		id, err := checkIDArg(newContext(t, want.String()))
		require.NoError(t, err)
		assert.Equal(t, want, id)
	})

	t.Run("malformed id fails", func(t *testing.T) {
		_, err := checkIDArg(newContext(t, "not-a-uuid"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid check id")
	})

	t.Run("missing argument fails", func(t *testing.T) {
		_, err := checkIDArg(newContext(t))
		require.Error(t, err)
	})
}

func TestPrintReport(t *testing.T) {
	report := &core.Report{
		CheckId:        core.NewCheckID(),
		OverallScore:   82.4,
		RiskLevel:      core.RiskHigh,
		Summary:        "1 likely source identified, overall risk high",
		SourcesChecked: 2,
		ChunkCount:     3,
		GeneratedAt:    time.Now(),
		Matches: []core.AggregatedMatch{
			{
				Title:         "Reference Article",
				Identifier:    "https://example.com/reference",
				SourceType:    core.SourceTypeArticle,
				MaxScore:      0.91,
				Coverage:      0.5,
				MatchCount:    3,
				WeightedScore: 82.4,
				RiskLevel:     core.RiskHigh,
				Snippet:       "a matched passage",
				Explanation:   "3 segment(s) matched with up to 91% similarity",
			},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "overall score: 82.4 (high risk)")
	assert.Contains(t, out, "Reference Article (articles)")
	assert.Contains(t, out, "https://example.com/reference")
	assert.Contains(t, out, "coverage 50%")
	assert.Contains(t, out, "a matched passage")
}

func TestSetupLogger(t *testing.T) {
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
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, tc := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
