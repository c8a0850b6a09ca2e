package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/okian/minestats/internal/config"
	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/pareto"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
			convey.So(cfg.SnapshotRetention, convey.ShouldEqual, 32)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the default Pareto metrics should apply", func() {
			pc, err := cfg.ParetoConfig()
			convey.So(err, convey.ShouldBeNil)
			convey.So(pc, convey.ShouldResemble, pareto.DefaultConfig())
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MINESTATS_ADDR", ":8080")
			_ = os.Setenv("MINESTATS_QUEUE_SIZE", "128")
			_ = os.Setenv("MINESTATS_WORKER_COUNT", "3")
			_ = os.Setenv("MINESTATS_PARALLEL", "true")
			_ = os.Setenv("MINESTATS_PARETO", "success_ratio=max,avg_clicks=max")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 128)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.Parallel, convey.ShouldBeTrue)

				pc, err := cfg.ParetoConfig()
				convey.So(err, convey.ShouldBeNil)
				convey.So(pc.Objectives, convey.ShouldHaveLength, 5)
				convey.So(pc.Directions()["avg_clicks"], convey.ShouldEqual, "maximize")
				convey.So(pc.Directions()["avg_guesses"], convey.ShouldEqual, "minimize")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
store_driver: sqlite
sqlite_path: /tmp/snapshots.db
watch_input: true
input_path: results.csv
pareto_metrics:
  success_ratio: maximize
  avg_guesses: maximize
`)
			_ = os.Setenv("MINESTATS_CONFIG", tmpFile)
			_ = os.Setenv("MINESTATS_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should load and env should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/snapshots.db")
				convey.So(cfg.WatchInput, convey.ShouldBeTrue)

				pc, err := cfg.ParetoConfig()
				convey.So(err, convey.ShouldBeNil)
				convey.So(pc.Objectives, convey.ShouldResemble, []pareto.Objective{
					{Metric: model.MetricSuccessRatio, Direction: pareto.Maximize},
					{Metric: model.MetricAvgTimePerClickMs, Direction: pareto.Minimize},
					{Metric: model.MetricAvgClicks, Direction: pareto.Minimize},
					{Metric: model.MetricAvgGuesses, Direction: pareto.Maximize},
					{Metric: model.MetricAvgCompletion, Direction: pareto.Maximize},
				})
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("MINESTATS_CONFIG", "/nonexistent/minestats.yaml")
			_, err := config.Load(ctx)

			convey.Convey("Then a load error should be returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When values are invalid", func() {
			cases := map[string]string{
				"MINESTATS_ADDR":         "",
				"MINESTATS_STORE_DRIVER": "postgres",
				"MINESTATS_LOG_FORMAT":   "xml",
				"MINESTATS_QUEUE_SIZE":   "0",
				"MINESTATS_PARETO":       "avg_score=max",
			}
			for key, val := range cases {
				clearConfigEnvVars()
				if key == "MINESTATS_ADDR" {
					tmpFile := createTempConfigFile(t, "addr: \"\"\n")
					_ = os.Setenv("MINESTATS_CONFIG", tmpFile)
				} else {
					_ = os.Setenv(key, val)
				}
				cfg, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			}
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"MINESTATS_CONFIG",
		"MINESTATS_ADDR",
		"MINESTATS_QUEUE_SIZE",
		"MINESTATS_WORKER_COUNT",
		"MINESTATS_PARALLEL",
		"MINESTATS_PARETO",
		"MINESTATS_STORE_DRIVER",
		"MINESTATS_LOG_FORMAT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	tmpFile, err := os.CreateTemp(t.TempDir(), "minestats-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
