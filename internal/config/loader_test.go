package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/sideout/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "sideout.db")
				convey.So(cfg.SaveEventThreshold, convey.ShouldEqual, 10)
				convey.So(cfg.SaveIntervalSeconds, convey.ShouldEqual, 30)
				convey.So(cfg.SaveQueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.SaveWorkerCount, convey.ShouldEqual, 1)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SIDEOUT_ADDR", ":8080")
			_ = os.Setenv("SIDEOUT_DB_PATH", "/tmp/scores.db")
			_ = os.Setenv("SIDEOUT_SAVE_EVENT_THRESHOLD", "25")
			_ = os.Setenv("SIDEOUT_DEDUPE_SIZE", "1000")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/scores.db")
				convey.So(cfg.SaveEventThreshold, convey.ShouldEqual, 25)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 1000)
				convey.So(cfg.SaveQueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
db_path: "matches.db"
save_worker_count: 2
`
			tmpFile := createTempConfigFile(t, yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SIDEOUT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "matches.db")
				convey.So(cfg.SaveWorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.SaveEventThreshold, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
save_worker_count: 2
`
			tmpFile := createTempConfigFile(t, yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SIDEOUT_CONFIG", tmpFile)
			_ = os.Setenv("SIDEOUT_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SaveWorkerCount, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("SIDEOUT_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an empty addr", func() {
			_ = os.Setenv("SIDEOUT_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an empty db_path", func() {
			_ = os.Setenv("SIDEOUT_DB_PATH", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "db_path must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	vars := []string{
		"SIDEOUT_CONFIG",
		"SIDEOUT_LOG_LEVEL",
		"SIDEOUT_ADDR",
		"SIDEOUT_DB_PATH",
		"SIDEOUT_SAVE_EVENT_THRESHOLD",
		"SIDEOUT_SAVE_INTERVAL_SECONDS",
		"SIDEOUT_SAVE_QUEUE_SIZE",
		"SIDEOUT_SAVE_WORKER_COUNT",
		"SIDEOUT_DEDUPE_SIZE",
	}
	for _, v := range vars {
		_ = os.Unsetenv(v)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "sideout-config-*.yaml")
	if err != nil {
		t.Fatalf("create temp config: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp config: %v", err)
	}
	return f.Name()
}
