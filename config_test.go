package main

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestLoadConfig(t *testing.T) {
	convey.Convey("Given the config loader", t, func() {
		clearConfigEnv()
		defer clearConfigEnv()

		convey.Convey("When nothing is set", func() {
			cfg, err := loadConfig()

			convey.Convey("Then the defaults apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SourceURL, convey.ShouldEqual, defaultSourceURL)
				convey.So(cfg.FetchTimeout, convey.ShouldEqual, 15*time.Second)
				convey.So(cfg.MatchCacheTTL, convey.ShouldEqual, 10*time.Minute)
				convey.So(cfg.DBPath, convey.ShouldEqual, "./opr.db")
				convey.So(cfg.SnapshotFallback, convey.ShouldBeFalse)
				convey.So(cfg.Pages, convey.ShouldResemble, defaultPages())
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("OPR_ADDR", ":9000")
			_ = os.Setenv("OPR_FETCH_TIMEOUT", "3s")
			_ = os.Setenv("OPR_SNAPSHOT_FALLBACK", "true")
			_ = os.Setenv("OPR_LOG_LEVEL", "debug")

			cfg, err := loadConfig()

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.FetchTimeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.SnapshotFallback, convey.ShouldBeTrue)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When a Railway volume is mounted", func() {
			_ = os.Setenv("RAILWAY_VOLUME_MOUNT_PATH", "/data")

			cfg, err := loadConfig()

			convey.Convey("Then the database lives on the volume", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBPath, convey.ShouldEqual, "/data/opr.db")
			})
		})

		convey.Convey("When a YAML file lists its own pages", func() {
			path := writeTempConfig(t, `
addr: ":7070"
source_url: "http://sheets.local/exec"
match_cache_ttl: 1m
pages:
  - name: practice
    tag: Practice
`)
			_ = os.Setenv("OPR_CONFIG", path)
			_ = os.Setenv("OPR_ADDR", ":7171")

			cfg, err := loadConfig()

			convey.Convey("Then the file replaces the page list and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7171")
				convey.So(cfg.SourceURL, convey.ShouldEqual, "http://sheets.local/exec")
				convey.So(cfg.MatchCacheTTL, convey.ShouldEqual, time.Minute)
				convey.So(cfg.Pages, convey.ShouldResemble, []SourcePage{{Name: "practice", Tag: "Practice"}})
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("OPR_CONFIG", "/non/existent/opr.yaml")

			cfg, err := loadConfig()

			convey.Convey("Then loading fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a page has no name", func() {
			path := writeTempConfig(t, `
pages:
  - tag: Qual
`)
			_ = os.Setenv("OPR_CONFIG", path)

			cfg, err := loadConfig()

			convey.Convey("Then validation fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the fetch timeout is not a duration", func() {
			_ = os.Setenv("OPR_FETCH_TIMEOUT", "soon")

			cfg, err := loadConfig()

			convey.Convey("Then loading fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func clearConfigEnv() {
	for _, k := range []string{
		"OPR_CONFIG", "OPR_ADDR", "OPR_FETCH_TIMEOUT", "OPR_SNAPSHOT_FALLBACK",
		"OPR_LOG_LEVEL", "RAILWAY_VOLUME_MOUNT_PATH",
	} {
		_ = os.Unsetenv(k)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	f, err := os.CreateTemp(t.TempDir(), "opr-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}
