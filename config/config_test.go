package config

import (
	"os"
	"testing"
	"time"

	"github.com/ONSdigital/dp-table-aggregator/engine"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConfig(t *testing.T) {
	Convey("Given an environment with no environment variables set", t, func() {
		os.Clearenv()
		cfg = nil
		cfg, err := Get()

		Convey("When the config values are retrieved", func() {

			Convey("Then there should be no error returned", func() {
				So(err, ShouldBeNil)
			})

			Convey("Then the values should be set to the expected defaults", func() {
				So(cfg.BindAddr, ShouldEqual, ":28500")
				So(cfg.GracefulShutdownTimeout, ShouldEqual, 5*time.Second)
				So(cfg.HealthCheckInterval, ShouldEqual, 30*time.Second)
				So(cfg.HealthCheckCriticalTimeout, ShouldEqual, 90*time.Second)
				So(cfg.WarehouseDriver, ShouldEqual, DriverBigQuery)
				So(cfg.BigQueryProjectID, ShouldEqual, "automatic-spotify-scraper")
				So(cfg.Datasets, ShouldResemble, []string{
					"keywords_ranking_data_sheet1",
					"keywords_ranking_data_sheet2",
					"keywords_ranking_data_sheet3",
					"keywords_ranking_data_sheet4",
				})
				So(cfg.DatasetKeyPrefix, ShouldEqual, "keywords_ranking_data_sheet")
				So(cfg.TablesDataRowLimit, ShouldEqual, uint(10000))
				So(cfg.TableDataRowLimit, ShouldEqual, uint(10000))
				So(cfg.FetchConcurrency, ShouldEqual, 10)
				So(cfg.DiscoveryConcurrency, ShouldEqual, 2)
				So(cfg.FetchTimeout, ShouldEqual, time.Duration(0))
				So(cfg.GroupBy, ShouldEqual, GroupByDataset)
				So(cfg.EmissionMode, ShouldEqual, EmissionBuffered)
				So(cfg.QueryCacheEnabled, ShouldBeTrue)
				So(cfg.QueryCacheSize, ShouldEqual, 256)
				So(cfg.QueryCacheTTL, ShouldEqual, 5*time.Minute)
				So(cfg.CORSAllowedOrigins, ShouldResemble, []string{"*"})
				So(cfg.OTServiceName, ShouldEqual, "dp-table-aggregator")
				So(cfg.OtelEnabled, ShouldBeFalse)
			})

			Convey("Then a second call to config should return the same config", func() {
				newCfg, newErr := Get()
				So(newErr, ShouldBeNil)
				So(newCfg, ShouldResemble, cfg)
			})
		})
	})

	Convey("Given an environment overriding the dataset list with duplicates", t, func() {
		os.Clearenv()
		cfg = nil
		os.Setenv("DATASETS", "ds1,ds2,ds1")
		os.Setenv("EMISSION_MODE", "streaming")
		defer os.Clearenv()

		cfg, err := Get()

		Convey("Then the datasets are deduplicated in their configured order", func() {
			So(err, ShouldBeNil)
			So(cfg.Datasets, ShouldResemble, []string{"ds1", "ds2"})
			So(cfg.EmissionMode, ShouldEqual, EmissionStreaming)
		})
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			WarehouseDriver:      DriverPostgres,
			PostgresURL:          "postgres://localhost/db",
			Datasets:             []string{"ds1"},
			FetchConcurrency:     4,
			DiscoveryConcurrency: 1,
			GroupBy:              GroupByTable,
			EmissionMode:         EmissionBuffered,
		}
	}

	Convey("Given a valid config", t, func() {
		c := valid()

		Convey("Then validation passes", func() {
			So(c.Validate(), ShouldBeNil)
		})

		Convey("Then an unknown driver is rejected", func() {
			c.WarehouseDriver = "oracle"
			So(c.Validate(), ShouldNotBeNil)
		})

		Convey("Then an empty dataset list is rejected", func() {
			c.Datasets = nil
			So(c.Validate(), ShouldNotBeNil)
		})

		Convey("Then a zero fetch concurrency is rejected", func() {
			c.FetchConcurrency = 0
			So(c.Validate(), ShouldNotBeNil)
		})

		Convey("Then an unknown grouping mode is rejected", func() {
			c.GroupBy = "shard"
			So(c.Validate(), ShouldNotBeNil)
		})

		Convey("Then an unknown emission mode is rejected", func() {
			c.EmissionMode = "lazy"
			So(c.Validate(), ShouldNotBeNil)
		})

		Convey("Then an enabled cache without capacity is rejected", func() {
			c.QueryCacheEnabled = true
			c.QueryCacheSize = 0
			So(c.Validate(), ShouldNotBeNil)
		})

		Convey("Then datasets that keep distinct keys once the prefix is dropped are accepted", func() {
			c.DatasetKeyPrefix = "keywords_ranking_data_sheet"
			c.Datasets = []string{"keywords_ranking_data_sheet1", "keywords_ranking_data_sheet2", "keywords_ranking_data_sheet"}
			So(c.Validate(), ShouldBeNil)
		})

		Convey("Then datasets that share a key once the prefix is dropped are rejected", func() {
			c.DatasetKeyPrefix = "keywords_ranking_data_sheet"
			c.Datasets = []string{"keywords_ranking_data_sheet1", "1"}
			err := c.Validate()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, `"1"`)
		})
	})
}

func TestDatasetKey(t *testing.T) {
	Convey("Given a dataset key prefix", t, func() {
		c := &Config{DatasetKeyPrefix: "sheet"}

		Convey("Then config keys match the keys used in responses", func() {
			key := engine.TrimPrefixKey(c.DatasetKeyPrefix)
			for _, id := range []string{"sheet1", "sheet", "other", "sheetsheet", "1"} {
				So(c.DatasetKey(id), ShouldEqual, key(id))
			}
		})
	})

	Convey("Given no dataset key prefix", t, func() {
		c := &Config{}

		Convey("Then datasets keep their full id", func() {
			So(c.DatasetKey("sheet1"), ShouldEqual, "sheet1")
		})
	})
}
