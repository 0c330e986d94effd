package metric

import (
	"log/slog"
	"time"

	"potluck/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func databaseEmptyRead(as *utils.AppState, tickerInterval *time.Duration) {
	databaseEmptyRead := promauto.NewGauge(prometheus.GaugeOpts{
		Name: "potluck_database_empty_read_microsec",
		Help: "The latency of an empty database read in microseconds",
	})
	good := true
	if err := prometheus.Register(databaseEmptyRead); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register potluck_database_empty_read_microsec metric", "error", err)
			good = false
		}
	}
	if good {
		slog.Debug("potluck_database_empty_read_microsec metric registered")
		databaseEmptyRead.Set(0)
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(*tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				switch prometheus.Unregister(databaseEmptyRead) {
				case true:
					slog.Debug("potluck_database_empty_read_microsec metric unregistered")
				case false:
					slog.Warn("potluck_database_empty_read_microsec metric not registered")
				}
				return
			case <-ticker.C:
				latency, err := database(as)
				if err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				databaseEmptyRead.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

func databaseRead(as *utils.AppState, clearTickerInterval *time.Duration) {
	databaseRead := promauto.NewGauge(prometheus.GaugeOpts{
		Name: "potluck_database_read_microsec",
		Help: "The latency of a database read in microseconds",
	})
	good := true
	if err := prometheus.Register(databaseRead); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register potluck_database_read_microsec metric", "error", err)
			good = false
		}
	}
	if good {
		slog.Debug("potluck_database_read_microsec metric registered")
		databaseRead.Set(0)
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(*clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				switch prometheus.Unregister(databaseRead) {
				case true:
					slog.Debug("potluck_database_read_microsec metric unregistered")
				case false:
					slog.Warn("potluck_database_read_microsec metric not registered")
				}
				return
			case latency := <-as.MetricChans.DatabaseRead:
				databaseRead.Set(latency)
				clearTicker.Reset(*clearTickerInterval)
			case <-clearTicker.C:
				databaseRead.Set(0)
			}
		}
	}()
}

func databaseWrite(as *utils.AppState, clearTickerInterval *time.Duration) {
	databaseWrite := promauto.NewGauge(prometheus.GaugeOpts{
		Name: "potluck_database_write_microsec",
		Help: "The latency of a database write in microseconds",
	})
	good := true
	if err := prometheus.Register(databaseWrite); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register potluck_database_write_microsec metric", "error", err)
			good = false
		}
	}
	if good {
		slog.Debug("potluck_database_write_microsec metric registered")
		databaseWrite.Set(0)
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(*clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				switch prometheus.Unregister(databaseWrite) {
				case true:
					slog.Debug("potluck_database_write_microsec metric unregistered")
				case false:
					slog.Warn("potluck_database_write_microsec metric not registered")
				}
				return
			case latency := <-as.MetricChans.DatabaseWrite:
				databaseWrite.Set(latency)
				clearTicker.Reset(*clearTickerInterval)
			case <-clearTicker.C:
				databaseWrite.Set(0)
			}
		}
	}()
}

func changeFeedSubscribers(as *utils.AppState, tickerInterval *time.Duration) {
	changeFeedSubscribers := promauto.NewGauge(prometheus.GaugeOpts{
		Name: "potluck_change_feed_subscribers",
		Help: "The number of clients connected to the change feed",
	})
	good := true
	if err := prometheus.Register(changeFeedSubscribers); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register potluck_change_feed_subscribers metric", "error", err)
			good = false
		}
	}
	if good {
		slog.Debug("potluck_change_feed_subscribers metric registered")
		changeFeedSubscribers.Set(0)
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(*tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				switch prometheus.Unregister(changeFeedSubscribers) {
				case true:
					slog.Debug("potluck_change_feed_subscribers metric unregistered")
				case false:
					slog.Warn("potluck_change_feed_subscribers metric not registered")
				}
				return
			case <-ticker.C:
				changeFeedSubscribers.Set(float64(as.Hub.Count()))
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	databaseEmptyRead(as, &tickerInterval)
	databaseRead(as, &clearTickerInterval)
	databaseWrite(as, &clearTickerInterval)
	changeFeedSubscribers(as, &tickerInterval)
}
