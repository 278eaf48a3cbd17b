package persistence

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

// Observer writes measurement events to InfluxDB.
type Observer struct {
	host   string
	writer *Writer
	now    func() time.Time
}

func NewObserver(host string, w *Writer) *Observer {
	return &Observer{host: host, writer: w, now: time.Now}
}

func (o *Observer) Name() string { return "persistence" }

func (o *Observer) Notify(ev model.Event) {
	signal, p := EventToPoint(o.host, ev, o.now().UTC())
	if p == nil {
		return
	}
	o.writer.Write(signal, p)
}

type InfluxConfig struct {
	URL           string
	Token         string
	Org           string
	Bucket        string
	BatchSize     int
	FlushInterval time.Duration
}

// Open connects the InfluxDB client and returns the writer over its
// non-blocking write API. Close the client when done.
func Open(cfg InfluxConfig, log zerolog.Logger) (influxdb2.Client, *Writer) {
	opts := influxdb2.DefaultOptions()
	if cfg.BatchSize > 0 {
		opts.SetBatchSize(uint(cfg.BatchSize))
	}
	if cfg.FlushInterval > 0 {
		opts.SetFlushInterval(uint(cfg.FlushInterval / time.Millisecond))
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)
	w := NewWriter(client.WriteAPI(cfg.Org, cfg.Bucket), log)
	log.Info().Str("url", cfg.URL).Str("bucket", cfg.Bucket).Msg("influx writer ready")
	return client, w
}
