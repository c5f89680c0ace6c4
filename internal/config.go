package internal

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=5001"`
	GrpcPort             int           `env:"GRPC_PORT,default=5002"`
	DebugPort            int           `env:"DEBUG_PORT,default=8081"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	TelemetryBufferSize  int           `env:"TELEMETRY_BUFFER_SIZE,default=1024"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PongTimeout          time.Duration `env:"PONG_TIMEOUT,default=60s"`
	PingInterval         time.Duration `env:"PING_INTERVAL,default=54s"`
	MaxFrameSize         int64         `env:"MAX_FRAME_SIZE,default=4096"`
	RelayRate            float64       `env:"RELAY_RATE,default=10"`
	RelayBurst           int           `env:"RELAY_BURST,default=20"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`
	JwtSecret            string        `env:"JWT_SECRET"`
	AllowPlainIdentity   bool          `env:"ALLOW_PLAIN_IDENTITY,default=true"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	JournalTTL           time.Duration `env:"JOURNAL_TTL,default=24h"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=10s"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=10"`
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	origins := lo.Map(strings.Split(c.AllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	})
	return lo.Compact(origins)
}
