package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=5000"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	UploadDir      string `env:"UPLOAD_DIR,default=uploads"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL"`

	PersistTimeout       time.Duration `env:"PERSIST_TIMEOUT,default=5s"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=10s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	LatencyThreshold     time.Duration `env:"LATENCY_THRESHOLD,default=500ms"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=16"`
	MaxRoomMembers       int           `env:"MAX_ROOM_MEMBERS,default=0"`
	MaxUploadBytes       int64         `env:"MAX_UPLOAD_BYTES,default=10485760"`

	AuthSecret        string        `env:"AUTH_SECRET"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	DebugPort int `env:"DEBUG_PORT,default=0"`

	PingPeriod    time.Duration `env:"PING_PERIOD,default=30s"`
	PongWait      time.Duration `env:"PONG_WAIT,default=60s"`
	WriteWait     time.Duration `env:"WRITE_WAIT,default=10s"`
	MaxFrameBytes int64         `env:"MAX_FRAME_BYTES,default=65536"`
}

// Validate catches combinations go-env cannot express with tags.
func (c Config) Validate() error {
	if c.PingPeriod >= c.PongWait {
		return fmt.Errorf("PING_PERIOD (%s) must be shorter than PONG_WAIT (%s)", c.PingPeriod, c.PongWait)
	}
	if c.PersistTimeout <= 0 {
		return fmt.Errorf("PERSIST_TIMEOUT must be positive, got %s", c.PersistTimeout)
	}
	if c.MaxRoomMembers < 0 {
		return fmt.Errorf("MAX_ROOM_MEMBERS must not be negative, got %d", c.MaxRoomMembers)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// BaseURL is where uploaded images are served from. It falls back to the
// listening address when PUBLIC_BASE_URL is not set.
func (c Config) BaseURL() string {
	if c.PublicBaseURL != "" {
		return c.PublicBaseURL
	}
	host := c.Host
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Port)
}
