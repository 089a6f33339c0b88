package state

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gomodule/redigo/redis"
)

const keyPrefix = "pullwatch:alert:"

// RedisStore keeps alert state in a redis hash per pipeline, for hosts
// where several workers share one suppression history. Construction pings
// the server and fails when it is unreachable, so callers can fall back to
// the in-memory store (state.Open does this). After construction, Load,
// Save and Clear never fail: backend errors are logged and the empty state
// is returned, keeping the alert decision on its safe default.
type RedisStore struct {
	pool   *redis.Pool
	logger *slog.Logger
}

// NewRedis connects to the given address and verifies the server responds.
func NewRedis(addr string, logger *slog.Logger) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is required for the redis backend")
	}

	pool := &redis.Pool{
		MaxIdle:     2,
		IdleTimeout: 4 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr,
				redis.DialConnectTimeout(5*time.Second),
				redis.DialReadTimeout(5*time.Second),
				redis.DialWriteTimeout(5*time.Second),
			)
		},
	}

	conn := pool.Get()
	defer func() { _ = conn.Close() }()
	if _, err := conn.Do("PING"); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	return &RedisStore{pool: pool, logger: logger}, nil
}

// Load reads the pipeline's hash. Any backend error yields the empty state.
func (s *RedisStore) Load(pipelineID string) AlertState {
	conn := s.pool.Get()
	defer func() { _ = conn.Close() }()

	fields, err := redis.StringMap(conn.Do("HGETALL", keyPrefix+pipelineID))
	if err != nil {
		s.logger.Warn("could not load alert state from redis", "pipeline", pipelineID, "error", err)
		return AlertState{PipelineID: pipelineID}
	}

	return AlertState{
		PipelineID:       pipelineID,
		LastErrorMessage: fields["last_error_message"],
		LastAlertTime:    fields["last_alert_time"],
		PipelineStatus:   Status(fields["pipeline_status"]),
	}
}

// Save records a failure.
func (s *RedisStore) Save(pipelineID, errorMessage string, alertTime time.Time, status Status) {
	s.write(pipelineID, errorMessage, alertTime.Format(time.RFC3339), status)
}

// Clear resets the record to empty/success. The hash is rewritten, not
// deleted.
func (s *RedisStore) Clear(pipelineID string) {
	s.write(pipelineID, "", "", StatusSuccess)
}

func (s *RedisStore) write(pipelineID, errorMessage, alertTime string, status Status) {
	conn := s.pool.Get()
	defer func() { _ = conn.Close() }()

	_, err := conn.Do("HSET", keyPrefix+pipelineID,
		"last_error_message", errorMessage,
		"last_alert_time", alertTime,
		"pipeline_status", string(status),
	)
	if err != nil {
		s.logger.Warn("could not write alert state to redis", "pipeline", pipelineID, "error", err)
	}
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.pool.Close()
}
