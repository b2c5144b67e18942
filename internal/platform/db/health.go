package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const healthPingTimeout = 5 * time.Second

// PoolSnapshot is a point-in-time view of connection pool utilization,
// reported by the database health endpoint.
type PoolSnapshot struct {
	Total     int32  `json:"total"`
	Idle      int32  `json:"idle"`
	InUse     int32  `json:"in_use"`
	Max       int32  `json:"max"`
	WaitCount int64  `json:"wait_count"`
	WaitTime  string `json:"wait_time"`
}

type healthResponse struct {
	Status string       `json:"status"`
	Error  string       `json:"error,omitempty"`
	Pool   PoolSnapshot `json:"pool"`
}

// SnapshotPool reads the pool's counters into a PoolSnapshot.
func SnapshotPool(pool *pgxpool.Pool) PoolSnapshot {
	stat := pool.Stat()
	return PoolSnapshot{
		Total:     stat.TotalConns(),
		Idle:      stat.IdleConns(),
		InUse:     stat.AcquiredConns(),
		Max:       stat.MaxConns(),
		WaitCount: stat.AcquireCount(),
		WaitTime:  stat.AcquireDuration().String(),
	}
}

// HealthHandler backs the database health endpoint: it pings the database
// with a short timeout and reports pool utilization either way.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()

		resp := healthResponse{Status: "healthy", Pool: SnapshotPool(pool)}
		if err := pool.Ping(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
		return c.JSON(http.StatusOK, resp)
	}
}
