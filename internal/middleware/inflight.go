package middleware

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// inFlight counts requests currently being served. Incremented on every
// incoming call and decremented on completion or failure, so overlapping
// calls keep the count non-zero until the last one finishes.
var inFlight atomic.Int64

// CountInFlight tracks the number of requests currently in flight
func CountInFlight() gin.HandlerFunc {
	return func(c *gin.Context) {
		inFlight.Add(1)
		defer inFlight.Add(-1)
		c.Next()
	}
}

// InFlightCount returns the current in-flight request count
func InFlightCount() int64 {
	return inFlight.Load()
}
