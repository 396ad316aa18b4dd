package server

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// Rejects requests with 429 once the shared limiter is exhausted. A
// nil limiter lets everything through.
func NewRateLimiter(limiter *rate.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter != nil && !limiter.Allow() {
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
