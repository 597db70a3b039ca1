package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"jobboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// UserIDLocal is the fiber.Ctx local the auth middleware stores the caller's
// user id under.
const UserIDLocal = "userID"

// ErrLimiterUnavailable is returned when an enabled limiter has no store.
var ErrLimiterUnavailable = errors.New("rate limit store unavailable")

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// Rule is a named request budget per caller and window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Budgets for the anonymous entry points and the write paths that fan out
// notifications.
var (
	RegisterRule  = Rule{Name: "register", Limit: 5, Window: 10 * time.Minute}
	LoginRule     = Rule{Name: "login", Limit: 10, Window: 5 * time.Minute}
	ApplyRule     = Rule{Name: "apply", Limit: 20, Window: time.Hour}
	ComplaintRule = Rule{Name: "complaint", Limit: 10, Window: time.Hour}
)

// Limiter counts requests in fixed Redis windows keyed rl:<rule>:<caller>.
// A disabled limiter admits everything.
type Limiter struct {
	rdb     *redis.Client
	enabled bool
	policy  FailPolicy
}

// NewLimiter returns a FailOpen limiter backed by rdb.
func NewLimiter(rdb *redis.Client, enabled bool) *Limiter {
	return &Limiter{rdb: rdb, enabled: enabled, policy: FailOpen}
}

// WithPolicy returns a copy of l using policy.
func (l *Limiter) WithPolicy(policy FailPolicy) *Limiter {
	cp := *l
	cp.policy = policy
	return &cp
}

// Allow records one request by caller against rule. When the budget is
// spent it also returns how long until the window resets.
func (l *Limiter) Allow(ctx context.Context, rule Rule, caller string) (bool, time.Duration, error) {
	if !l.enabled {
		return true, 0, nil
	}
	if l.rdb == nil {
		return false, 0, ErrLimiterUnavailable
	}

	key := fmt.Sprintf("rl:%s:%s", rule.Name, caller)
	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if cnt == 1 {
		l.rdb.Expire(ctx, key, rule.Window)
	}
	if cnt <= int64(rule.Limit) {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = rule.Window
	}
	return false, ttl, nil
}

// Handler enforces rule per authenticated user, falling back to the client
// IP on anonymous routes.
func (l *Limiter) Handler(rule Rule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := "ip:" + c.IP()
		if uid := c.Locals(UserIDLocal); uid != nil {
			caller = fmt.Sprintf("user:%v", uid)
		}

		allowed, retryAfter, err := l.Allow(c.UserContext(), rule, caller)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limiter degraded",
				"rule", rule.Name, "policy", l.policy, "error", err.Error())
			if l.policy == FailClosed {
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Message: "Service temporarily unavailable",
				})
			}
			return c.Next()
		}
		if !allowed {
			RateLimited.WithLabelValues(rule.Name).Inc()
			appErr := models.NewRateLimitError(retryAfter)
			c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(appErr.Fields["retryAfter"].(int64), 10))
			return models.RespondError(c, appErr)
		}
		return c.Next()
	}
}
