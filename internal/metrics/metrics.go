package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_tokens_issued_total",
		Help: "Magic-link tokens issued.",
	})

	TokenRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_redemptions_total",
		Help: "Magic-link redemption attempts by outcome.",
	}, []string{"outcome"})

	LoginRateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_rate_limited_total",
		Help: "Login requests refused by the rate limiter.",
	}, []string{"scope"})

	LessonCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progress_lesson_completions_total",
		Help: "Lesson completion requests that committed.",
	})
)

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
