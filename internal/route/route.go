package route

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/intrpom/Kurzy-sub001/config"
	"github.com/intrpom/Kurzy-sub001/internal/admin"
	"github.com/intrpom/Kurzy-sub001/internal/login"
	"github.com/intrpom/Kurzy-sub001/internal/logout"
	"github.com/intrpom/Kurzy-sub001/internal/me"
	"github.com/intrpom/Kurzy-sub001/internal/metrics"
	"github.com/intrpom/Kurzy-sub001/internal/middleware"
	"github.com/intrpom/Kurzy-sub001/internal/pkg"
	"github.com/intrpom/Kurzy-sub001/internal/progress"
	"github.com/intrpom/Kurzy-sub001/internal/ratelimit"
	"github.com/intrpom/Kurzy-sub001/internal/token"
	"github.com/intrpom/Kurzy-sub001/internal/user"
	"github.com/intrpom/Kurzy-sub001/internal/verify"
	authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"
)

// Dependencies are the long-lived handles the router wires into features.
type Dependencies struct {
	Config *config.AppConfig
	DB     *gorm.DB
	Redis  redis.UniversalClient
	Codec  *authsdk.Codec
	Mailer login.Mailer
	Logger *slog.Logger
}

func initRoute(r *gin.Engine, deps Dependencies) {
	conf := deps.Config

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", health(deps.DB, deps.Redis))
	r.GET("/metrics", metrics.Handler())

	users := user.NewUserRepository(deps.DB)
	tokens := token.NewTokenService(users, token.NewTokenRepository(deps.DB),
		token.WithTTL(conf.Token.TTL),
		token.WithMaxLive(conf.Token.MaxLive),
	)
	progressService := progress.NewProgressService(progress.NewProgressRepository(deps.DB))

	cookies := pkg.NewCookieHelper(pkg.CookieConfig{Domain: conf.Session.Domain, Secure: conf.Session.Secure})
	guard := middleware.NewGuard(deps.Codec, cookies, conf.Routes.LoginPath, conf.Routes.HomePath)

	loginService := login.NewLoginService(tokens, deps.Mailer,
		ratelimit.NewLimiter(deps.Redis, conf.RateLimit.PerEmail, conf.RateLimit.Window),
		ratelimit.NewLimiter(deps.Redis, conf.RateLimit.PerIP, conf.RateLimit.Window),
		login.Config{BaseURL: conf.Server.BaseURL, ExposeURL: !conf.Server.IsProduction()},
	)
	progressHandler := progress.NewProgressHandler(progressService)

	apiV1 := r.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		login.RegisterRoutes(authGroup, login.NewLoginHandler(loginService))
		verify.RegisterRoutes(authGroup, verify.NewVerifyHandler(tokens, deps.Codec, cookies))
		me.RegisterRoutes(authGroup, me.NewMeHandler(deps.Codec, cookies))
		logout.RegisterRoutes(authGroup, logout.NewLogoutHandler(cookies))

		progress.RegisterRoutes(apiV1, progressHandler, guard.RequireAPI(""))
		admin.RegisterRoutes(apiV1, admin.NewAdminHandler(admin.NewAdminService(users, progressService)), guard, users)
	}

	progress.RegisterPageRoutes(r, progressHandler, guard.RequirePage(""))
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(deps.Logger))

	allowedOrigins := deps.Config.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	// cookies travel cross-origin from the frontend, so credentials are allowed
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	initRoute(r, deps)

	return r
}

func health(db *gorm.DB, rdb redis.UniversalClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok", "redis": "ok"}
		healthy := true
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "unavailable"
			healthy = false
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unavailable"
			healthy = false
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
	}
}
