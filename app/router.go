// Package app wires every endpoint to its handler
package app

import (
	"bitwise74/caption-api/app/auth"
	"bitwise74/caption-api/app/caption"
	"bitwise74/caption-api/app/history"
	"bitwise74/caption-api/app/image"
	"bitwise74/caption-api/app/root"
	"bitwise74/caption-api/db"
	"bitwise74/caption-api/internal"
	"bitwise74/caption-api/internal/service"
	"bitwise74/caption-api/pkg/middleware"
	"bitwise74/caption-api/pkg/security"
	"fmt"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

func NewRouter() (*gin.Engine, error) {
	makeLogger()

	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	tokens := security.NewTokens(
		viper.GetString("jwt.secret"),
		time.Duration(viper.GetInt("jwt.user_ttl_minutes"))*time.Minute,
		time.Duration(viper.GetInt("jwt.guest_ttl_minutes"))*time.Minute,
	)

	d := &internal.Deps{
		DB:       database,
		Hasher:   security.NewHasher(),
		Tokens:   tokens,
		Resolver: security.NewResolver(tokens),
		Captioner: service.NewHTTPCaptioner(
			viper.GetString("inference.endpoint"),
			viper.GetString("inference.model_version"),
			time.Duration(viper.GetInt("inference.timeout_seconds"))*time.Second,
		),
		SecureCookies: viper.GetBool("host.ssl.enabled"),
		GuestIDLength: viper.GetInt("guest.id_length"),
	}

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("requestID", v))
				}

				if v := c.GetUint("userID"); v != 0 {
					fields = append(fields, zap.Uint("userID", v))
				}

				if v := c.GetString("guestID"); v != "" {
					fields = append(fields, zap.String("guestID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	identity := middleware.NewIdentityMiddleware(d.Resolver)
	requireUser := middleware.NewRequireUserMiddleware(d.Resolver)
	maxUploadSize := viper.GetInt64("upload.max_size")

	m := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a user token
		m.GET("/validate", requireUser, root.Validate)
	}

	a := m.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/auth/guest		-> Hands out (or repeats) a guest identity
		a.POST("/guest", func(c *gin.Context) { auth.GuestLogin(c, d) })

		// POST /api/auth/register	-> Registers a new user and merges guest history
		a.POST("/register", func(c *gin.Context) { auth.Register(c, d) })

		// POST /api/auth/login 	-> Logs in a user and merges guest history
		a.POST("/login", func(c *gin.Context) { auth.Login(c, d) })
	}

	cp := m.Group("/caption", identity, middleware.BodySizeLimiter(maxUploadSize))
	{
		// POST /api/caption		-> Captions an uploaded image and stores it
		cp.POST("", func(c *gin.Context) { caption.Create(c, d) })
	}

	h := m.Group("/history", identity)
	{
		// GET /api/history		-> Lists the caller's caption history
		h.GET("", func(c *gin.Context) { history.List(c, d) })
	}

	im := m.Group("/images")
	{
		// GET /api/images/:id		-> Serves stored image bytes
		im.GET("/:id", cacheFor(5*60), func(c *gin.Context) { image.Serve(c, d) })
	}

	return router, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
