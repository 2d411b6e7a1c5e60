package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/adapters/game"
	"github.com/dkeye/Arena/internal/config"
	"github.com/dkeye/Arena/internal/core"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware mints a stable per-browser token. It is the
// transport-assigned connection identity every game event is keyed by.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, directory *core.Directory, ctl *game.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ArenaSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	lobby := &LobbyHandlers{Directory: directory, DefaultCap: cfg.MaxPlayers}
	api := r.Group("/api")
	api.POST("/rooms", lobby.CreateRoom)
	api.GET("/rooms", lobby.ListRooms)

	r.GET(game.NamespacePrefix+"/:room", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Str("room", c.Param("room")).Msg("game channel endpoint hit")
		ctl.HandleGame(ctx, c)
	})

	return r
}
