package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/api/handler"
	"github.com/rsaputelli/PRS/internal/api/middleware"
	"github.com/rsaputelli/PRS/pkg/jwt"
	"github.com/rsaputelli/PRS/pkg/metrics"
)

// directoryRoutes the CRUD surface every directory shares.
type directoryRoutes interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	SetActive(c *gin.Context)
	Delete(c *gin.Context)
}

// mountDirectory reads go on read, writes on write.
func mountDirectory(read, write *gin.RouterGroup, path string, h directoryRoutes) {
	r := read.Group(path)
	{
		r.GET("", h.List)
		r.GET("/:id", h.Get)
	}
	w := write.Group(path)
	{
		w.POST("", h.Create)
		w.PUT("/:id", h.Update)
		w.PUT("/:id/active", h.SetActive)
		w.DELETE("/:id", h.Delete)
	}
}

// Setup builds the gin engine. admin gates every write route plus client
// and money reads; rl may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, admin middleware.AdminChecker, rl middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rl, cfg.Redis.RateLimit, cfg.Redis.RateWindow))
	{
		// public: clicked from mail clients
		v1.GET("/email/track/:token", h.Email.Track)

		// any valid token: schedule and directory reads
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr))

		// booking office: every write, client and money data, outbound mail
		office := authorized.Group("")
		office.Use(middleware.AdminOnly(admin, logger))

		authorized.GET("/me", h.Profile.Me)

		gigsRead := authorized.Group("/gigs")
		{
			gigsRead.GET("", h.Gig.ListGigs)
			gigsRead.GET("/:id", h.Gig.GetGig)
		}

		gigs := office.Group("/gigs")
		{
			gigs.POST("", h.Gig.CreateGig)
			gigs.PUT("/:id", h.Gig.UpdateGig)
			gigs.PUT("/:id/deposits", h.Gig.ReplaceDeposits)
			gigs.PUT("/:id/staffing", h.Gig.UpdateStaffing)
			gigs.GET("/:id/merge-fields", h.Contract.MergeFields)
			gigs.POST("/:id/contract/render", h.Contract.Render)
			gigs.POST("/:id/venue-confirm", h.Confirm.VenueConfirm)
			gigs.POST("/:id/player-confirms", h.Confirm.PlayerConfirms)
			gigs.POST("/:id/agent-confirm", h.Confirm.AgentConfirm)
			gigs.POST("/:id/soundtech-confirm", h.Confirm.SoundTechConfirm)
			gigs.GET("/:id/payments", h.Payment.ListPayments)
			gigs.POST("/:id/payments", h.Payment.RecordPayment)
			gigs.PUT("/:id/closeout", h.Payment.Closeout)
			gigs.POST("/:id/closeout/reopen", h.Payment.Reopen)
		}
		office.DELETE("/payments/:id", h.Payment.DeletePayment)

		mountDirectory(authorized, office, "/venues", h.Venue)
		mountDirectory(authorized, office, "/agents", h.Agent)
		mountDirectory(authorized, office, "/musicians", h.Musician)
		mountDirectory(authorized, office, "/sound-techs", h.SoundTech)
		authorized.GET("/people", h.People.ListPeople)

		authorized.GET("/reports/understaffed", h.Report.Understaffed)
		office.GET("/reports/1099", h.Report.Report1099)
		office.GET("/reports/1099/export", h.Report.Export1099)

		adminGroup := office.Group("/admin")
		{
			adminGroup.GET("/gigs/:id/delete-preview", h.Gig.DeletePreview)
			adminGroup.DELETE("/gigs/:id", h.Gig.DeleteGig)
			adminGroup.GET("/staffing-subscribers", h.Staffing.ListSubscribers)
			adminGroup.POST("/staffing-subscribers", h.Staffing.UpsertSubscriber)
			adminGroup.POST("/staffing-digest", h.Staffing.SendDigest)
			adminGroup.GET("/staffing-digest/logs", h.Staffing.ListLogs)
			adminGroup.GET("/profiles", h.Profile.ListProfiles)
			adminGroup.PUT("/profiles/:id/role", h.Profile.UpdateRole)
		}
	}

	return r
}
