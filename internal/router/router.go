package router

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/blog-backend/config"
	"github.com/inkpress/blog-backend/internal/app/controller"
	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/i18n"
	"github.com/inkpress/blog-backend/internal/metrics"
	"github.com/inkpress/blog-backend/internal/middleware"
)

// loginThrottleBurst is how many login requests one IP may send at once.
const loginThrottleBurst = 5

type Router struct {
	authController    *controller.AuthController
	webAuthController *controller.WebAuthController
	mediaController   *controller.MediaController
	healthController  *controller.HealthController
	authMiddleware    *middleware.AuthMiddleware
	sessionMiddleware *middleware.SessionMiddleware
	metrics           *metrics.Metrics
	templates         *template.Template
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	webAuthController *controller.WebAuthController,
	mediaController *controller.MediaController,
	healthController *controller.HealthController,
	authMiddleware *middleware.AuthMiddleware,
	sessionMiddleware *middleware.SessionMiddleware,
	m *metrics.Metrics,
	templates *template.Template,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		webAuthController: webAuthController,
		mediaController:   mediaController,
		healthController:  healthController,
		authMiddleware:    authMiddleware,
		sessionMiddleware: sessionMiddleware,
		metrics:           m,
		templates:         templates,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()
	router.SetHTMLTemplate(r.templates)

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(r.metrics.Middleware())
	router.Use(middleware.Locale(i18n.DefaultTag(r.config.App.Locale), r.config.Session.Secure))

	router.GET("/health", r.healthController.Health)
	router.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	r.setupAPI(router)
	r.setupWeb(router)

	return router
}

func (r *Router) setupAPI(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(middleware.CORS(r.config.CORS.AllowedOrigins))

	api.GET("/health", r.healthController.Health)

	auth := api.Group("/auth")
	{
		auth.POST("/register", r.authController.Register)
		auth.POST("/login", middleware.Throttle(r.config.Auth.LoginThrottle, loginThrottleBurst), r.authController.Login)
		auth.POST("/forgot-password", r.authController.ForgotPassword)
		auth.POST("/reset-password", r.authController.ResetPassword)
	}

	authenticated := auth.Group("")
	authenticated.Use(r.authMiddleware.Authenticate())
	{
		authenticated.GET("/user", r.authController.User)
		authenticated.POST("/logout", r.authController.Logout)
		authenticated.POST("/logout-all", r.authController.LogoutAll)
		authenticated.POST("/refresh", r.authController.Refresh)
		authenticated.GET("/tokens", r.authController.Tokens)
		authenticated.DELETE("/tokens/:id", r.authController.RevokeToken)

		write := r.authMiddleware.RequireAbility(model.AbilityWrite)
		authenticated.PUT("/profile", write, r.authController.UpdateProfile)
		authenticated.PUT("/password", write, r.authController.ChangePassword)
	}

	media := api.Group("/media")
	media.Use(r.authMiddleware.Authenticate())
	{
		media.GET("", r.authMiddleware.RequireAbility(model.AbilityRead), r.mediaController.List)
		media.POST("/uploads", r.authMiddleware.RequireAbility(model.AbilityWrite), r.mediaController.CreateUpload)
		media.DELETE("/:id", r.authMiddleware.RequireAbility(model.AbilityWrite), r.mediaController.Delete)
	}
}

func (r *Router) setupWeb(router *gin.Engine) {
	sm := r.sessionMiddleware
	ctrl := r.webAuthController

	web := router.Group("")
	web.Use(sm.StartSession(), sm.VerifyCSRF())

	web.GET("/", ctrl.Home)

	guest := web.Group("")
	guest.Use(sm.Guest("/dashboard"))
	{
		guest.GET("/login", ctrl.ShowLogin)
		guest.POST("/login", middleware.Throttle(r.config.Auth.LoginThrottle, loginThrottleBurst), ctrl.Login)
		guest.GET("/register", ctrl.ShowRegister)
		guest.POST("/register", ctrl.Register)
		guest.GET("/forgot-password", ctrl.ShowForgotPassword)
		guest.POST("/forgot-password", ctrl.ForgotPassword)
		guest.GET("/reset-password/:token", ctrl.ShowResetPassword)
		guest.POST("/reset-password", ctrl.ResetPassword)
	}

	signedIn := web.Group("")
	signedIn.Use(sm.Authenticated("/login"))
	{
		signedIn.GET("/dashboard", ctrl.Dashboard)
		signedIn.POST("/logout", ctrl.Logout)
	}
}
