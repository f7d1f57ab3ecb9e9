package api

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/mileoa/vehicle-accounting/internal/app/config"
	"github.com/mileoa/vehicle-accounting/internal/app/dsn"
	"github.com/mileoa/vehicle-accounting/internal/app/handler"
	"github.com/mileoa/vehicle-accounting/internal/app/middleware"
	"github.com/mileoa/vehicle-accounting/internal/app/repository"
	"github.com/mileoa/vehicle-accounting/internal/app/service"

	"github.com/mileoa/vehicle-accounting/internal/app/auth"
)

// NewRouter - сборка маршрутов поверх готового хендлера.
// Вынесено отдельно от StartServer, чтобы тесты могли поднять роутер
// без PostgreSQL и реального сервера.
func NewRouter(h *handler.Handler, templatesGlob string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.LoadHTMLGlob(templatesGlob)
	r.Static("/static", "static")

	registerRoutes(r, h)
	return r
}

func registerRoutes(r *gin.Engine, h *handler.Handler) {
	// Авторизация (единственные страницы без сессии)
	r.GET("/login/", h.GetLoginPage)
	r.POST("/login/", h.PostLogin)
	r.GET("/accounts/login/", h.GetLoginPage)
	r.POST("/accounts/login/", h.PostLogin)
	r.POST("/logout/", h.Logout)
	r.POST("/accounts/logout/", h.Logout)

	// Веб-страницы машин: всё за сессией, включая экспорт
	vehicles := r.Group("/vehicles")
	vehicles.Use(h.AuthMiddleware.RequireSession())
	{
		vehicles.GET("/", h.GetVehicles)
		vehicles.GET("/create/", h.GetVehicleCreatePage)
		vehicles.POST("/create/", h.CreateVehicle)
		vehicles.GET("/export/", h.ExportVehicles)
		vehicles.GET("/:car_number/", h.GetVehicle)
		vehicles.GET("/:car_number/edit/", h.GetVehicleEditPage)
		vehicles.POST("/:car_number/edit/", h.UpdateVehicle)
		vehicles.GET("/:car_number/delete/", h.GetVehicleDeletePage)
		vehicles.POST("/:car_number/delete/", h.DeleteVehicle)
	}

	// Корень ведёт на список машин (или на логин через middleware)
	r.GET("/", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusFound, "/vehicles/")
	})

	// JSON API с JWT-авторизацией
	r.POST("/api/token/", h.ObtainToken)
	r.POST("/api/token/refresh/", h.RefreshToken)

	apiGroup := r.Group("/api")
	apiGroup.Use(h.AuthMiddleware.RequireAuth())
	{
		apiGroup.GET("/vehicles/", h.GetVehiclesAPI)
		apiGroup.POST("/vehicles/", h.CreateVehicleAPI)
		apiGroup.GET("/vehicles/export/", h.ExportVehiclesAPI)
		apiGroup.GET("/vehicles/:car_number/", h.GetVehicleAPI)
		apiGroup.PUT("/vehicles/:car_number/", h.UpdateVehicleAPI)
		apiGroup.DELETE("/vehicles/:car_number/", h.DeleteVehicleAPI)
		apiGroup.GET("/brands/", h.GetBrandsAPI)
		apiGroup.GET("/enterprises/", h.GetEnterprisesAPI)
	}

	// Swagger документация
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// StartServer - инициализация зависимостей и запуск HTTP(S)-сервера
func StartServer() {
	logrus.Info("Application start up")

	conf, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("error loading config: %v", err)
	}

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		logrus.Fatalf("error initializing repository: %v", err)
	}

	if err := repo.SeedReferenceData(); err != nil {
		logrus.Fatalf("error seeding reference data: %v", err)
	}
	if err := repo.EnsureAdmin(conf.AdminLogin, conf.AdminPassword); err != nil {
		logrus.Fatalf("error creating admin user: %v", err)
	}

	// фоновая чистка истекших сессий
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := repo.DeleteExpiredSessions(); err != nil {
				logrus.Errorf("session cleanup: %v", err)
			}
		}
	}()

	jwtService := auth.NewJWTService(
		conf.JWTSecret,
		conf.JWTAccessTokenExpire,
		conf.JWTRefreshTokenExpire,
	)
	sessions := service.NewSessionService(repo, conf.SessionTTL)
	authMiddleware := middleware.NewAuthMiddleware(sessions, jwtService)

	h := handler.NewHandler(repo, sessions, jwtService, authMiddleware, conf.PageSize)
	r := NewRouter(h, "templates/*.html")

	serverAddress := fmt.Sprintf("%s:%d", conf.ServiceHost, conf.ServicePort)

	if conf.EnableHTTPS {
		logrus.Infof("Starting HTTPS server on %s", serverAddress)

		cert, err := tls.LoadX509KeyPair(conf.CertFile, conf.KeyFile)
		if err != nil {
			logrus.Fatalf("Failed to load certificate: %v", err)
		}

		srv := &http.Server{
			Addr:    serverAddress,
			Handler: r,
			TLSConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			},
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}
		if err := srv.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start HTTPS server: %v", err)
		}
	} else {
		logrus.Infof("Starting HTTP server on %s", serverAddress)
		if err := r.Run(serverAddress); err != nil {
			logrus.Fatal(err)
		}
	}
	logrus.Info("Application terminated")
}
