package main

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/keerthana1830/Lacteva/config"
	"github.com/keerthana1830/Lacteva/controllers"
	"github.com/keerthana1830/Lacteva/middlewares"
	"github.com/keerthana1830/Lacteva/mlclient"
)

func main() {
	if err := config.Load(); err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if err := config.InitStore(); err != nil {
		logrus.WithError(err).Fatal("failed to initialize store")
	}

	controllers.ML = mlclient.New(config.C.MLServiceURL, config.C.MLTimeout)

	// Flip silent devices to offline once a minute.
	sched := cron.New()
	sched.AddFunc("@every 1m", controllers.SweepOfflineDevices)
	sched.Start()
	defer sched.Stop()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(config.C.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Public routes
	r.POST("/signup", controllers.Signup)
	r.POST("/login", controllers.Login)
	r.GET("/healthz", controllers.Healthz)

	// Protected routes using auth middleware
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	auth.GET("/ws", controllers.HandleWebSocket)

	auth.GET("/api/profile", controllers.GetProfile)
	auth.PUT("/api/profile/preferences", controllers.UpdatePreferences)
	auth.GET("/api/users", controllers.GetUsers)
	auth.POST("/api/users/promote", controllers.PromoteUser)

	auth.POST("/api/readings", controllers.IngestReading)
	auth.POST("/api/readings/import", controllers.ImportCSV)
	auth.GET("/api/readings", controllers.GetReadings)
	auth.GET("/api/readings/latest", controllers.GetLatestReading)
	auth.GET("/api/readings/export", controllers.ExportCSV)
	auth.PUT("/api/readings/:id", controllers.UpdateReading)
	auth.DELETE("/api/readings/:id", controllers.DeleteReading)
	auth.DELETE("/api/readings", controllers.DeleteAllReadings)

	auth.GET("/api/devices", controllers.ListDevices)
	auth.POST("/api/devices", controllers.CreateDevice)
	auth.GET("/api/devices/:id", controllers.GetDevice)
	auth.PUT("/api/devices/:id", controllers.UpdateDevice)
	auth.DELETE("/api/devices/:id", controllers.DeleteDevice)
	auth.PUT("/api/devices/:id/thresholds", controllers.UpdateThresholds)
	auth.POST("/api/devices/:id/calibrate", controllers.CalibrateDevice)

	auth.GET("/api/alerts", controllers.GetAlerts)
	auth.GET("/api/alerts/count", controllers.GetAlertCount)
	auth.POST("/api/alerts/:id/ack", controllers.AcknowledgeAlert)

	auth.POST("/api/analysis/batch", controllers.RunBatchAnalysis)
	auth.GET("/api/analysis", controllers.ListBatchAnalyses)

	auth.GET("/api/ml/status", controllers.MLStatus)
	auth.GET("/api/ml/model-info", controllers.MLModelInfo)
	auth.POST("/api/ml/retrain", controllers.Retrain)

	logrus.WithField("port", config.C.Port).Info("starting Lacteva API")
	if err := r.Run(":" + config.C.Port); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
