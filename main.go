package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"quiz-platform/internal/cache"
	"quiz-platform/internal/config"
	"quiz-platform/internal/db"
	"quiz-platform/internal/event"
	"quiz-platform/internal/handlers"
	"quiz-platform/internal/repository"
	"quiz-platform/internal/service"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	if cfg.Mongo.URI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(cfg.Mongo.URI)
	defer db.Disconnect()

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, events will not be published")
	}

	// Redis cooldown cache
	var cooldownCache service.CooldownCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewCooldownCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		cooldownCache = redisCache
	} else {
		log.Println("Redis not configured, cooldown checks will always hit MongoDB")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.Origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database(cfg.Mongo.Database)

	quizRepo := repository.NewQuizRepository(database)
	attemptRepo := repository.NewAttemptRepository(database)
	userRepo := repository.NewUserRepository(database)

	quizService := service.NewQuizService(quizRepo, attemptRepo)
	quizHandler := handlers.NewQuizHandler(quizService)

	submissionService := service.NewSubmissionService(quizService, attemptRepo, cooldownCache)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)

	importService := service.NewImportService(userRepo)
	importHandler := handlers.NewImportHandler(importService)

	setupQuizRoutes(r, quizHandler, submissionHandler, publisher)

	adminUsers := r.Group("/api/users", handlers.RequireUser(), handlers.RequireAdmin())
	{
		adminUsers.POST("/import", func(c *gin.Context) {
			importHandler.ImportUsers(c)
			if publisher != nil {
				publisher.Publish(event.UsersImported, gin.H{
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
	}

	r.Run(":" + cfg.Server.Port)
}

func setupQuizRoutes(r *gin.Engine, quizHandler *handlers.QuizHandler, submissionHandler *handlers.SubmissionHandler, publisher *event.EventPublisher) {
	quizzes := r.Group("/api/quizzes")

	// Public catalog
	quizzes.GET("/", quizHandler.ListQuizzes)
	quizzes.GET("/:id", quizHandler.GetQuiz)

	// Student routes
	student := quizzes.Group("", handlers.RequireUser())
	{
		// Restricted path: cooldown applies.
		student.POST("/:id/submit", func(c *gin.Context) {
			submissionHandler.Submit(c)
			if publisher != nil {
				key := event.AttemptSubmitted
				if c.GetBool("attempt_terminated") {
					key = event.AttemptTerminated
				}
				publisher.Publish(key, gin.H{
					"quiz_id":   c.Param("id"),
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})

		// Legacy path: no cooldown. Kept deliberately as an override.
		student.POST("/:id/answer", func(c *gin.Context) {
			submissionHandler.SubmitLegacy(c)
			if publisher != nil {
				key := event.AttemptSubmitted
				if c.GetBool("attempt_terminated") {
					key = event.AttemptTerminated
				}
				publisher.Publish(key, gin.H{
					"quiz_id":    c.Param("id"),
					"user_id":    c.GetHeader("X-User-ID"),
					"restricted": false,
					"timestamp":  time.Now(),
				})
			}
		})

		student.GET("/:id/last-submission", submissionHandler.LastSubmission)
		student.GET("/:id/check-attempt", submissionHandler.CheckAttempt)
	}

	// Admin routes
	admin := quizzes.Group("", handlers.RequireUser(), handlers.RequireAdmin())
	{
		admin.GET("/admin", quizHandler.ListQuizzesWithCounts)
		admin.GET("/:id/answers", submissionHandler.ListQuizAttempts)

		admin.POST("/", func(c *gin.Context) {
			quizHandler.CreateQuiz(c)
			if publisher != nil {
				publisher.Publish(event.QuizCreated, gin.H{
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
		admin.PUT("/:id", func(c *gin.Context) {
			quizHandler.UpdateQuiz(c)
			if publisher != nil {
				publisher.Publish(event.QuizUpdated, gin.H{
					"quiz_id":   c.Param("id"),
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
		admin.DELETE("/:id", func(c *gin.Context) {
			quizHandler.DeleteQuiz(c)
			if publisher != nil {
				publisher.Publish(event.QuizDeleted, gin.H{
					"quiz_id":   c.Param("id"),
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
		admin.POST("/:id/questions", quizHandler.AddQuestion)
		admin.DELETE("/:id/questions/:index", quizHandler.RemoveQuestion)
	}
}
