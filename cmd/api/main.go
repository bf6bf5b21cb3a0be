package main

import (
	"log"
	"time"

	"github.com/anjiri1684/assessment_engine/database"
	"github.com/anjiri1684/assessment_engine/handlers"
	"github.com/anjiri1684/assessment_engine/jobs"
	"github.com/anjiri1684/assessment_engine/models"
	"github.com/anjiri1684/assessment_engine/notifications"
	"github.com/anjiri1684/assessment_engine/routes"
	"github.com/anjiri1684/assessment_engine/services"
	"github.com/anjiri1684/assessment_engine/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	notifications.InitEmailService()

	store := database.NewGormStore(database.DB)
	events := websocket.Sink{}

	graderSvc := services.NewGrader(store, events)
	attemptSvc := services.NewAttemptService(store, graderSvc, events)
	reportSvc := services.NewReportService(store)
	graderSvc.OnGraded(notifyGraded(store, reportSvc))

	handlers.Init(attemptSvc, graderSvc)
	jobs.Init(attemptSvc, graderSvc)

	c := cron.New()
	c.AddFunc("* * * * *", jobs.SweepOverdueAttempts)
	c.AddFunc("* * * * *", jobs.RecoverInterruptedGrading)
	c.AddFunc("0 * * * *", jobs.SweepAbandonedAttempts)
	go c.Start()
	log.Println("✅ Cron jobs for attempt sweeps scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Assessment Engine",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Assessment Engine API",
		})
	})

	routes.AuthRoutes(app)
	routes.AssessmentRoutes(app)
	routes.AttemptRoutes(app)
	routes.GradingRoutes(app)
	routes.UploadRoutes(app)

	go websocket.RunHub()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Println("✅ Server is running on port 8080")
	err := app.Listen(":8080")
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}

// notifyGraded builds the finalize hook: render and upload the score report,
// then email the learner. Runs off the request path; a failed report still
// sends the result email without a link.
func notifyGraded(store services.Store, reports *services.ReportService) func(*models.Submission) {
	return func(sub *models.Submission) {
		go func() {
			reportURL, err := reports.GenerateScoreReport(sub)
			if err != nil {
				log.Printf("🔥 Failed to generate score report for submission %s: %v", sub.ID, err)
			}

			user, err := store.GetUser(sub.UserID)
			if err != nil || user == nil {
				log.Printf("🔥 Failed to load user for result email (submission %s): %v", sub.ID, err)
				return
			}
			assessment, err := store.GetAssessment(sub.AssessmentID)
			if err != nil || assessment == nil {
				log.Printf("🔥 Failed to load assessment for result email (submission %s): %v", sub.ID, err)
				return
			}

			notifications.SendResultEmail(user.FullName, user.Email, assessment.Title,
				sub.TotalScore, sub.Percentage, sub.Passed, reportURL)
		}()
	}
}
