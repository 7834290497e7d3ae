package stubserver

import (
	"log"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	config "github.com/maheshrc27/postflow-cli/configs"
	"github.com/maheshrc27/postflow-cli/pkg/utils"
	"github.com/robfig/cron"
)

// Server is a development stand-in for the PostFlow backend. It implements
// the full REST contract over an in-memory store so the client can run and
// be integration-tested without the real deployment.
type Server struct {
	cfg       config.Config
	store     *Store
	publisher *Publisher
	app       *fiber.App
	cron      *cron.Cron
}

func New(cfg config.Config) *Server {
	store := NewStore(cfg.SecretKey)
	s := &Server{
		cfg:       cfg,
		store:     store,
		publisher: NewPublisher(store),
		cron:      cron.New(),
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error(err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api")
	api.Post("/auth/register/", s.Register)
	api.Post("/auth/login/", s.Login)

	authed := api.Group("", s.authMiddleware())
	authed.Post("/auth/logout/", s.Logout)
	authed.Get("/auth/profile/", s.GetProfile)
	authed.Put("/auth/profile/", s.UpdateProfile)
	authed.Post("/auth/change-password/", s.ChangePassword)

	authed.Get("/posts/", s.ListPosts)
	authed.Post("/posts/", s.CreatePost)
	authed.Post("/posts/generate_image/", s.GenerateImage)
	authed.Post("/posts/:id/publish/", s.PublishPost)
	authed.Get("/posts/:id/results/", s.PostResults)
	authed.Put("/posts/:id/", s.UpdatePost)
	authed.Delete("/posts/:id/", s.DeletePost)

	authed.Get("/accounts/", s.ListAccounts)
	authed.Post("/accounts/", s.CreateAccount)
	authed.Put("/accounts/:id/", s.UpdateAccount)
	authed.Delete("/accounts/:id/", s.DeleteAccount)

	app.Get("/media/:name", s.ServeMedia)

	s.app = app
	return s
}

// App exposes the fiber app for handler tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	s.cron.AddFunc("@every 0h1m0s", s.publishDuePosts)
	s.cron.Start()
	log.Printf("Stub server listening on %s", s.cfg.StubAddr)
	return s.app.Listen(s.cfg.StubAddr)
}

func (s *Server) Shutdown() error {
	s.cron.Stop()
	return s.app.Shutdown()
}

// publishDuePosts resolves scheduled posts whose time has come. Instagram
// targets always fail here: those credentials are never stored, so a
// scheduled post cannot carry them.
func (s *Server) publishDuePosts() {
	for _, post := range s.store.DueScheduledPosts(time.Now()) {
		accounts := make([]*Account, 0, len(post.PlatformIDs))
		for _, id := range post.PlatformIDs {
			if acc, ok := s.store.AccountByID(post.UserID, id); ok {
				accounts = append(accounts, acc)
			}
		}

		results := s.publisher.Publish(&post.Post, accounts, nil)
		s.store.AppendResults(post.Post.ID, results)
		status, postedAt := resolveStatus(results)
		s.store.SetPostStatus(post.Post.ID, status, postedAt)
	}
}

func (s *Server) authMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing bearer token",
			})
		}

		if s.store.TokenRevoked(tokenString) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token has been revoked",
			})
		}

		claims, err := utils.ValidateToken(s.cfg.SecretKey, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("token", tokenString)
		return c.Next()
	}
}

func getUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}
