// server.go
//
// A fanfiction reading tracker data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of fictiondb.
// fictiondb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// fictiondb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with fictiondb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package server

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/fictiondb/internal/config"
	"github.com/localnerve/fictiondb/internal/handlers"
	"github.com/localnerve/fictiondb/internal/middleware"
	"github.com/localnerve/fictiondb/internal/services"
	"gorm.io/gorm"
)

// Options tunes the app for production or tests
type Options struct {
	// RequestLog enables the fiber request logger
	RequestLog bool
	// Metrics registers the prometheus middleware and /metrics
	Metrics bool
	// Swagger serves the API docs at /swagger
	Swagger bool
}

// New builds the fiber app with every route of the service
func New(cfg *config.Config, db *gorm.DB, auth services.Authenticator, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	if opts.RequestLog {
		app.Use(logger.New())
	}
	app.Use(compress.New())

	// Prometheus metrics
	if opts.Metrics {
		prometheus := fiberprometheus.New("fictiondb")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)
	}

	// Swagger documentation
	if opts.Swagger {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	systemHandler := &handlers.SystemHandler{Config: cfg, DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	fandomHandler := &handlers.FandomHandler{DB: db}
	tagHandler := &handlers.TagHandler{DB: db}
	fictionHandler := &handlers.FictionHandler{DB: db}

	// Public routes
	api.Get("/health", systemHandler.Health)
	api.Get("/themes", systemHandler.ListThemes)
	api.Post("/user/signup", userHandler.Signup)
	api.Post("/user/signin", userHandler.Signin)

	authUser := middleware.AuthUser(auth)

	// Account routes
	user := api.Group("/user", authUser)
	user.Get("/me", userHandler.Me)
	user.Patch("/username", userHandler.UpdateUsername)
	user.Patch("/preferences", userHandler.UpdatePreferences)
	user.Patch("/avatar", userHandler.UpdateAvatar)
	user.Delete("/", userHandler.DeleteUser)

	// Dimension routes
	api.Get("/languages", authUser, fandomHandler.ListLanguages)
	fandoms := api.Group("/fandoms", authUser)
	fandoms.Get("/", fandomHandler.ListFandoms)
	fandoms.Post("/", fandomHandler.CreateFandom)
	fandoms.Get("/:id/usage-count", fandomHandler.FandomUsageCount)
	fandoms.Delete("/:id", fandomHandler.DeleteFandom)

	tags := api.Group("/tags", authUser)
	tags.Get("/", tagHandler.ListTags)
	tags.Post("/", tagHandler.CreateTag)
	tags.Get("/:id/usage-count", tagHandler.TagUsageCount)
	tags.Delete("/:id", tagHandler.DeleteTag)

	// Fiction routes, static paths before :id
	fictions := api.Group("/fictions", authUser)
	fictions.Get("/", fictionHandler.ListFictions)
	fictions.Get("/authors", fictionHandler.ListAuthors)
	fictions.Get("/status/:status", fictionHandler.ListByStatus)
	fictions.Get("/:id", fictionHandler.GetFiction)
	fictions.Post("/", fictionHandler.CreateFiction)
	fictions.Patch("/:id", fictionHandler.UpdateFiction)
	fictions.Delete("/:id", fictionHandler.DeleteFiction)

	// 404 handler
	app.Use(handlers.NotFound)

	return app
}
