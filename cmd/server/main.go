package main

import (
	"log"

	_ "tasktracker/docs"
	"tasktracker/internal/config"
	"tasktracker/internal/server"
)

// @title           Task Tracker API
// @version         1.0
// @description     Members create tasks, assign them, complete them per assignee, and ask admins for help.

// @tag.name         Auth
// @tag.description  Sign-up (plain users only), login and logout
// @tag.name         Members
// @tag.description  Member directory; admins manage roles
// @tag.name         Tasks
// @tag.description  Task lifecycle and listing
// @tag.name         Assignments
// @tag.description  Assignees and per-assignee completion
// @tag.name         Help Requests
// @tag.description  Questions addressed to a specific admin

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Member token returned by POST /api/auth/login, sent as "Bearer <token>". It carries the member id and role and expires after JWT_EXPIRY_HOURS.

// @schemes http
func main() {
	cfg := config.Load()

	limiter := "in-process"
	if cfg.RateLimit.RedisURL != "" {
		limiter = "redis"
	}
	log.Printf("🔧 Database %s:%s/%s, migrations on start: %t, auth limit %d/min (%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Name,
		cfg.Database.RunMigrations, cfg.RateLimit.AuthPerMinute, limiter)

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
