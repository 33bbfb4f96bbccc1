// Command createadmin creates or promotes an admin account.
//
//	go run ./cmd/createadmin -email admin@example.com -password 's3cret-pass' -name Admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	config "github.com/attendance_system/configs"
	"github.com/attendance_system/internal/models"
	"github.com/attendance_system/internal/repositories"
	"github.com/attendance_system/internal/services"
	"github.com/attendance_system/pkg/db"
	"github.com/attendance_system/pkg/logger"
	"github.com/attendance_system/pkg/utils"
)

func main() {
	emailFlag := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "password, at least 8 characters (required)")
	name := flag.String("name", "Admin", "full name")
	flag.Parse()

	addr := utils.NormalizeEmail(*emailFlag)
	if addr == "" || len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "usage: createadmin -email <email> -password <min 8 chars> [-name <name>]")
		os.Exit(2)
	}

	config.LoadConfig()
	cfg := config.AppConfig
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	db.InitDB(db.Config{Driver: cfg.DBDriver, SQLitePath: cfg.SQLitePath, DSN: cfg.DatabaseURL})
	defer db.CloseDB()

	hash, err := services.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}

	ctx := context.Background()
	users := repositories.NewGormUserRepository(db.GetDB())

	user, err := users.GetByEmail(ctx, addr)
	switch {
	case errors.Is(err, repositories.ErrRecordNotFound):
		user = &models.User{Email: addr}
	case err != nil:
		log.Fatal().Err(err).Msg("look up user")
	}

	user.PasswordHash = hash
	user.FullName = *name
	user.IsAdmin = true
	user.IsVerified = true
	user.IsActive = true

	if user.ID == 0 {
		err = users.Create(ctx, user)
	} else {
		err = users.Save(ctx, user)
	}
	if err != nil {
		log.Fatal().Err(err).Str("email", addr).Msg("save admin")
	}
	log.Info().Uint("user_id", user.ID).Str("email", addr).Msg("admin account ready")
}
