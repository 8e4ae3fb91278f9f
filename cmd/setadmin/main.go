package main

import (
	"Airena/internal/api/config"
	"Airena/internal/model"
	"Airena/internal/pkg/database"
	"Airena/internal/pkg/logger"
	"Airena/internal/pkg/util"
	"Airena/internal/repository"
	"Airena/internal/service"
	"context"
	"flag"
	log "log/slog"
	"os"
	"strings"
	"time"
)

type options struct {
	UserID     string `validate:"required,max=36"`
	Name       string `validate:"omitempty,max=64"`
	SuperAdmin bool
}

// 为指定用户授予 admin 角色，可选同时授予 superAdmin 并修改昵称
func main() {
	var opts options
	flag.StringVar(&opts.UserID, "uid", "", "user id to promote")
	flag.StringVar(&opts.Name, "name", "", "new display name (optional)")
	flag.BoolVar(&opts.SuperAdmin, "super", false, "also grant superAdmin")
	flag.Parse()

	opts.UserID = strings.TrimSpace(opts.UserID)
	opts.Name = strings.TrimSpace(opts.Name)
	if err := util.ValidateDTO(&opts); err != nil {
		log.Error("invalid arguments", "err", err)
		flag.Usage()
		os.Exit(2)
	}

	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger.InitLogger()

	db, err := database.NewGormDB(&config.Cfg.DB)
	if err != nil {
		log.Error("Fatal error: failed to create database connection", "err", err)
		os.Exit(1)
	}

	timeout := config.Cfg.Server.StoreTimeoutDuration()
	userRepo := repository.NewUserRepo(db)
	identity := service.NewIdentityService(userRepo, repository.NewRoleRepo(db), repository.NewUserRolesRepo(db), nil, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err = grant(ctx, identity, userRepo, opts); err != nil {
		log.Error("grant failed", "uid", opts.UserID, "err", err)
		os.Exit(1)
	}
	log.Info("grant succeeded, the user must sign in again to get the new claims", "uid", opts.UserID)
}

func grant(ctx context.Context, identity service.IdentityService, userRepo repository.UserRepo, opts options) error {
	user, err := identity.GetUser(ctx, opts.UserID)
	if err != nil {
		return err
	}

	claims := user.Claims.With(model.RoleAdmin)
	if opts.SuperAdmin {
		claims = claims.With(model.RoleSuperAdmin)
	}
	if err = identity.SetClaims(ctx, opts.UserID, claims); err != nil {
		return err
	}

	if opts.Name != "" {
		if err = userRepo.UpdateProfile(ctx, opts.UserID, &opts.Name, nil); err != nil {
			return err
		}
	}
	return nil
}
