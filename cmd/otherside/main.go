// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the otherside service.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/wneessen/otherside/internal/config"
	"github.com/wneessen/otherside/internal/logger"
	"github.com/wneessen/otherside/internal/server"
	"github.com/wneessen/otherside/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	// Environment from .env takes effect before the config is read
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("failed to load .env file", logger.Err(err))
		os.Exit(1)
	}

	// Read config
	confRead := false
	confPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	// Read default config
	conf, err := config.New()
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	// If config file was specified, read it
	if *confPath != "" {
		file := filepath.Base(*confPath)
		path := filepath.Dir(*confPath)
		conf, err = config.NewFromFile(path, file)
		if err != nil {
			log.Error("failed to load config from file", logger.Err(err))
			os.Exit(1)
		}
		confRead = true
	}

	// Check if we have a config file in the default location
	if path, file := findConfigFile(); !confRead && (path != "" && file != "") {
		conf, err = config.NewFromFile(path, file)
		if err != nil {
			log.Error("failed to load config from file", logger.Err(err))
			os.Exit(1)
		}
	}

	log = logger.New(conf.LogLevel)
	if conf.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize the service and the API server
	serv, err := service.New(conf, log)
	if err != nil {
		log.Error("failed to initialize otherside service", logger.Err(err))
		os.Exit(1)
	}
	api := server.New(conf, log, serv)

	log.Info("starting otherside", slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date))
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return serv.Run(groupCtx) })
	group.Go(func() error { return api.Run(groupCtx) })
	if err = group.Wait(); err != nil {
		log.Error("otherside stopped with an error", logger.Err(err))
		os.Exit(1)
	}
	log.Info("shutting down otherside")
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "otherside", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
