package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"slimepit/server/internal/auth"
	servernet "slimepit/server/internal/net"
	"slimepit/server/internal/room"
	"slimepit/server/internal/sim"
)

func main() {
	var (
		addr    string
		logPath string
		devAuth bool
	)
	flag.StringVar(&addr, "addr", ":8080", "server listen address, e.g. :8080")
	flag.StringVar(&logPath, "log", "slimepit.log", "log file path")
	flag.BoolVar(&devAuth, "dev-auth", true, "accept dev:<userId> tokens (local development only)")
	flag.Parse()

	logger := newLogger(logPath)
	defer logger.Sync()
	log := logger.Sugar()

	var (
		validator auth.TokenValidator
		directory auth.UserDirectory
	)
	if devAuth {
		log.Warn("dev auth enabled; dev:<userId> tokens are accepted")
		validator = auth.DevValidator{TTL: time.Hour}
		directory = auth.DevDirectory{}
	} else {
		validator = auth.NewStaticValidator()
		directory = auth.NewStaticDirectory()
	}

	manager := room.NewManager(sim.DefaultConfig(), log, validator, directory, room.NewResultStore())

	srv := &http.Server{
		Addr: addr,
		Handler: servernet.NewHandler(servernet.HandlerConfig{
			Manager: manager,
			Logger:  log,
		}),
	}

	go func() {
		log.Infof("slimepit listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	manager.Shutdown()
	srv.Close()
}

// newLogger writes structured logs to a rotated file and stderr.
func newLogger(path string) *zap.Logger {
	rotated := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), rotated, zapcore.InfoLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), zapcore.InfoLevel),
	)
	return zap.New(core, zap.AddCaller())
}
