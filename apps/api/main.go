package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/marcusb/eventwise/apps/api/echo"
	"github.com/marcusb/eventwise/core"
	"github.com/marcusb/eventwise/core/booking"
	"github.com/marcusb/eventwise/core/catalog"
	"github.com/marcusb/eventwise/core/user"
	"github.com/marcusb/eventwise/core/wizard"
	emailsvc "github.com/marcusb/eventwise/services/email"
	logsvc "github.com/marcusb/eventwise/services/logger"
	"github.com/marcusb/eventwise/storage/database"
	sqlxrepos "github.com/marcusb/eventwise/storage/database/sqlx"
	redisstore "github.com/marcusb/eventwise/storage/redis"
)

func main() {
	conf := core.Conf

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	catalogSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(db))

	// drafts live in redis when configured, in the DB otherwise
	draftStore := wizard.DraftStore(sqlxrepos.NewDraftStore(db))
	if conf.Redis.URL != "" {
		if draftStore, err = redisstore.NewDraftStore(conf.Redis.URL); err != nil {
			logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
		}
	}
	drafts := wizard.NewManager(draftStore, conf.Wizard.DraftTTL, logger)

	bookingSvc := booking.NewService(sqlxrepos.NewBookingRepository(db), catalogSvc, drafts, mailSvc, logger)

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address(),
		Logger:         logger,
		UserSvc:        usrSvc,
		CatalogSvc:     catalogSvc,
		BookingSvc:     bookingSvc,
		Drafts:         drafts,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})

	go server.Start()

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("graceful shutdown failed: %v", err), err)
	}
}
