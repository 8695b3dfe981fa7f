package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/doctor-directory/config"
	"github.com/oksasatya/doctor-directory/internal/infrastructure/search"
	"github.com/oksasatya/doctor-directory/internal/worker"
	"github.com/oksasatya/doctor-directory/pkg/helpers"
	"github.com/oksasatya/doctor-directory/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-index-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQDoctorQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	if es == nil {
		log.Fatal("Elasticsearch not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQDoctorQueue, 16)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}

	msgs, err := consumer.Deliveries()
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	handler := &worker.DoctorEvents{
		Index:   search.NewDoctorIndex(es, cfg.ESDoctorsIndex, logger),
		AppName: cfg.AppName,
		Logger:  logger,
	}
	if cfg.MailEnabled() {
		handler.Mail = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		handler.NotifyTo = cfg.NotifyEmail
	} else {
		logger.Info("mailgun not configured; doctor added notices disabled")
	}

	ctx := context.Background()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			c, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := handler.Handle(c, msg.Body)
			cancel()
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case errors.Is(err, worker.ErrBadMessage):
				logger.WithError(err).Warn("dropping doctor event")
				_ = msg.Nack(false, false)
			default:
				logger.WithError(err).Error("doctor event failed, requeueing")
				_ = msg.Nack(false, true)
			}
		}
		close(done)
	}()

	logger.Infof("index worker listening on queue=%s", cfg.RabbitMQDoctorQueue)
	<-stop
	logger.Info("shutting down...")
	consumer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
