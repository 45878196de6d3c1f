package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/minhtran-dev/vnshop-order-service/internal/api"
	"github.com/minhtran-dev/vnshop-order-service/internal/cart"
	"github.com/minhtran-dev/vnshop-order-service/internal/config"
	"github.com/minhtran-dev/vnshop-order-service/internal/payment"
	"github.com/minhtran-dev/vnshop-order-service/internal/repository"
	"github.com/minhtran-dev/vnshop-order-service/internal/service"
	"github.com/minhtran-dev/vnshop-order-service/pkg/db"
	"github.com/minhtran-dev/vnshop-order-service/pkg/metrics"
)

func main() {
	cfg := config.Load()

	pgCfg, _ := db.LoadPostgresConfig()
	conn, err := db.NewPostgresConnection(pgCfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.EnsureSchema(ctx, conn); err != nil {
		cancel()
		log.Fatalf("db schema: %v", err)
	}
	cancel()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer redisClient.Close()

	couponRepo := repository.NewCouponRepo(conn)
	usageRepo := repository.NewUsageRepo(conn)
	inventoryRepo := repository.NewInventoryRepo(conn)
	orderRepo := repository.NewOrderRepo(conn)

	couponSvc := service.NewCouponService(couponRepo, usageRepo)
	inventorySvc := service.NewInventoryService(inventoryRepo)
	cartStore := cart.NewRedisStore(redisClient)
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)

	checkoutSvc := service.NewCheckoutService(
		couponSvc, inventorySvc, orderRepo, cartStore, gateway, cfg.FrontendURL)
	orderSvc := service.NewOrderService(orderRepo, orderRepo, inventorySvc, couponSvc)

	m := metrics.NewServerMetrics("order_service")
	handler := api.NewRouter(checkoutSvc, orderSvc, couponSvc, m)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("starting order-service on :%s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %s\n", err)
	}

	<-idleConnsClosed
	log.Println("server stopped")
}
