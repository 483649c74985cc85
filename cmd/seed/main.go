package main

import (
	"context"
	"fmt"
	"os"
	"tailor_shop/internal/config"
	"tailor_shop/internal/database"
	"tailor_shop/internal/handlers"
	"tailor_shop/internal/logger"
	"tailor_shop/internal/migrations"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"tailor_shop/internal/services"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, "text")

	db, err := database.Initialize(cfg.Database, cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	ctx := context.Background()
	if err := migrations.RunMigrations(ctx, db, log); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	result, err := seed(ctx, db, cfg.Database.TxTimeout, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to seed database")
	}

	fmt.Println("Seed data created. Development tokens (24h):")
	for _, u := range result.users {
		token, err := handlers.IssueToken(cfg.JWTSecret, u.ID, u.Role, 24*time.Hour)
		if err != nil {
			log.WithError(err).Fatal("Failed to issue token")
		}
		fmt.Printf("  %-10s %-6s %s\n", u.Username, u.Role, token)
	}
	for _, o := range result.orders {
		fmt.Printf("  order %s (id %d) with %d items\n", o.OrderNumber, o.ID, len(o.Items))
	}
}

type seedResult struct {
	users  []models.User
	orders []*models.Order
}

// seed creates two customers with one order each, covering every service type. The
// rental item is confirmed and rented so it carries a down payment.
func seed(ctx context.Context, db *gorm.DB, txTimeout time.Duration, log logrus.FieldLogger) (*seedResult, error) {
	userRepo := repository.NewUserRepository(db)
	admin, err := userRepo.GetByUsername(ctx, migrations.DefaultAdmin.Username)
	if err != nil {
		return nil, fmt.Errorf("default admin missing: %w", err)
	}
	adminActor := services.Actor{ID: admin.ID, Role: models.ActorAdmin}

	customers := []models.User{
		{Username: "siti", Email: "siti@example.com", Role: string(models.Users), WhatsAppNumber: "081234567890", IsActive: true},
		{Username: "budi", Email: "budi@example.com", Role: string(models.Users), WhatsAppNumber: "081298765432", IsActive: true},
	}
	result := &seedResult{users: []models.User{*admin}}
	for i := range customers {
		if existing, err := userRepo.GetByUsername(ctx, customers[i].Username); err == nil {
			customers[i] = *existing
		} else if err := userRepo.Create(ctx, &customers[i]); err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", customers[i].Username, err)
		}
		result.users = append(result.users, customers[i])
	}

	repos := repository.NewRepositories(db)
	orderService := services.NewOrderService(repository.NewOrderRepository(db), nil)
	itemService, err := services.NewOrderItemService(services.OrderItemServiceDeps{
		Items:      repos.Items,
		Statuses:   repos.Statuses,
		Ledger:     repos.Ledger,
		UnitOfWork: repository.NewUnitOfWork(db, txTimeout),
		Audit:      services.NewAuditService(repository.NewActionLogRepository(db), nil),
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now().UTC().AddDate(0, 0, 3).Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, 2)
	orders := []services.CreateOrderCommand{
		{
			UserID:        customers[0].ID,
			CustomerName:  "Siti Rahma",
			CustomerPhone: customers[0].WhatsAppNumber,
			Actor:         adminActor,
			Items: []services.NewOrderItem{
				{
					EstimatedPrice: decimal.NewFromInt(75000),
					Details:        models.RepairDetails{GarmentType: "kebaya", DamageDescription: "torn sleeve seam", DamageLevel: "moderate"},
				},
				{
					EstimatedPrice: decimal.NewFromInt(300000),
					Details:        models.RentalDetails{ProductName: "Beskap Jawa", Size: "L", StartDate: &start, EndDate: &end},
				},
			},
		},
		{
			UserID:        customers[1].ID,
			CustomerName:  "Budi Santoso",
			CustomerPhone: customers[1].WhatsAppNumber,
			Actor:         adminActor,
			Items: []services.NewOrderItem{
				{
					EstimatedPrice: decimal.NewFromInt(40000),
					Details:        models.DryCleaningDetails{GarmentType: "suit", Quantity: 2, Express: true},
				},
				{
					EstimatedPrice: decimal.NewFromInt(450000),
					Details: models.CustomizationDetails{
						GarmentType:  "shirt",
						Fabric:       "batik cotton",
						Measurements: map[string]float64{"chest": 98, "waist": 84, "sleeve": 61},
					},
				},
			},
		},
	}

	for _, cmd := range orders {
		order, err := orderService.CreateOrder(ctx, cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to create order for %s: %w", cmd.CustomerName, err)
		}
		result.orders = append(result.orders, order)

		for _, item := range order.Items {
			if _, err := itemService.ConfirmPrice(ctx, services.ConfirmPriceCommand{
				OrderItemID: item.ID,
				FinalPrice:  item.FinalPrice,
				Notes:       "seeded",
				Actor:       adminActor,
			}); err != nil {
				return nil, fmt.Errorf("failed to confirm price of item %d: %w", item.ID, err)
			}
			if item.ServiceType != models.ServiceRental {
				continue
			}
			if _, err := itemService.RecordStatusTransition(ctx, services.StatusTransitionCommand{
				OrderItemID: item.ID,
				Status:      models.StatusRented,
				Notes:       "picked up by customer",
				Actor:       adminActor,
			}); err != nil {
				return nil, fmt.Errorf("failed to rent item %d: %w", item.ID, err)
			}
		}
	}

	return result, nil
}
