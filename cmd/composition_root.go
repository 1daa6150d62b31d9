package cmd

import (
	"fmt"

	"orderflow/internal/adapters/out/paymongo"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	verifier   services.WebhookVerifier
	gateway    ports.PaymentGateway
}

func NewCompositionRoot(config Config, gormDB *gorm.DB) (CompositionRoot, error) {
	// An empty secret would constant-time-compare equal to a missing header
	// and open the dispatch trigger to everyone.
	if config.DispatchSecret == "" {
		return CompositionRoot{}, errs.NewValueIsRequiredError("dispatchSecret")
	}

	mode, err := services.ParseProviderMode(config.PayMongoMode)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("parse provider mode: %w", err)
	}

	verifier, err := services.NewWebhookVerifier(config.PayMongoWebhookSecret, mode)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("create webhook verifier: %w", err)
	}

	gateway, err := paymongo.NewClient(config.PayMongoSecretKey)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("create payment gateway: %w", err)
	}

	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		verifier:   verifier,
		gateway:    gateway,
	}, nil
}

func (c *CompositionRoot) CreateRunDispatchCycleCommandHandler() commands.RunDispatchCycleCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRunDispatchCycleCommandHandler(f)
}

func (c *CompositionRoot) CreateReconcilePaymentCommandHandler() commands.ReconcilePaymentCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReconcilePaymentCommandHandler(f, c.verifier)
}

func (c *CompositionRoot) CreateCreatePaymentIntentCommandHandler() commands.CreatePaymentIntentCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreatePaymentIntentCommandHandler(f, c.gateway)
}

func (c *CompositionRoot) CreateGetPendingOrdersQueryHandler() queries.GetPendingOrdersQueryHandler {
	return queries.NewGetPendingOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableCouriersQueryHandler() queries.GetAvailableCouriersQueryHandler {
	return queries.NewGetAvailableCouriersQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
