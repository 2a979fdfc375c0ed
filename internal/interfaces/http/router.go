package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/trek-api/internal/application/auth"
	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/internal/application/dispatch"
	"github.com/jhoicas/trek-api/internal/application/notification"
	"github.com/jhoicas/trek-api/internal/application/reports"
	"github.com/jhoicas/trek-api/internal/application/usecase"
	"github.com/jhoicas/trek-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	CompanyUC  *usecase.CompanyUseCase
	ProductUC  *usecase.ProductUseCase
	UserUC     *usecase.UserUseCase
	OrderUC    *usecase.OrderUseCase
	LookupUC   *usecase.LookupUseCase
	ContractUC *contract.UseCase
	DispatchUC *dispatch.UseCase
	PayrollUC  *reports.PayrollUseCase
	RetryUC    *notification.RetryUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authn := AuthMiddleware(deps.JWTSecret, deps.AuthUC)

	admin := RequireRole(entity.RoleAdmin)
	people := RequireRole(entity.RoleAdmin, entity.RoleHR)
	shipping := RequireRole(entity.RoleAdmin, entity.RoleDispatch)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authn, authHandler.Logout)
	authGroup.Get("/me", authn, authHandler.Me)

	// Lookups (públicos: el formulario de empresa también los usa antes del login)
	lookupHandler := NewLookupHandler(deps.LookupUC)
	lookups := api.Group("/lookups")
	lookups.Get("/cep/:cep", lookupHandler.CEP)
	lookups.Get("/cnpj/:cnpj", lookupHandler.CNPJ)
	lookups.Get("/cpf/:cpf", lookupHandler.CPF)

	// Companies (admin)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies := api.Group("/companies", authn, admin)
	companies.Post("/", companyHandler.Create)
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)

	// Products (admin) y vitrina (cualquier sesión)
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products", authn, admin)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Patch("/:id/active", productHandler.SetActive)

	store := api.Group("/store", authn)
	store.Get("/products", productHandler.Store)
	store.Get("/products/:id", productHandler.StoreDetail)

	// Users (admin, RH)
	userHandler := NewUserHandler(deps.UserUC)
	users := api.Group("/users", authn, people)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)

	// Aceite, firma y pedidos
	contractHandler := NewContractHandler(deps.ContractUC, deps.OrderUC)
	contracts := api.Group("/contracts", authn)
	contracts.Post("/acceptance", contractHandler.Accept)
	contracts.Post("/sign", contractHandler.Sign)

	orders := api.Group("/orders", authn)
	orders.Get("/", admin, contractHandler.List)
	orders.Get("/mine", contractHandler.Mine)
	orders.Get("/:id/contract", contractHandler.Document)

	// Expedición (admin, dispatch)
	dispatchHandler := NewDispatchHandler(deps.DispatchUC)
	dispatchGroup := api.Group("/dispatch", authn, shipping)
	dispatchGroup.Get("/orders", dispatchHandler.Pending)
	dispatchGroup.Post("/orders/:id/imei", dispatchHandler.LinkIMEI)
	dispatchGroup.Post("/orders/:id/dispatch", dispatchHandler.Dispatch)

	// RH y avisos
	reportHandler := NewReportHandler(deps.PayrollUC, deps.RetryUC)
	api.Get("/hr/reports/payroll", authn, people, reportHandler.Payroll)
	api.Post("/notifications/retry", authn, admin, reportHandler.RetryNotifications)
}
