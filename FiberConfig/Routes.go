package FiberConfig

import (
	"os"

	"Fatura/Controllers"
	"Fatura/Models"
	"Fatura/Payments"
	"Fatura/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	customerHandler := Controllers.NewCustomerHandler(db)
	invoiceHandler := Controllers.NewInvoiceHandler(db)
	expenseHandler := Controllers.NewExpenseHandler(db)
	analyticsController := Controllers.NewAnalyticsController(db)

	engine := Payments.NewEngine(db, Payments.ParsePolicy(os.Getenv("OVERPAYMENT_POLICY")))
	paymentHandler := Controllers.NewPaymentHandler(db, engine)

	app.Post("/api/Register", Controllers.Register)
	app.Post("/api/Login", Controllers.Login)
	app.Post("/api/Logout", Controllers.Logout)

	api := app.Group("/api", middleware.Protected())
	api.Get("/User", Controllers.CurrentUser)

	// Customer routes
	customers := api.Group("/customers")
	customers.Get("/", customerHandler.GetCustomers)
	customers.Post("/", customerHandler.CreateCustomer)
	customers.Get("/:id", customerHandler.GetCustomer)
	customers.Put("/:id", customerHandler.UpdateCustomer)
	customers.Delete("/:id", customerHandler.DeleteCustomer)

	// Invoice routes
	invoices := api.Group("/invoices")
	invoices.Get("/", invoiceHandler.GetInvoices)
	invoices.Post("/", invoiceHandler.CreateInvoice)
	invoices.Get("/:id", invoiceHandler.GetInvoice)
	invoices.Put("/:id", invoiceHandler.UpdateInvoice)
	invoices.Delete("/:id", invoiceHandler.DeleteInvoice)

	// Payment routes under invoices
	invoices.Get("/:id/payments", paymentHandler.GetPayments)
	invoices.Post("/:id/payments", paymentHandler.CreatePayment)

	// Expense routes - categories before the ID route to avoid conflicts
	expenses := api.Group("/expenses")
	expenses.Get("/categories", expenseHandler.GetExpenseCategories)
	expenses.Get("/", expenseHandler.GetExpenses)
	expenses.Post("/", expenseHandler.CreateExpense)
	expenses.Get("/:id", expenseHandler.GetExpense)
	expenses.Put("/:id", expenseHandler.UpdateExpense)
	expenses.Delete("/:id", expenseHandler.DeleteExpense)

	// Analytics routes
	analytics := api.Group("/analytics")
	analytics.Get("/dashboard", analyticsController.Dashboard)
	analytics.Get("/expense-categories", analyticsController.ExpensesByCategory)
	analytics.Get("/aging", analyticsController.Aging)
	analytics.Get("/top-customers", analyticsController.TopCustomers)
	analytics.Get("/export", analyticsController.ExportMonthlyReport)
}

func FiberConfig() {
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		MaxAge:       300,
	}))

	SetupRoutes(app, Models.DB)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Info().Str("port", port).Msg("Server up")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
