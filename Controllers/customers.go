package Controllers

import (
	"errors"

	"Fatura/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CustomerHandler contains the database connection
type CustomerHandler struct {
	DB *gorm.DB
}

// NewCustomerHandler creates a new customer handler with the given database connection
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{DB: db}
}

// CreateCustomer adds a new customer for the authenticated user
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	user := authedUser(c)

	var req Models.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": err.Error(),
		})
	}

	customer := Models.Customer{
		UserID:  user.ID,
		Name:    req.Name,
		Company: req.Company,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
	if result := h.DB.Create(&customer); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create customer",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(customer)
}

// GetCustomers returns all customers of the authenticated user
func (h *CustomerHandler) GetCustomers(c *fiber.Ctx) error {
	user := authedUser(c)

	var customers []Models.Customer
	result := h.DB.Where("user_id = ?", user.ID).Order("name ASC").Find(&customers)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch customers",
		})
	}

	return c.JSON(customers)
}

// GetCustomer returns a specific customer by ID
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	user := authedUser(c)
	id := c.Params("id")

	// Another user's customer reads as not found
	var customer Models.Customer
	result := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&customer)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Customer not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch customer",
		})
	}

	return c.JSON(customer)
}

// UpdateCustomer updates a customer's information
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	user := authedUser(c)
	id := c.Params("id")

	var customer Models.Customer
	if result := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&customer); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Customer not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch customer",
		})
	}

	var req Models.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": err.Error(),
		})
	}

	customer.Name = req.Name
	customer.Company = req.Company
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	if result := h.DB.Save(&customer); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update customer",
		})
	}

	return c.JSON(customer)
}

// DeleteCustomer deletes a customer by ID. Customers with invoices cannot
// be deleted; the invoices keep their history.
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	user := authedUser(c)
	id := c.Params("id")

	var customer Models.Customer
	if result := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&customer); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Customer not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch customer",
		})
	}

	// Count and delete must see the same state, or an invoice created in
	// between would keep pointing at a deleted customer
	tx := h.DB.Begin()
	if tx.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Transaction error",
		})
	}

	var invoiceCount int64
	if err := tx.Model(&Models.Invoice{}).Where("customer_id = ? AND user_id = ?", customer.ID, user.ID).
		Count(&invoiceCount).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check customer invoices",
		})
	}
	if invoiceCount > 0 {
		tx.Rollback()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Customer has invoices and cannot be deleted",
		})
	}

	if err := tx.Delete(&customer).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete customer",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to commit transaction",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Customer deleted successfully",
	})
}
