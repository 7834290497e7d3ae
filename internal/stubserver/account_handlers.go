package stubserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
)

// accountView strips secrets before serialization; tokens and chat ids only
// exist encrypted inside the store.
func accountView(a *Account) models.SocialAccount {
	return models.SocialAccount{
		ID:        a.ID,
		Platform:  a.Platform,
		Username:  a.Username,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

func (s *Server) ListAccounts(c *fiber.Ctx) error {
	accounts := s.store.ListAccounts(getUserID(c))
	out := make([]models.SocialAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountView(a))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (s *Server) CreateAccount(c *fiber.Ctx) error {
	var ac transfer.AccountCreation
	if err := c.BodyParser(&ac); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to parse body"})
	}
	if !models.ValidPlatform(ac.Platform) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported platform"})
	}

	account, err := s.store.CreateAccount(getUserID(c), ac.Platform, ac.Username, ac.Token, ac.ChatID, ac.IsActive)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(accountView(account))
}

func (s *Server) UpdateAccount(c *fiber.Ctx) error {
	accountID, err := pathID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account id"})
	}

	var ac transfer.AccountCreation
	if err := c.BodyParser(&ac); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to parse body"})
	}

	account, ok := s.store.UpdateAccount(getUserID(c), accountID, func(a *Account) {
		if ac.Username != "" {
			a.Username = ac.Username
		}
		a.IsActive = ac.IsActive
	})
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
	}
	return c.Status(fiber.StatusOK).JSON(accountView(account))
}

func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	accountID, err := pathID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account id"})
	}
	if !s.store.DeleteAccount(getUserID(c), accountID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
