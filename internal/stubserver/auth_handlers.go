package stubserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
	"github.com/maheshrc27/postflow-cli/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const tokenDuration = 24 * time.Hour

func (s *Server) Register(c *fiber.Ctx) error {
	var reg transfer.Registration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to parse body"})
	}
	if reg.Username == "" || reg.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := s.store.CreateUser(reg.Username, reg.Email, hash)
	if err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username already exists"})
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "User created successfully",
		"user_id": user.ID,
	})
}

func (s *Server) Login(c *fiber.Ctx) error {
	var creds transfer.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to parse body"})
	}

	user, ok := s.store.UserByName(creds.Username)
	if !ok || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	token, err := utils.GenerateToken(s.cfg.SecretKey, fmt.Sprintf("%d", user.ID), tokenDuration)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  "Login successful",
		"user_id":  user.ID,
		"username": user.Username,
		"token":    token,
	})
}

func (s *Server) Logout(c *fiber.Ctx) error {
	if token, ok := c.Locals("token").(string); ok {
		s.store.RevokeToken(token)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Logged out successfully"})
}

func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, ok := s.store.UserByID(getUserID(c))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.Status(fiber.StatusOK).JSON(models.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var update transfer.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to parse body"})
	}

	userID := getUserID(c)
	if err := s.store.UpdateUser(userID, update.Email, nil); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return s.GetProfile(c)
}

func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var change transfer.PasswordChange
	if err := c.BodyParser(&change); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to parse body"})
	}
	if change.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "New password is required"})
	}

	user, ok := s.store.UserByID(getUserID(c))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(change.OldPassword)) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Current password is incorrect"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(change.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.store.UpdateUser(user.ID, "", hash); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Password changed successfully"})
}
