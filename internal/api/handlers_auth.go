package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/quiethollow/tandem/internal/services"
)

func (handler *Handler) Register(c *fiber.Ctx) error {
	var input registerInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	registration := services.RegistrationInput{
		Email:          input.Email,
		Password:       input.Password,
		PartnerAName:   input.PartnerAName,
		PartnerBName:   input.PartnerBName,
		PartnerAGender: input.PartnerAGender,
		PartnerBGender: input.PartnerBGender,
	}
	if err := services.ValidateRegistrationInput(&registration); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	handler.ensureDependencies()
	user, err := handler.authService.Register(registration)
	if err != nil {
		// Duplicate emails get the same generic answer as any other create
		// failure, so registration cannot be used to probe for accounts.
		return apiError(c, fiber.StatusBadRequest, "unable to create account")
	}

	if err := handler.setAuthCookie(c, &user, input.RememberMe); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
		"user":    buildUserView(&user),
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	email, password, err := services.NormalizeCredentialsInput(input.Email, input.Password)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	user, err := handler.authService.Authenticate(email, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to sign in")
	}

	if err := handler.setAuthCookie(c, &user, input.RememberMe); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}

	return c.JSON(fiber.Map{"user": buildUserView(&user)})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(fiber.Map{"user": buildUserView(user)})
}
