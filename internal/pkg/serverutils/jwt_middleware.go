package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"luni-triage-be/internal/entity"
)

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	ctx.Locals("user_id", claims["user_id"])
	return ctx.Next()
}

// OptionalJwtMiddleware resolves the caller's identity when a bearer token
// is present but lets anonymous requests through untouched. Guests are
// identified by the X-Guest-Id header instead.
func OptionalJwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Next()
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ctx.Next()
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		ctx.Locals("user_id", claims["user_id"])
	}
	return ctx.Next()
}

// ScopeFromCtx builds the explicit caller scope every service call takes.
// Authenticated requests carry user_id from the JWT; guests must send a
// stable device id in X-Guest-Id.
func ScopeFromCtx(ctx *fiber.Ctx) (entity.Scope, error) {
	if v := ctx.Locals("user_id"); v != nil {
		if idStr, ok := v.(string); ok {
			if userId, err := uuid.Parse(idStr); err == nil {
				return entity.UserScope(userId), nil
			}
		}
	}

	guestId := ctx.Get("X-Guest-Id")
	if guestId == "" {
		return entity.Scope{}, fiber.NewError(fiber.StatusBadRequest, "X-Guest-Id header is required for guest requests")
	}
	return entity.GuestScope(guestId), nil
}
