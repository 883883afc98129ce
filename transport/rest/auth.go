package rest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dealstreak/dealstreak"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userLocalsKey = "user"

// TokenConfig verifies HS256 bearer tokens issued by the identity provider.
// Empty Issuer accepts any issuer.
type TokenConfig struct {
	Secret string
	Issuer string
}

func (c TokenConfig) parse(token string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if c.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.Issuer))
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(c.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// RequestAuthorizer authenticates the bearer token and stores the caller in
// the request locals. Users seen for the first time are created from the
// token's sub and name claims.
func RequestAuthorizer(cfg TokenConfig, userStore dealstreak.UserStore) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		auth := ctx.Get(fiber.HeaderAuthorization)
		if auth == "" {
			return fiber.ErrUnauthorized
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			return fiber.NewError(fiber.ErrBadRequest.Code, "invalid auth type")
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		claims, err := cfg.parse(token)
		if err != nil {
			requestLog(ctx).WithError(err).Infoln("Rejected bearer token.")
			return fiber.ErrUnauthorized
		}
		subject, _ := claims.GetSubject()
		if subject == "" {
			return fiber.ErrUnauthorized
		}
		userId := dealstreak.UserId(subject)

		user, err := userStore.ById(ctx.Context(), userId)
		if errors.Is(err, dealstreak.ErrUserNotFound) {
			name, _ := claims["name"].(string)
			user = dealstreak.User{Id: userId, DisplayName: name}
			err = userStore.Insert(ctx.Context(), user)
			if errors.Is(err, dealstreak.ErrConflict) {
				user, err = userStore.ById(ctx.Context(), userId)
			}
		}
		if err != nil {
			return fmt.Errorf("retrieve user by id: %w", err)
		}

		requestLog(ctx).
			WithField("user_id", user.Id).
			Debugln("Authorized access.")

		ctx.Locals(userLocalsKey, user)
		return nil
	}
}

func currentUser(ctx *fiber.Ctx) (dealstreak.User, error) {
	user, ok := ctx.Locals(userLocalsKey).(dealstreak.User)
	if !ok {
		return dealstreak.User{}, fiber.ErrUnauthorized
	}
	return user, nil
}
