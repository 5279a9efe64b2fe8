package auth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/authhub/go-auth/middleware/jwtware"
)

// AccountRegisterer is the interface we need to handle new user registrations
type AccountRegisterer interface {
	Execute(ctx context.Context, event RegisterUserMessage) (*User, error)
}

type AuthControllerRoutes struct {
	Register      string
	Login         string
	Me            string
	PasswordReset string
}

type AuthController struct {
	Debug      bool
	Logger     Logger
	Auther     Authenticator
	Registerer AccountRegisterer
	Validator  TokenValidator
	ContextKey string
	Routes     *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = l
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerRegisterer(r AccountRegisterer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Registerer = r
		return c
	}
}

func WithControllerValidator(v TokenValidator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Validator = v
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: "user",
		Routes: &AuthControllerRoutes{
			Register:      "/auth/register",
			Login:         "/auth/login",
			Me:            "/auth/me",
			PasswordReset: "/auth/password-reset",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Registerer == nil {
		panic("Missing AccountRegisterer in auth controller...")
	}

	if c.Validator == nil {
		panic("Missing TokenValidator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the auth endpoints. Me sits behind the bearer
// guard; everything else is public.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	guard := jwtware.New(jwtware.Config{
		TokenValidator: jwtValidatorAdapter{controller.Validator},
		ContextKey:     controller.ContextKey,
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, ac)
			}
			return ctx
		},
	})

	app.Post(controller.Routes.Register, controller.RegistrationCreate)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Get(controller.Routes.Me, guard, controller.Me)
	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost)

	return controller
}

// jwtValidatorAdapter bridges auth.TokenValidator to the jwtware interface
type jwtValidatorAdapter struct {
	validator TokenValidator
}

func (a jwtValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RegisterRequest payload
type RegisterRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// PasswordResetRequest payload
type PasswordResetRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

func (a *AuthController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email and password are required",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if a.Debug {
		a.Logger.Debug("registration payload", "payload", print.MaybePrettyJSON(fiber.Map{
			"name":  payload.Name,
			"email": payload.Email,
		}))
	}

	user, err := a.Registerer.Execute(c.UserContext(), RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID.String(),
		"email": user.Email,
	})
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email and password are required",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
	})
}

// Me is the token introspection endpoint clients poll at load time to decide
// whether a cached token is still good. The guard has already verified the
// token; we only echo the claims back.
func (a *AuthController) Me(c *fiber.Ctx) error {
	claims, ok := c.Locals(a.ContextKey).(AuthClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid or expired token",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"subject_id": claims.UserID(),
		"issued_at":  claims.IssuedAt(),
		"expires_at": claims.Expires(),
	})
}

// PasswordResetPost is a stub: upstream never implemented delivery. It
// accepts a well-formed email and always responds 202 without touching the
// store, so the response can not reveal whether the address is registered.
func (a *AuthController) PasswordResetPost(c *fiber.Ctx) error {
	payload := new(PasswordResetRequest)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email is required",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	a.Logger.Info("password reset requested", "email", NormalizeEmail(payload.Email))

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "if the account exists, a reset email will be sent",
	})
}

// respondError maps domain failures to stable statuses. Internal and
// operation failures are logged and surfaced as an opaque server error so no
// detail leaks to the caller.
func (a *AuthController) respondError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	switch richErr.Category {
	case errors.CategoryValidation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": richErr.Message,
		})
	case errors.CategoryConflict:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": richErr.Message,
		})
	case errors.CategoryAuth:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": richErr.Message,
		})
	default:
		a.Logger.Error("unexpected error at service boundary",
			"error", richErr.Message,
			"category", richErr.Category,
			"text_code", richErr.TextCode,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
}
