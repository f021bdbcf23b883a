package identity

import (
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

type AuthControllerRoutes struct {
	Register string
	Login    string
	Me       string
	Users    string
	User     string
	Block    string
}

type AuthController struct {
	Debug       bool
	Development bool
	Logger      Logger
	Repo        RepositoryManager
	Auther      Authenticator
	Tokens      TokenService
	Routes      *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Register: "/auth/register",
			Login:    "/auth/login",
			Me:       "/auth/me",
			Users:    "/users",
			User:     "/users/:id",
			Block:    "/users/:id/block",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerTokens(tokens TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDevelopment(dev bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Development = dev
		return c
	}
}

// RegisterAuthRoutes mounts the identity API under /api. Authorization is a
// middleware chain: Protected resolves the caller, the predicates run after.
func RegisterAuthRoutes(app *fiber.App, controller *AuthController, auth *RouteAuthenticator) {
	api := app.Group("/api")

	api.Post(controller.Routes.Register, controller.Register)
	api.Post(controller.Routes.Login, controller.Login)
	api.Get(controller.Routes.Me, auth.Protected(), controller.Me)

	api.Get(controller.Routes.Users, auth.Protected(), auth.RequireAdmin(), controller.ListUsers)
	api.Get(controller.Routes.User, auth.Protected(), auth.RequireSelfOrAdmin("id"), controller.GetUser)
	api.Patch(controller.Routes.Block, auth.Protected(), auth.RequireSelfOrAdmin("id"), controller.BlockUser)
}

// RegisterRequest payload
type RegisterRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
	BirthDate  string `json:"birthDate"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

// Validate will run validation rules, reporting every violated field
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.MiddleName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.BirthDate, validation.Required, validation.Date(birthDateLayout)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 255)),
		validation.Field(&r.Role, validation.In(RoleUser, RoleAdmin)),
	)
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Debug("register user validate payload", "error", err)
		return respondValidationErrors(c, err)
	}

	if a.Debug {
		fmt.Println("======= IDENTITY REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("================================")
	}

	var res *RegisterUserResponse

	req := RegisterUserMessage{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		MiddleName: payload.MiddleName,
		BirthDate:  payload.BirthDate,
		Email:      payload.Email,
		Password:   payload.Password,
		Role:       payload.Role,
		OnResponse: func(resp *RegisterUserResponse) {
			res = resp
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo, a.Tokens)
	if err := registerUser.Execute(c.UserContext(), req); err != nil {
		a.Logger.Error("register user execute", "error", err)
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"data": fiber.Map{
			"user":  res.User,
			"token": res.Token,
		},
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return respondValidationErrors(c, err)
	}

	token, user, err := a.Auther.LoginUser(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.respondError(c, err)
	}

	if user == nil {
		// identities from custom providers may not carry the record
		user, err = a.Repo.Users().GetByEmail(c.UserContext(), payload.Email)
		if err != nil {
			a.Logger.Error("login user lookup after token issue", "error", err)
			return a.respondError(c, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"data": fiber.Map{
			"user":  user,
			"token": token,
		},
	})
}

func (a *AuthController) Me(c *fiber.Ctx) error {
	user, ok := UserFromContext(c)
	if !ok {
		return unauthorized(c, msgNotAuthenticated)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user": user,
		},
	})
}

func (a *AuthController) ListUsers(c *fiber.Ctx) error {
	users, err := a.Repo.Users().List(c.UserContext())
	if err != nil {
		a.Logger.Error("list users", "error", err)
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(users),
		"data":    users,
	})
}

func (a *AuthController) GetUser(c *fiber.Ctx) error {
	user, err := findUserByID(c, a.Repo, c.Params("id"))
	if err != nil {
		if goerrors.IsNotFound(err) || goerrors.Is(err, ErrUserNotFound) {
			return a.respondError(c, ErrUserNotFound)
		}
		a.Logger.Error("get user", "error", err)
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

func (a *AuthController) BlockUser(c *fiber.Ctx) error {
	actor := ActorRef{Type: "user"}
	if current, ok := UserFromContext(c); ok {
		actor.ID = current.ID.String()
	}

	var res *BlockUserResponse

	req := BlockUserMessage{
		TargetID: c.Params("id"),
		Actor:    actor,
		OnResponse: func(resp *BlockUserResponse) {
			res = resp
		},
	}

	blockUser := NewBlockUserHandler(a.Repo)
	if err := blockUser.Execute(c.UserContext(), req); err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User blocked successfully",
		"data": fiber.Map{
			"id":     res.User.ID,
			"status": res.User.Status,
		},
	})
}

// respondValidationErrors renders ozzo's per-field errors the way the API has
// always reported them: every violated field, not just the first.
func respondValidationErrors(c *fiber.Ctx, err error) error {
	fieldErrors, ok := err.(validation.Errors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]fiber.Map, 0, len(fields))
	for _, field := range fields {
		out = append(out, fiber.Map{
			"field":   field,
			"message": fieldErrors[field].Error(),
		})
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"errors":  out,
	})
}

// respondError translates rich errors into the response envelope. Internal
// detail only leaks in development mode.
func (a *AuthController) respondError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "Server Error").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status < fiber.StatusBadRequest || status > 599 {
		status = fiber.StatusInternalServerError
	}

	msg := richErr.Message
	if status >= fiber.StatusInternalServerError && !a.Development {
		msg = "Server Error"
	}

	body := fiber.Map{
		"success": false,
		"error":   msg,
	}

	if a.Development && len(richErr.Metadata) > 0 {
		body["metadata"] = richErr.Metadata
	}

	return c.Status(status).JSON(body)
}
