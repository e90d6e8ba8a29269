package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wolfstreet/internal/auth"
	"wolfstreet/internal/domain"
	"wolfstreet/internal/service"
	"wolfstreet/internal/storage"
	"wolfstreet/internal/submit"
)

// Deps lists the services the HTTP layer is wired to. Tokens may be nil, in
// which case session routes rely on the currentUser slot alone.
type Deps struct {
	Accounts   service.AccountService
	Vacancies  service.VacancyService
	Groups     service.GroupService
	Dashboards service.DashboardService
	Submits    submit.Manager
	Tokens     *auth.Issuer
	Logger     *logrus.Logger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	accounts   service.AccountService
	vacancies  service.VacancyService
	groups     service.GroupService
	dashboards service.DashboardService
	submits    submit.Manager
	tokens     *auth.Issuer
	logger     *logrus.Logger
	selection  *service.Selection
}

func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		accounts:   deps.Accounts,
		vacancies:  deps.Vacancies,
		groups:     deps.Groups,
		dashboards: deps.Dashboards,
		submits:    deps.Submits,
		tokens:     deps.Tokens,
		logger:     logger,
		selection:  &service.Selection{},
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger))

	api := router.Group("/api")
	{
		api.POST("/auth/signup", h.signUp)
		api.POST("/auth/login", h.logIn)
		api.POST("/auth/signout", h.signOut)
		api.GET("/session", h.requireSession(), h.session)

		api.GET("/vacancies", h.listVacancies)
		api.POST("/vacancies", h.createVacancy)
		api.GET("/vacancies/:id", h.getVacancy)
		api.POST("/vacancies/:id/apply", h.requireSession(), h.applyToVacancy)

		api.GET("/dashboard", h.requireSession(), h.dashboard)
		api.GET("/users/:id/resume", h.requireSession(), h.resumeLink)

		admin := api.Group("/admin", h.requireSession())
		{
			admin.GET("/users/unassigned", h.unassignedUsers)
			admin.GET("/groups", h.listGroups)
			admin.POST("/groups", h.createGroup)
			admin.GET("/groups/:id/roster", h.groupRoster)
			admin.GET("/selection", h.showSelection)
			admin.DELETE("/selection", h.clearSelection)
			admin.POST("/selection/:userId", h.toggleSelection)
		}

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

type signUpRequest struct {
	Username      string `form:"username" json:"username" binding:"required"`
	Email         string `form:"email" json:"email" binding:"required"`
	Password      string `form:"password" json:"password" binding:"required"`
	ContactNumber string `form:"contactNumber" json:"contactNumber" binding:"required"`
}

type logInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createVacancyRequest struct {
	Title        string `json:"title" binding:"required"`
	Industry     string `json:"industry" binding:"required"`
	Description  string `json:"description" binding:"required"`
	Requirements string `json:"requirements" binding:"required"`
	Goals        string `json:"goals" binding:"required"`
	WhyJoin      string `json:"whyJoin" binding:"required"`
}

type createGroupRequest struct {
	Name    string   `json:"name"`
	UserIDs []string `json:"userIds"`
}

type SessionResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token,omitempty"`
}

type DashboardResponse struct {
	User           domain.User     `json:"user"`
	Group          *domain.Group   `json:"group"`
	CreatedVacancy *domain.Vacancy `json:"createdVacancy"`
}

type SelectionResponse struct {
	UserIDs []string `json:"userIds"`
	Max     int      `json:"max"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.SignUpInput{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		ContactNumber: req.ContactNumber,
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("resume")
		switch {
		case err == nil:
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("open resume: %v", err)})
				return
			}
			defer f.Close()
			in.Resume = &storage.Upload{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Body:        f,
			}
		case !errors.Is(err, http.ErrMissingFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var user *domain.User
	err := h.submits.Do(c.Request.Context(), "signup:"+req.Email, func(ctx context.Context) error {
		var err error
		user, err = h.accounts.SignUp(ctx, in)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Infof("user %s signed up", user.ID)
	h.respondSession(c, http.StatusCreated, *user)
}

func (h *Handler) logIn(c *gin.Context) {
	var req logInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user *domain.User
	err := h.submits.Do(c.Request.Context(), "login:"+req.Email, func(ctx context.Context) error {
		var err error
		user, err = h.accounts.LogIn(ctx, req.Email, req.Password)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.respondSession(c, http.StatusOK, *user)
}

func (h *Handler) signOut(c *gin.Context) {
	if err := h.accounts.SignOut(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out successfully"})
}

func (h *Handler) session(c *gin.Context) {
	c.JSON(http.StatusOK, SessionResponse{User: sessionUser(c)})
}

func (h *Handler) listVacancies(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	vacancies, err := h.vacancies.List(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vacancies)
}

func (h *Handler) createVacancy(c *gin.Context) {
	var req createVacancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Anonymous posting is allowed; the creator is only attributed when the
	// request passes the same checks as requireSession.
	var creatorID string
	if current, err := h.resolveSession(c); err == nil {
		creatorID = current.ID
	}
	key := "vacancy:" + domain.UnknownCreator
	if creatorID != "" {
		key = "vacancy:" + creatorID
	}

	var vacancy *domain.Vacancy
	err := h.submits.Do(c.Request.Context(), key, func(ctx context.Context) error {
		var err error
		vacancy, err = h.vacancies.Create(ctx, creatorID, service.VacancyInput{
			Title:        req.Title,
			Industry:     req.Industry,
			Description:  req.Description,
			Requirements: req.Requirements,
			Goals:        req.Goals,
			WhyJoin:      req.WhyJoin,
		})
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Infof("vacancy %s created by %s", vacancy.ID, vacancy.CreatorID)
	c.JSON(http.StatusCreated, vacancy)
}

func (h *Handler) getVacancy(c *gin.Context) {
	vacancy, err := h.vacancies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vacancy)
}

func (h *Handler) applyToVacancy(c *gin.Context) {
	vacancyID := c.Param("id")
	user := sessionUser(c)

	var vacancy *domain.Vacancy
	err := h.submits.Do(c.Request.Context(), "apply:"+vacancyID+":"+user.ID, func(ctx context.Context) error {
		var err error
		vacancy, err = h.vacancies.Apply(ctx, user.ID, vacancyID)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vacancy)
}

func (h *Handler) dashboard(c *gin.Context) {
	dash, err := h.dashboards.Dashboard(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{
		User:           dash.User,
		Group:          dash.Group,
		CreatedVacancy: dash.CreatedVacancy,
	})
}

func (h *Handler) resumeLink(c *gin.Context) {
	link, err := h.accounts.ResumeURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}

func (h *Handler) unassignedUsers(c *gin.Context) {
	users, err := h.groups.UnassignedUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) listGroups(c *gin.Context) {
	groups, err := h.groups.ListGroups(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *Handler) groupRoster(c *gin.Context) {
	roster, err := h.groups.LiveRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}

func (h *Handler) createGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fromSelection := req.UserIDs == nil
	var userIDs []string
	if fromSelection {
		userIDs = h.selection.IDs()
	} else {
		sel, err := service.NewSelection(req.UserIDs...)
		if err != nil {
			h.writeError(c, err)
			return
		}
		userIDs = sel.IDs()
	}

	var group *domain.Group
	err := h.submits.Do(c.Request.Context(), "group:create", func(ctx context.Context) error {
		var err error
		group, err = h.groups.CreateGroup(ctx, req.Name, userIDs)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	if fromSelection {
		h.selection.Clear()
	}

	h.logger.Infof("group %q created with %d members", group.Name, len(group.Members))
	c.JSON(http.StatusCreated, group)
}

func (h *Handler) showSelection(c *gin.Context) {
	c.JSON(http.StatusOK, h.selectionResponse())
}

func (h *Handler) clearSelection(c *gin.Context) {
	h.selection.Clear()
	c.JSON(http.StatusOK, h.selectionResponse())
}

func (h *Handler) toggleSelection(c *gin.Context) {
	if _, err := h.selection.Toggle(c.Param("userId")); err != nil {
		h.logger.Warn("selection already holds the maximum number of users")
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.selectionResponse())
}

func (h *Handler) selectionResponse() SelectionResponse {
	ids := h.selection.IDs()
	if ids == nil {
		ids = []string{}
	}
	return SelectionResponse{UserIDs: ids, Max: domain.MaxGroupMembers}
}

func (h *Handler) respondSession(c *gin.Context, status int, user domain.User) {
	resp := SessionResponse{User: user}
	if h.tokens != nil {
		token, err := h.tokens.Issue(user.ID)
		if err != nil {
			h.writeError(c, err)
			return
		}
		resp.Token = token
	}
	c.JSON(status, resp)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNotLoggedIn),
		errors.Is(err, service.ErrSessionChanged),
		errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrAlreadyApplied),
		errors.Is(err, submit.ErrInFlight):
		status = http.StatusConflict
	case errors.Is(err, service.ErrVacancyNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrResumeNotStored):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNoMembersSelected),
		errors.Is(err, service.ErrGroupNameRequired),
		errors.Is(err, service.ErrSelectionFull),
		errors.Is(err, service.ErrPasswordTooLong):
		status = http.StatusBadRequest
	case errors.Is(err, submit.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Errorf("%s %s failed", c.Request.Method, c.FullPath())
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
